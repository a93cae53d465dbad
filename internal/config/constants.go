// internal/config/constants.go
package config

import "time"

// アプリケーション情報
const (
	AppName    = "course-progress"
	AppVersion = "0.3.0"
)

// デフォルト設定値
const (
	DefaultServerPort           = ":8080"
	DefaultLogLevel             = "info"
	DefaultAuthEnabled          = true
	DefaultAnalyticsCacheTTL    = 5 * time.Minute
	DefaultAnalyticsRefreshCron = "@every 10m"
	DefaultCertificatePrefix    = "CERT"
)
