package service

import "math"

// roundedPercent は 100*n/d を四捨五入 (0.5 は切り上げ) した整数を返します。
// d が 0 以下なら 0。n は [0, d] に丸める。
func roundedPercent(n, d int) int {
	if d <= 0 {
		return 0
	}
	if n < 0 {
		n = 0
	}
	if n > d {
		n = d
	}
	return (200*n + d) / (2 * d)
}

// ratePercent は集計用の割合 (小数第2位まで) です。
func ratePercent(n, d int64) float64 {
	if d <= 0 {
		return 0
	}
	return round2(float64(n) * 100 / float64(d))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
