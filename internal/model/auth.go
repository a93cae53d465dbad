package model

// ContextKey はリクエストコンテキストのキー型です。
type ContextKey string

// UserIDKey は認証済みユーザーIDのコンテキストキーです。
// ユーザー管理と認証は外部の責務で、ここでは uuid.UUID として受け取るだけです。
const UserIDKey ContextKey = "userID"
