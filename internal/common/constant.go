package common

// SessionCookieName is the HTTP cookie that carries the signed session token.
const SessionCookieName = "session"

// CaptchaAlphabet is the character set captcha codes are drawn from.
const CaptchaAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// DefaultCORSOrigins are the local front-end origins allowed when none are
// configured. A literal "*" must be configured explicitly.
var DefaultCORSOrigins = []string{
	"http://localhost:3000",
	"http://127.0.0.1:3000",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}
