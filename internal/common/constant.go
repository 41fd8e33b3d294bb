// Package common contains shared constants and error kinds used across
// the finance tracker server components.
package common

// Cookie and header names shared by the HTTP layer and its clients.
const (
	SessionCookieName = "ft_token"
	CSRFCookieName    = "ft_csrf"
	CSRFHeaderName    = "X-CSRF-Token"
	RequestIDHeader   = "X-Request-ID"
)

// AppName is used in outgoing e-mail subjects and bodies.
const AppName = "Finance Tracker"
