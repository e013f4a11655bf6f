package common

// DefaultSessionCookieName is the cookie carrying the signed session token
// when no name is configured.
const DefaultSessionCookieName = "roleboard_session"

// FlashCookieName carries a one-shot notice to the next rendered page.
const FlashCookieName = "roleboard_flash"

// ForwardedForHeader is consulted before the transport peer address when
// resolving the client ip.
const ForwardedForHeader = "X-Forwarded-For"
