package httpx

import (
	"net"
	"net/http"
	"strings"
)

// ClientIP extracts the client address from the request, preferring the
// proxy-supplied headers over the socket address.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return strings.TrimSpace(xri)
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// BearerToken returns the token from an Authorization: Bearer header, or ""
// when the header is absent or not bearer-shaped.
func BearerToken(r *http.Request) string {
	authz := r.Header.Get("Authorization")
	if authz == "" || !strings.HasPrefix(authz, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(authz, "Bearer"))
}

// TokenFromRequest returns the presented credential: the bearer header when
// set, otherwise the named cookie. Browser clients ride on the cookie,
// programmatic clients on the header, and the header wins when both exist.
func TokenFromRequest(r *http.Request, cookieName string) string {
	if tok := BearerToken(r); tok != "" {
		return tok
	}
	if c, err := r.Cookie(cookieName); err == nil {
		return c.Value
	}
	return ""
}
