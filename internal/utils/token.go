// Package utils provides helpers for the bearer token marker.
package utils

import "strings"

// TokenPrefix starts every token issued by /auth.  Tokens carry no expiry
// and no signature: they only mark which user logged in.
const TokenPrefix = "fake-token-"

// IssueToken returns the token for username.
func IssueToken(username string) string {
	return TokenPrefix + username
}

// UsernameFromToken extracts the username from a raw token.
func UsernameFromToken(token string) (string, bool) {
	if !strings.HasPrefix(token, TokenPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(token, TokenPrefix)
	if name == "" {
		return "", false
	}
	return name, true
}

// UsernameFromAuthHeader reads an "Authorization: Bearer <token>" value.
func UsernameFromAuthHeader(header string) (string, bool) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return "", false
	}
	return UsernameFromToken(strings.TrimSpace(raw))
}
