package auth

import (
	"fmt"
	"log"
	"net/http"
	"strings"
)

// ExtractBearerToken extracts the token from a Bearer authorization header
func ExtractBearerToken(authHeader string) (string, error) {
	if authHeader == "" {
		return "", fmt.Errorf("authorization header is empty")
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fmt.Errorf("invalid authorization header format, expected 'Bearer <token>'")
	}

	token := strings.TrimSpace(parts[1])
	if token == "" {
		return "", fmt.Errorf("token is empty")
	}

	return token, nil
}

// RequireAPIKey rejects requests whose bearer token does not match apiKey.
// An empty apiKey disables the check; intended for local development only.
func RequireAPIKey(apiKey string) func(http.Handler) http.Handler {
	if apiKey == "" {
		log.Printf("Warning: API key auth disabled")
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if apiKey == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, err := ExtractBearerToken(r.Header.Get("Authorization"))
			if err != nil || token != apiKey {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
