package api

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/raushankrgupta/product-page-generator/utils"
)

type contextKey string

const subjectKey contextKey = "subject"

// AuthMiddleware requires a bearer token signed with secret. An empty secret disables the check.
func AuthMiddleware(secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if secret == "" {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				next.ServeHTTP(w, r)
				return
			}
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Missing bearer token"})
				return
			}
			subject, err := utils.ValidateToken(secret, token)
			if err != nil {
				utils.RespondJSON(w, http.StatusUnauthorized, map[string]string{"error": "Invalid token"})
				return
			}
			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetSubjectFromContext returns the token subject set by AuthMiddleware
func GetSubjectFromContext(ctx context.Context) (string, error) {
	subject, ok := ctx.Value(subjectKey).(string)
	if !ok {
		return "", errors.New("subject not found in context")
	}
	return subject, nil
}

// logSubject adds the caller's token subject to the request log
func logSubject(b *strings.Builder, r *http.Request) {
	if subject, err := GetSubjectFromContext(r.Context()); err == nil {
		utils.AddToLogMessage(b, "Subject: "+subject)
	}
}
