package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/dev-manthan-sharma/paw-ma/jwt"
)

// TokenVerifier parses and verifies API tokens. *jwt.Manager implements it.
type TokenVerifier interface {
	Parse(token string) (*jwt.APIClaims, error)
}

// UnauthorizedReporter is told about every rejected request.
// *pawma.Engine implements it.
type UnauthorizedReporter interface {
	ReportUnauthorized(ctx context.Context)
}

type claimsContextKey struct{}

// ClaimsFromContext returns the claims RequireToken stored on the request.
func ClaimsFromContext(ctx context.Context) (*jwt.APIClaims, bool) {
	claims, ok := ctx.Value(claimsContextKey{}).(*jwt.APIClaims)
	return claims, ok
}

// RequireToken rejects requests without a valid bearer token granting scope.
// An empty scope accepts any valid token. reporter may be nil.
func RequireToken(verifier TokenVerifier, scope string, reporter UnauthorizedReporter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reject := func() {
				if reporter != nil {
					reporter.ReportUnauthorized(r.Context())
				}
				w.Header().Set("WWW-Authenticate", `Bearer realm="pawma"`)
				writeError(w, http.StatusUnauthorized, "unauthorized")
			}

			if verifier == nil {
				reject()
				return
			}

			token, ok := bearerToken(r.Header.Get("Authorization"))
			if !ok {
				reject()
				return
			}

			claims, err := verifier.Parse(token)
			if err != nil {
				reject()
				return
			}
			if scope != "" && !claims.HasScope(scope) {
				reject()
				return
			}

			ctx := context.WithValue(r.Context(), claimsContextKey{}, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireDerive is RequireToken for the derive scope.
func RequireDerive(verifier TokenVerifier, reporter UnauthorizedReporter) func(http.Handler) http.Handler {
	return RequireToken(verifier, jwt.ScopeDerive, reporter)
}

// RequireDomain is RequireToken for the domain scope.
func RequireDomain(verifier TokenVerifier, reporter UnauthorizedReporter) func(http.Handler) http.Handler {
	return RequireToken(verifier, jwt.ScopeDomain, reporter)
}

func bearerToken(value string) (string, bool) {
	const bearer = "Bearer "
	if !strings.HasPrefix(value, bearer) {
		return "", false
	}

	token := value[len(bearer):]
	if token == "" {
		return "", false
	}

	return token, true
}
