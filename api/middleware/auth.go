package middleware

import (
	"net/http"
	"strings"

	"github.com/euroisufi/schweizer-handwerksplattform-sub000/api/responses"
	pkgAuth "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/auth"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/config"
	pkgerrors "github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/errors"
	"github.com/euroisufi/schweizer-handwerksplattform-sub000/pkg/logger"
)

// Auth validates a bearer token and seeds the request context with the account.
func Auth(cfg config.JWTConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "missing credentials"))
				return
			}

			claims, err := pkgAuth.ParseAccessToken(cfg, token)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid token"))
				return
			}

			ctx := WithAccount(r.Context(), claims.AccountID, claims.Role)
			if logg != nil {
				ctx = logg.WithFields(ctx, map[string]any{
					"account_id":   claims.AccountID.String(),
					"account_role": string(claims.Role),
				})
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	raw := strings.TrimSpace(header)
	if len(raw) > 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}
