package middleware

import (
	"net/http"

	"go.uber.org/zap"
	"metadata-scanner/pkg/auth"
	"metadata-scanner/pkg/common"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	Validate(token string) (*auth.Claims, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// token subject as the caller. A nil validator disables the check.
func Authenticate(validator TokenValidator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if validator == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := auth.BearerToken(r.Header.Get("Authorization"))
			if !ok {
				common.RespondError(w, r, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "missing bearer token")
				return
			}
			claims, err := validator.Validate(token)
			if err != nil {
				logger.Debug("Rejected token", zap.Error(err))
				common.RespondError(w, r, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, "invalid token")
				return
			}
			next.ServeHTTP(w, r.WithContext(common.WithCaller(r.Context(), claims.Subject)))
		})
	}
}
