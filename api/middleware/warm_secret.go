package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/jordanblake/cartcompass-backend/api/responses"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"github.com/jordanblake/cartcompass-backend/pkg/logger"
)

const warmSecretHeader = "X-Warm-Secret"

// WarmSecret guards the administrative warming endpoints with a shared
// secret. An empty configured secret disables the endpoints entirely
// rather than leaving them open.
func WarmSecret(logg *logger.Logger, secret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "warming endpoint disabled"))
				return
			}
			provided := r.Header.Get(warmSecretHeader)
			if subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid warming secret"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
