package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/fixora/oauth-service/domain/apperror"
	"github.com/fixora/oauth-service/infrastructure/http/response"
	"github.com/fixora/oauth-service/infrastructure/service/logger"
)

// Recovery turns a panic in a handler into a 500 with the standard error body.
func Recovery(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					log.Error(r.Context(), "Panic recovered", fmt.Errorf("%v", rec), map[string]interface{}{
						"path":  r.URL.Path,
						"stack": string(debug.Stack()),
					})
					response.Error(w, apperror.Internal("panic", nil))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
