package middleware

import (
	"net/http"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/query/loaders"
)

// LoadersMiddleware attaches fresh request-scoped rating loaders. Loaders
// cache what they load, so they must never outlive one request.
func LoadersMiddleware(ratings repositories.RatingRepository) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := loaders.WithLoaders(r.Context(), loaders.NewLoaders(ratings))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
