package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/pelloch/marketplace/internal/entity"
	"github.com/pelloch/marketplace/internal/repository"
)

type contextKey string

const merchantKey contextKey = "merchant"

// withMerchant resolves the Authorization header ("Token <key>") to a
// merchant and stores it on the request context. Requests without a header
// pass through unauthenticated; requests with a bad token are rejected.
func withMerchant(merchants repository.MerchantRepository, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := strings.CutPrefix(header, "Token ")
		if !ok {
			writeError(w, entity.ErrUnauthorized)
			return
		}

		merchant, err := merchants.FindByToken(r.Context(), strings.TrimSpace(token))
		if err != nil {
			writeError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), merchantKey, merchant)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// merchantFrom returns the authenticated merchant, or nil.
func merchantFrom(r *http.Request) *entity.Merchant {
	m, _ := r.Context().Value(merchantKey).(*entity.Merchant)
	return m
}

// requireAuth guards write routes: no authenticated merchant, no access.
func requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if merchantFrom(r) == nil {
			writeError(w, entity.ErrUnauthorized)
			return
		}
		next(w, r)
	}
}

// EnableCORS is a middleware to allow browser frontends to connect.
func EnableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
