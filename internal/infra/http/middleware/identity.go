package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kgarten/customer-pool/internal/infra/database"
	"github.com/kgarten/customer-pool/internal/usecase"
)

type contextKey string

const (
	callerKey contextKey = "caller"
	schemaKey contextKey = "schema"
)

const (
	headerStaffID    = "X-Staff-Id"
	headerStaffRole  = "X-Staff-Role"
	headerCanViewAll = "X-Can-View-All"
	headerTenant     = "X-Tenant-Schema"
)

// Identity reads the caller identity the gateway attaches to every request.
// Authentication itself happens upstream; this layer only refuses requests
// that arrive without an identity or name a tenant outside the allow-list.
func Identity(tenants *database.TenantRegistry) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			staffID, err := strconv.ParseInt(r.Header.Get(headerStaffID), 10, 64)
			if err != nil || staffID <= 0 {
				writeIdentityError(w, http.StatusUnauthorized, "missing caller identity")
				return
			}
			role := r.Header.Get(headerStaffRole)
			if role == "" {
				writeIdentityError(w, http.StatusUnauthorized, "missing caller role")
				return
			}

			schema, err := tenants.Resolve(r.Header.Get(headerTenant))
			if err != nil {
				writeIdentityError(w, http.StatusForbidden, "unknown tenant")
				return
			}

			caller := usecase.Caller{
				StaffID:    staffID,
				Role:       role,
				CanViewAll: r.Header.Get(headerCanViewAll) == "true",
			}

			ctx := context.WithValue(r.Context(), callerKey, caller)
			ctx = context.WithValue(ctx, schemaKey, schema)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func CallerFrom(ctx context.Context) usecase.Caller {
	caller, _ := ctx.Value(callerKey).(usecase.Caller)
	return caller
}

func SchemaFrom(ctx context.Context) string {
	schema, _ := ctx.Value(schemaKey).(string)
	return schema
}

func writeIdentityError(w http.ResponseWriter, status int, message string) {
	code := "FORBIDDEN"
	if status == http.StatusUnauthorized {
		code = "UNAUTHORIZED"
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success": false,
		"error":   map[string]string{"code": code, "message": message},
	})
}
