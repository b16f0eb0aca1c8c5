package database

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// The tenant schema is the only string ever interpolated into query text, so
// it must come out of this registry and nowhere else. Everything else is a
// bound parameter.
var schemaPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// TenantRegistry is the allow-list of tenant schemas this instance may query.
type TenantRegistry struct {
	allowed map[string]struct{}
}

func NewTenantRegistry(schemas []string) (*TenantRegistry, error) {
	r := &TenantRegistry{allowed: make(map[string]struct{})}
	for _, s := range schemas {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if !schemaPattern.MatchString(s) {
			return nil, fmt.Errorf("invalid tenant schema %q", s)
		}
		r.allowed[s] = struct{}{}
	}
	if len(r.allowed) == 0 {
		return nil, fmt.Errorf("tenant schema allow-list is empty")
	}
	return r, nil
}

// NewTenantRegistryFromEnv seeds the allow-list from TENANT_SCHEMAS
// (comma separated schema names).
func NewTenantRegistryFromEnv() (*TenantRegistry, error) {
	return NewTenantRegistry(strings.Split(os.Getenv("TENANT_SCHEMAS"), ","))
}

// Resolve validates the opaque tenant name handed down by the gateway and
// returns the schema that is safe to prefix into SQL.
func (r *TenantRegistry) Resolve(name string) (string, error) {
	if _, ok := r.allowed[name]; !ok {
		return "", fmt.Errorf("unknown tenant schema %q", name)
	}
	return name, nil
}
