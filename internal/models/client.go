package models

import (
	"strings"
	"time"
)

// APIClient represents a service authenticated by API key.
// The matching engine is consumed service-to-service (the web app's
// backend-for-frontend, warm-up jobs); per-user auth stays with the
// identity provider.
type APIClient struct {
	ID          int        `json:"id"`
	Name        string     `json:"name"`
	APIKey      string     `json:"-"` // never serialized
	IsActive    bool       `json:"is_active"`
	CreatedAt   time.Time  `json:"created_at"`
	LastUsedAt  *time.Time `json:"last_used_at,omitempty"`
	Permissions []string   `json:"permissions"`
}

// HasPermission checks if the client holds the given permission.
// Supports wildcards like "matching:*" and the global "*".
func (c *APIClient) HasPermission(required string) bool {
	if c == nil || !c.IsActive {
		return false
	}

	for _, perm := range c.Permissions {
		if perm == required || perm == "*" {
			return true
		}
		if strings.HasSuffix(perm, ":*") && strings.HasPrefix(required, strings.TrimSuffix(perm, "*")) {
			return true
		}
	}

	return false
}

// MaskedAPIKey returns the first 8 characters of the key for safe logging
func (c *APIClient) MaskedAPIKey() string {
	if len(c.APIKey) < 8 {
		return "***"
	}
	return c.APIKey[:8] + "..."
}
