// Package pagination normalizes page size and ordering inputs for list calls.
package pagination

import (
	"fmt"
	"slices"
	"strings"
)

// PageSizeConfig bounds a requested page size.
type PageSizeConfig struct {
	Default int
	Max     int
}

// OrderByConfig lists the accepted order keys.
type OrderByConfig struct {
	Default string
	Allowed []string
}

// ClampPageSize returns cfg.Default for non-positive requests and caps the
// result at cfg.Max. The result is at least 1.
func ClampPageSize(requested int32, cfg PageSizeConfig) int {
	size := int(requested)
	if size <= 0 {
		size = cfg.Default
	}
	if cfg.Max > 0 {
		size = min(size, cfg.Max)
	}
	return max(size, 1)
}

// NormalizeOrderBy lowercases orderBy and checks it against cfg.Allowed.
// Empty input selects cfg.Default.
func NormalizeOrderBy(orderBy string, cfg OrderByConfig) (string, error) {
	key := strings.ToLower(strings.TrimSpace(orderBy))
	if key == "" {
		return cfg.Default, nil
	}
	if !slices.Contains(cfg.Allowed, key) {
		return "", fmt.Errorf("invalid order_by %q: want one of %s", orderBy, strings.Join(cfg.Allowed, ", "))
	}
	return key, nil
}
