package service

import (
	"github.com/phrazzld/taskroster-api/internal/domain"
	"github.com/phrazzld/taskroster-api/internal/store"
)

// Paging bounds for list operations.
const (
	DefaultPageLimit = 100
	MaxPageLimit     = 1000
)

// normalizePage applies the default limit to a zero Limit and rejects
// out-of-range values.
func normalizePage(p store.Page) (store.Page, error) {
	if p.Offset < 0 {
		return p, domain.NewValidationError("skip", "must not be negative")
	}
	if p.Limit == 0 {
		p.Limit = DefaultPageLimit
	}
	if p.Limit < 1 || p.Limit > MaxPageLimit {
		return p, domain.NewValidationError("limit", "must be between 1 and 1000")
	}
	return p, nil
}
