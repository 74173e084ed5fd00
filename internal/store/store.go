// Package store persists calculation records so a past estimate can be
// reproduced from the exact inputs that produced it.
package store

import (
	"context"
	"errors"

	"github.com/sells-group/impact-cli/internal/model"
)

// ErrNotFound is returned when a calculation id does not exist.
var ErrNotFound = errors.New("store: calculation not found")

// CalculationFilter narrows ListCalculations. Zero fields match everything.
type CalculationFilter struct {
	Company       string `json:"company,omitempty"`
	MethodologyID string `json:"methodology_id,omitempty"`
	Limit         int    `json:"limit,omitempty"`
	Offset        int    `json:"offset,omitempty"`
}

// DefaultListLimit caps ListCalculations when no limit is given.
const DefaultListLimit = 100

func (f CalculationFilter) limit() int {
	if f.Limit <= 0 {
		return DefaultListLimit
	}
	return f.Limit
}

// Store defines calculation persistence.
type Store interface {
	// SaveCalculation inserts calc, assigning ID and CreatedAt when empty.
	SaveCalculation(ctx context.Context, calc *model.Calculation) error
	GetCalculation(ctx context.Context, id string) (*model.Calculation, error)
	// ListCalculations returns matches newest first.
	ListCalculations(ctx context.Context, filter CalculationFilter) ([]model.Calculation, error)
	DeleteCalculation(ctx context.Context, id string) error

	Migrate(ctx context.Context) error
	Close() error
}
