package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination represents common pagination parameters. Page numbering is
// 1-based; IncludeDetails disables paging entirely and returns every row.
type Pagination struct {
	Page           int  `form:"page"`
	Limit          int  `form:"limit"`
	IncludeDetails bool `form:"include_details"`
}

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Normalize fills in defaults for out-of-range values.
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = DefaultPage
	}
	if p.Limit < 1 {
		p.Limit = DefaultLimit
	}
}

// Offset returns the row offset for the current page.
func (p *Pagination) Offset() int {
	return (p.Page - 1) * p.Limit
}
