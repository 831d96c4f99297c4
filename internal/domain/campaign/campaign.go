// Package campaign owns the discount campaign entity and the two services
// built on the condition and discount cores: scope selection and quote
// pricing.
package campaign

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"

	"github.com/smartcycle/discounts/internal/domain/condition"
	"github.com/smartcycle/discounts/internal/domain/discount"
	"github.com/smartcycle/discounts/internal/domain/validation"
)

// Status is the campaign lifecycle state.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusScheduled Status = "scheduled"
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusExpired   Status = "expired"
)

// ErrNotFound is returned when a requested campaign does not exist.
var ErrNotFound = errors.New("campaign not found")

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusDraft, StatusScheduled, StatusActive, StatusPaused, StatusExpired:
		return true
	}
	return false
}

// Campaign is a time-boxed conditional discount. The condition set decides
// which products it applies to; the discount config decides the price
// adjustment. Higher Priority wins when several campaigns cover a product.
type Campaign struct {
	ID       string
	Name     string
	Status   Status
	Priority int

	StartsAt *time.Time
	EndsAt   *time.Time

	Logic      condition.Logic
	Conditions []condition.Condition
	Discount   discount.Config

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveAt reports whether the campaign should apply at the given instant:
// active status and inside the schedule window (open-ended bounds allowed).
func (c *Campaign) ActiveAt(now time.Time) bool {
	if c.Status != StatusActive {
		return false
	}
	if c.StartsAt != nil && now.Before(*c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && now.After(*c.EndsAt) {
		return false
	}
	return true
}

// Validate structurally checks the campaign, every condition, and the
// discount configuration. A non-nil return blocks persistence.
func (c *Campaign) Validate() error {
	var verr validation.Error

	if strings.TrimSpace(c.Name) == "" {
		verr.Add("name", "name is required")
	}
	if !ValidStatus(c.Status) {
		verr.Add("status", "unknown status "+`"`+string(c.Status)+`"`)
	}
	if c.Logic != condition.LogicAll && c.Logic != condition.LogicAny {
		verr.Add("logic", `logic must be "all" or "any"`)
	}
	if c.StartsAt != nil && c.EndsAt != nil && c.EndsAt.Before(*c.StartsAt) {
		verr.Add("ends_at", "schedule end must not precede start")
	}

	for i, cond := range c.Conditions {
		var condErr *validation.Error
		if err := condition.Validate(cond); errors.As(err, &condErr) {
			for _, f := range condErr.Fields {
				verr.Add("conditions["+strconv.Itoa(i)+"]."+f.Field, f.Message)
			}
		}
	}

	var cfgErr *validation.Error
	if err := c.Discount.Validate(); errors.As(err, &cfgErr) {
		for _, f := range cfgErr.Fields {
			verr.Add("discount."+f.Field, f.Message)
		}
	}

	return verr.Err()
}

// Repository defines persistence operations for campaigns and their
// condition rows.
type Repository interface {
	Create(ctx context.Context, c *Campaign) error
	GetByID(ctx context.Context, id string) (*Campaign, error)
	List(ctx context.Context) ([]Campaign, error)
	// ListActive returns campaigns applicable at the given instant, ordered
	// by descending priority.
	ListActive(ctx context.Context, at time.Time) ([]Campaign, error)
	UpdateStatus(ctx context.Context, id string, status Status) error
}
