package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	apperrors "github.com/mr-jafner/TravelTogether-sub000/pkg/errors"
)

// TxRunner runs fn in one transaction carried by ctx
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// ViewInvalidator drops cached read models of a trip
type ViewInvalidator interface {
	Invalidate(ctx context.Context, tripID int64)
}

// problems collects validation failures for one request
type problems []string

func (p *problems) add(format string, args ...interface{}) {
	*p = append(*p, fmt.Sprintf(format, args...))
}

func (p problems) err(message string) error {
	if len(p) == 0 {
		return nil
	}
	return apperrors.NewValidationError(message, p...)
}

func (p *problems) requireText(field, value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		p.add("%s is required", field)
	}
	return value
}

func (p *problems) date(field, value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		p.add("%s is required", field)
		return time.Time{}, false
	}
	t, err := time.Parse(entities.DateLayout, value)
	if err != nil {
		p.add("%s must be a date in YYYY-MM-DD format", field)
		return time.Time{}, false
	}
	return t, true
}

// dateRange checks both dates and that end is strictly after start
func (p *problems) dateRange(start, end string) {
	s, okStart := p.date("startDate", start)
	e, okEnd := p.date("endDate", end)
	if okStart && okEnd && !e.After(s) {
		p.add("endDate must be after startDate")
	}
}

// names trims every entry and reports empty and duplicate names
func (p *problems) names(field string, values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		switch {
		case v == "":
			p.add("%s[%d] must not be empty", field, i)
		case seen[v]:
			p.add("duplicate %s name %q", singular(field), v)
		default:
			seen[v] = true
		}
		out = append(out, v)
	}
	return out
}

// entries trims every entry and reports empty ones; duplicates are kept
func (p *problems) entries(field string, values []string) []string {
	out := make([]string, 0, len(values))
	for i, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			p.add("%s[%d] must not be empty", field, i)
		}
		out = append(out, v)
	}
	return out
}

func singular(field string) string {
	return strings.TrimSuffix(field, "s")
}

func requireTrip(ctx context.Context, trips repositories.TripRepository, tripID int64) error {
	exists, err := trips.Exists(ctx, tripID)
	if err != nil {
		return err
	}
	if !exists {
		return apperrors.NewNotFoundError(fmt.Sprintf("trip %d not found", tripID))
	}
	return nil
}
