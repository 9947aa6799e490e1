package service

import (
	"fmt"

	"github.com/google/uuid"

	"tenderbid/models"
)

const (
	DefaultLimit = 5
	MaxLimit     = 50
)

// Filter описывает выборку для списков тендеров, предложений и отзывов.
// Пустые поля не ограничивают выборку.
type Filter struct {
	ServiceTypes []models.ServiceType
	TenderID     *uuid.UUID
	Username     string
	Limit        int
	Offset       int
}

func (f *Filter) normalize() error {
	if f.Limit < 0 || f.Limit > MaxLimit {
		return fmt.Errorf("%w: limit must be in [0, %d]", models.ErrBadRequest, MaxLimit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: offset must not be negative", models.ErrBadRequest)
	}
	if f.Limit == 0 {
		f.Limit = DefaultLimit
	}
	for _, t := range f.ServiceTypes {
		if !t.Valid() {
			return fmt.Errorf("%w: service type %q", models.ErrBadRequest, t)
		}
	}
	return nil
}

// page применяет offset и limit после фильтрации.
func page[T any](items []T, f Filter) []T {
	if f.Offset >= len(items) {
		return []T{}
	}
	items = items[f.Offset:]
	if len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items
}
