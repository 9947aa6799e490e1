// Package versioned хранит историю содержимого сущностей только на добавление.
//
// Содержимое сущности живёт в цепочке неизменяемых версий 1..N. Текущая версия
// имеет наибольший номер. Правка и откат не трогают существующие строки: оба
// добавляют версию N+1.
//
// Store не открывает транзакций. Вызывающий передаёт backend, привязанный к
// транзакции, которая уже держит блокировку сущности, поэтому чтение максимума
// и запись максимума+1 не перемежаются с другим писателем.
package versioned

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"tenderbid/models"
)

type Version[C any] struct {
	ID       uuid.UUID
	EntityID uuid.UUID
	Number   int
	Content  C
}

// Backend описывает хранилище версий одного вида сущностей.
type Backend[C any] interface {
	// EntityExists сообщает, есть ли запись самой сущности.
	EntityExists(ctx context.Context, entityID uuid.UUID) (bool, error)
	// LatestVersion возвращает models.ErrNotFound, если версий нет.
	LatestVersion(ctx context.Context, entityID uuid.UUID) (Version[C], error)
	// GetVersion возвращает models.ErrNotFound для неизвестного номера.
	GetVersion(ctx context.Context, entityID uuid.UUID, number int) (Version[C], error)
	// InsertVersion возвращает models.ErrConflict при повторе номера.
	InsertVersion(ctx context.Context, v Version[C]) error
}

type Store[C any, P any] struct {
	backend Backend[C]
	merge   func(C, P) C
}

func New[C any, P any](backend Backend[C], merge func(C, P) C) *Store[C, P] {
	return &Store[C, P]{backend: backend, merge: merge}
}

// Append записывает версию number. Номер (текущий максимум + 1) передаёт
// вызывающий, так Append сочетается с Rollback и Update.
func (s *Store[C, P]) Append(ctx context.Context, entityID uuid.UUID, number int, content C) (Version[C], error) {
	if number < 1 {
		return Version[C]{}, fmt.Errorf("%w: version must be positive, got %d", models.ErrBadRequest, number)
	}
	_, err := s.backend.GetVersion(ctx, entityID, number)
	switch {
	case err == nil:
		return Version[C]{}, fmt.Errorf("%w: version %d of %s already exists", models.ErrConflict, number, entityID)
	case !errors.Is(err, models.ErrNotFound):
		return Version[C]{}, err
	}

	v := Version[C]{
		ID:       uuid.New(),
		EntityID: entityID,
		Number:   number,
		Content:  content,
	}
	if err := s.backend.InsertVersion(ctx, v); err != nil {
		return Version[C]{}, err
	}
	return v, nil
}

// Init записывает версию 1 только что созданной сущности.
func (s *Store[C, P]) Init(ctx context.Context, entityID uuid.UUID, content C) (Version[C], error) {
	return s.Append(ctx, entityID, 1, content)
}

// Current возвращает версию с наибольшим номером.
func (s *Store[C, P]) Current(ctx context.Context, entityID uuid.UUID) (Version[C], error) {
	v, err := s.backend.LatestVersion(ctx, entityID)
	if err == nil {
		return v, nil
	}
	if !errors.Is(err, models.ErrNotFound) {
		return Version[C]{}, err
	}

	exists, existsErr := s.backend.EntityExists(ctx, entityID)
	if existsErr != nil {
		return Version[C]{}, existsErr
	}
	if exists {
		// сущность без версий: нарушен инвариант создания, и объединять не с чем
		return Version[C]{}, fmt.Errorf("%w: %w: entity %s has no versions", models.ErrInvariant, models.ErrNotFound, entityID)
	}
	return Version[C]{}, fmt.Errorf("%w: entity %s", models.ErrNotFound, entityID)
}

// Get возвращает версию с указанным номером.
func (s *Store[C, P]) Get(ctx context.Context, entityID uuid.UUID, number int) (Version[C], error) {
	return s.backend.GetVersion(ctx, entityID, number)
}

// Rollback копирует содержимое версии target вперёд новой версией.
// Сама версия target не меняется.
func (s *Store[C, P]) Rollback(ctx context.Context, entityID uuid.UUID, target int) (Version[C], error) {
	old, err := s.Get(ctx, entityID, target)
	if err != nil {
		return Version[C]{}, err
	}
	current, err := s.Current(ctx, entityID)
	if err != nil {
		return Version[C]{}, err
	}
	return s.Append(ctx, entityID, current.Number+1, old.Content)
}

// Update накладывает patch на текущее содержимое и добавляет результат.
func (s *Store[C, P]) Update(ctx context.Context, entityID uuid.UUID, patch P) (Version[C], error) {
	current, err := s.Current(ctx, entityID)
	if err != nil {
		return Version[C]{}, err
	}
	return s.Append(ctx, entityID, current.Number+1, s.merge(current.Content, patch))
}
