package models

import "errors"

var (
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrBadRequest = errors.New("bad request")
	ErrConflict   = errors.New("conflict")
	// ErrInvariant нарушенный инвариант хранилища, а не ошибка пользователя.
	ErrInvariant = errors.New("internal invariant violation")
)
