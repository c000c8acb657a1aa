package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/TheYates/bernat-medical-sub000/internal/pricing"
	"github.com/TheYates/bernat-medical-sub000/internal/repository"

	"gorm.io/gorm"
)

// Error kinds. Handlers map each to an HTTP status; anything that is not a
// classified *Error is a server error.
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrInvalidState      = errors.New("invalid state")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
)

// Error is a classified domain error. Message is safe to show to clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, format string, args ...interface{}) error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// fromPricing turns a pricing/converter validation failure into InvalidInput.
func fromPricing(err error) error {
	msg := strings.TrimPrefix(err.Error(), pricing.ErrInvalidInput.Error()+": ")
	return newError(ErrInvalidInput, "%s", msg)
}

// classify maps storage-level failures onto the domain taxonomy. entity names
// the row a missing-record error refers to.
func classify(err error, entity string) error {
	var domainErr *Error
	switch {
	case err == nil:
		return nil
	case errors.As(err, &domainErr):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound), errors.Is(err, repository.ErrForeignKey):
		return newError(ErrNotFound, "%s not found", entity)
	case errors.Is(err, repository.ErrDuplicate):
		return newError(ErrConflict, "%s already exists", entity)
	case errors.Is(err, repository.ErrCheckViolation):
		return newError(ErrInsufficientStock, "Operation would violate a stock constraint")
	}
	return err
}
