package service

import (
	"errors"
	"fmt"
)

// Errores de autenticacion: todos se exponen al cliente como el mismo 401.
var (
	ErrInvalidAssertion = errors.New("invalid identity assertion")
	ErrUserNotFound     = errors.New("user not found or deactivated")
	ErrMalformedToken   = errors.New("malformed token")
	ErrWrongTokenType   = errors.New("wrong token type")
)

// ErrPersistence envuelve cualquier fallo de base de datos.
var ErrPersistence = errors.New("persistence failure")

// IsAuthError indica si err pertenece a la clase de fallos de autenticacion.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrInvalidAssertion) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrMalformedToken) ||
		errors.Is(err, ErrWrongTokenType)
}

func persistenceError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrPersistence, op, err)
}
