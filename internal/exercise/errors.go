package exercise

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found")
	ErrDuplicate       = errors.New("duplicate exercise")
	ErrOutOfRange      = errors.New("index out of range")
	ErrInvalidCategory = errors.New("invalid category")
)

// Messages returned to clients for request validation failures.
const (
	MsgMissingProblemFields = "Faltan campos requeridos: topic, level o exerciseText."
	MsgMissingTopic         = "Falta el campo requerido: topic."
	MsgMissingMarkFields    = "Faltan campos requeridos: topic, category o index."
	MsgEmptyPatch           = "No se proporcionaron campos para actualizar."
)

// ValidationError represents a rejected request field.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// GenerationError wraps any failure after request validation while producing
// new content: the upstream call, decoding its reply, or persisting it.
type GenerationError struct {
	Stage string
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

func levelError() *ValidationError {
	return &ValidationError{
		Field:   "level",
		Message: "El nivel debe ser uno de los siguientes: basico, intermedio, avanzado.",
	}
}

func categoryError() *ValidationError {
	return &ValidationError{
		Field:   "category",
		Message: "La categoría debe ser una de las siguientes: basico, intermedio, avanzado.",
		Err:     ErrInvalidCategory,
	}
}
