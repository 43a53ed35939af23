package models

// MutationResult is the outcome of a create mutation. Validation problems are
// reported in-band: Success is false, Errors explains why and Entity is nil.
type MutationResult[T any] struct {
	Entity  *T
	Success bool
	Errors  []string
}

// Succeeded wraps a created entity.
func Succeeded[T any](entity *T) *MutationResult[T] {
	return &MutationResult[T]{Entity: entity, Success: true, Errors: []string{}}
}

// Failed builds a result carrying validation messages.
func Failed[T any](errs ...string) *MutationResult[T] {
	return &MutationResult[T]{Success: false, Errors: errs}
}
