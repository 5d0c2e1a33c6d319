package service

import "fmt"

// NotFoundError signals that a requested entity does not exist.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string {
	return e.Message
}

// ConflictError signals that a write collides with existing data, such as a
// duplicate name or an invalid category parent.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string {
	return e.Message
}

// DependencyConflictError signals that a delete is blocked because other
// entities still reference the target. The message carries the dependent
// count and what to do about it.
type DependencyConflictError struct {
	Message string
}

func (e *DependencyConflictError) Error() string {
	return e.Message
}

// CollaboratorError signals a failure talking to the scraping service.
type CollaboratorError struct {
	Op  string
	Err error
}

func (e *CollaboratorError) Error() string {
	return fmt.Sprintf("scraper %s failed: %v", e.Op, e.Err)
}

func (e *CollaboratorError) Unwrap() error {
	return e.Err
}
