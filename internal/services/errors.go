package services

import (
	"errors"
	"fmt"
)

// Domain errors carry human-readable messages that are returned to the
// caller verbatim. Handlers map them onto HTTP status codes.
var (
	ErrUserAlreadyExists  = errors.New("User with this email already exists.")
	ErrInvalidCredentials = errors.New("Invalid credentials were provided. Can't login.")
	ErrInvalidToken       = errors.New("Could not validate credentials")
	ErrTokenExpired       = errors.New("Could not validate credentials")
	ErrUserNotFound       = errors.New("User not found")
)

type UserNotFoundError struct {
	UserID uint
}

func (e *UserNotFoundError) Error() string {
	return fmt.Sprintf("User with ID %d not found.", e.UserID)
}

type TaskNotFoundError struct {
	TaskID uint
}

func (e *TaskNotFoundError) Error() string {
	return fmt.Sprintf("Task with ID %d was not found.", e.TaskID)
}

type InvalidPriorityError struct {
	Priority int
}

func (e *InvalidPriorityError) Error() string {
	return fmt.Sprintf("Invalid priority %d. Priority must be between 0 and 3.", e.Priority)
}

type InvalidStatusError struct {
	Status string
}

func (e *InvalidStatusError) Error() string {
	return fmt.Sprintf("Invalid status '%s'. Status must be one of: TODO, In progress, Done.", e.Status)
}

type InvalidResponsiblePersonError struct {
	PersonID uint
}

func (e *InvalidResponsiblePersonError) Error() string {
	return fmt.Sprintf("Invalid responsible person ID %d.", e.PersonID)
}

type PermissionDeniedError struct {
	Reason string
}

func (e *PermissionDeniedError) Error() string {
	return e.Reason
}

func IsUserNotFound(err error) bool {
	var notFound *UserNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, ErrUserNotFound)
}

func IsTaskNotFound(err error) bool {
	var notFound *TaskNotFoundError
	return errors.As(err, &notFound)
}

func IsPermissionDenied(err error) bool {
	var denied *PermissionDeniedError
	return errors.As(err, &denied)
}

func IsValidationError(err error) bool {
	var invalidPriority *InvalidPriorityError
	var invalidStatus *InvalidStatusError
	var invalidPerson *InvalidResponsiblePersonError
	return errors.As(err, &invalidPriority) || errors.As(err, &invalidStatus) || errors.As(err, &invalidPerson)
}
