package drive

import (
	"errors"
	"fmt"
)

// Error kinds returned by the folder and file services. A folder or file that
// exists but belongs to another owner is reported exactly like a missing one.
var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
	ErrInternal   = errors.New("internal error")
)

type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindBadRequest
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "NotFound"
	case KindBadRequest:
		return "BadRequest"
	}
	return "Internal"
}

// KindOf classifies err; anything unrecognised is internal.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrBadRequest):
		return KindBadRequest
	}
	return KindInternal
}

func notFound(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

func badRequest(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBadRequest, fmt.Sprintf(format, args...))
}

// NonEmptyError blocks deleting a folder that still has children.
type NonEmptyError struct {
	FolderID string
	Folders  int64
	Files    int64
}

func (e *NonEmptyError) Error() string {
	return fmt.Sprintf("folder is not empty: contains %d folder(s) and %d file(s)", e.Folders, e.Files)
}

func (e *NonEmptyError) Is(target error) bool {
	return target == ErrBadRequest
}

// InternalError wraps an object store failure. The message names the operation
// only, the object key stays out of it.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return fmt.Sprintf("%s failed", e.Op)
}

func (e *InternalError) Is(target error) bool {
	return target == ErrInternal
}

func (e *InternalError) Unwrap() error {
	return e.Err
}
