package cms

import (
	"errors"
	"fmt"
)

// Sentinel errors for CMS operations.
var (
	ErrNotFound    = errors.New("cms: not found")
	ErrRateLimited = errors.New("cms: rate limited by server")
	ErrServer      = errors.New("cms: server error")
	ErrBadResponse = errors.New("cms: unexpected response")
)

// Error wraps an underlying error with operation context.
type Error struct {
	Op  string // listRooms, getMedia, listPosts, getPost
	ID  int64  // media or post id, if applicable
	Err error
}

func (e *Error) Error() string {
	if e.ID != 0 {
		return fmt.Sprintf("cms %s [%d]: %v", e.Op, e.ID, e.Err)
	}
	return fmt.Sprintf("cms %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func wrapError(op string, id int64, err error) error {
	return &Error{Op: op, ID: id, Err: err}
}
