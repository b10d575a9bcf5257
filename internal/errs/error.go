package errs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrOperationTag  = errors.New("operation tag does not match mutation")
	ErrChart         = errors.New("transition not permitted by chart")
	ErrDebounce      = errors.New("consecutive calendar mutations too close")
	ErrUninitialized = errors.New("calendar is not initialized")
)

// Violation is a failed precondition, carrying the violated rule id from
// the chart for diagnostics.
type Violation struct {
	ConstraintID string
	Reason       string
}

func (v *Violation) Error() string {
	if v.ConstraintID == "" {
		return v.Reason
	}
	return fmt.Sprintf("%s: %s", v.ConstraintID, v.Reason)
}

func NewViolation(constraintID, format string, args ...interface{}) *Violation {
	return &Violation{ConstraintID: constraintID, Reason: fmt.Sprintf(format, args...)}
}

// IsViolation reports whether err is a constraint violation.
func IsViolation(err error) bool {
	var v *Violation
	return errors.As(err, &v)
}
