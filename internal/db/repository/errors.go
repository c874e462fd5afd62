package repository

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

var (
	// ErrNotFound is returned when a row lookup matches nothing
	ErrNotFound = errors.New("not found")

	// ErrDuplicateEmail is returned when a write collides with the users
	// email uniqueness constraint
	ErrDuplicateEmail = errors.New("email already exists")

	// ErrInsufficientStock is returned when an order line cannot reserve
	// enough stock for its product
	ErrInsufficientStock = errors.New("insufficient stock")
)

// isUniqueViolation reports whether err is a Postgres unique-constraint
// failure (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

// isEmailViolation reports whether err is specifically the users email
// uniqueness constraint.
func isEmailViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505" &&
		strings.Contains(pqErr.Constraint, "email")
}

// nextSequentialID derives the next human-readable ID from the current
// maximum, e.g. nextSequentialID("O", "O0012") == "O0013". An empty last ID
// starts the sequence at 1. IDs are zero-padded to four digits so
// lexicographic and numeric order agree.
func nextSequentialID(prefix, last string) string {
	n := 0
	if last != "" {
		n, _ = strconv.Atoi(last[len(prefix):])
	}
	return fmt.Sprintf("%s%04d", prefix, n+1)
}

// maxIDRetries bounds the read-max-then-insert retry loop used for the
// human-readable IDs. Two concurrent writers can compute the same next ID;
// the loser of the insert race recomputes and tries again.
const maxIDRetries = 3
