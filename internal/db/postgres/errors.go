package postgres

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres SQLSTATE codes this package reacts to
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// constraintViolation reports whether err is a pq error with the given code,
// returning the violated constraint's name
func constraintViolation(err error, code string) (string, bool) {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return "", false
	}
	if string(pqErr.Code) != code {
		return "", false
	}
	return pqErr.Constraint, true
}
