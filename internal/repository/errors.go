package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrDuplicate reports a unique constraint collision.
var ErrDuplicate = errors.New("duplicate record")

const uniqueViolation = pq.ErrorCode("23505")

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}
