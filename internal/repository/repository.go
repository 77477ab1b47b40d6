package repository

import (
	"database/sql"
	"errors"
	"fmt"
)

// exists interprets the outcome of a single-row probe query.
func exists(err error, op string) (bool, error) {
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return true, nil
}
