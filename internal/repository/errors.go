// Package repository implements the MySQL stores.  Driver errors are
// translated into the sentinel values of the model package so that
// handlers can map them to status codes without knowing which backend
// is configured.
package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/iliyamo/course-booking/internal/model"
)

// mysqlDuplicateEntry is the server error number for unique-key violations.
const mysqlDuplicateEntry = 1062

// translate maps driver errors onto model sentinels.  sql.ErrNoRows
// becomes model.ErrNotFound and duplicate keys become model.ErrConflict;
// anything else is returned wrapped with op for context.
func translate(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, model.ErrNotFound)
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
		return fmt.Errorf("%s: %w", op, model.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// parseID validates a UUID identifier coming from a request.
func parseID(id string) (string, error) {
	u, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return "", fmt.Errorf("%w: %q", model.ErrInvalidID, id)
	}
	return u.String(), nil
}

// upsertResult converts the rows-affected value of an INSERT ... ON
// DUPLICATE KEY UPDATE into an UpsertResult: 1 means a new row, 2 an
// updated row and 0 an existing row left unchanged.
func upsertResult(res sql.Result, newID string) (model.UpsertResult, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return model.UpsertResult{}, err
	}
	switch n {
	case 1:
		return model.UpsertResult{UpsertedCount: 1, UpsertedID: newID}, nil
	case 2:
		return model.UpsertResult{MatchedCount: 1, ModifiedCount: 1}, nil
	default:
		return model.UpsertResult{MatchedCount: 1}, nil
	}
}

// placeholders returns "?,?,?" with n markers.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// likePattern builds a case-insensitive substring pattern, escaping the
// LIKE wildcards contained in the search term.
func likePattern(search string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(search)) + "%"
}
