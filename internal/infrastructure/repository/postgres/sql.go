package postgres

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

const (
	pqUndefinedTable  = pq.ErrorCode("42P01")
	pqUndefinedColumn = pq.ErrorCode("42703")
)

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isSchemaMismatch reports a missing relation or column, which callers treat
// as "this strategy does not exist here" rather than as an outage.
func isSchemaMismatch(err error) bool {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return false
	}
	return pqErr.Code == pqUndefinedTable || pqErr.Code == pqUndefinedColumn
}

func nullInt64ToIntPtr(value sql.NullInt64) *int {
	if !value.Valid {
		return nil
	}
	v := int(value.Int64)
	return &v
}

func nullBoolToPtr(value sql.NullBool) *bool {
	if !value.Valid {
		return nil
	}
	v := value.Bool
	return &v
}

func nullableInt(value int) *int {
	if value <= 0 {
		return nil
	}
	return &value
}

func nullableString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

var errNoRowsAffected = errors.New("no rows affected")

func expectOneRow(result sql.Result, err error) error {
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("read rows affected: %w", err)
	}
	if affected == 0 {
		return errNoRowsAffected
	}
	return nil
}
