package storage

import (
	"database/sql"
	"errors"
	"strings"
)

func closeWithError(cl interface{ Close() error }, err *error) {
	if cErr := cl.Close(); cErr != nil && *err == nil {
		*err = cErr
	}
}

func rollbackWithError(rb interface{ Rollback() error }, err *error) {
	if rbErr := rb.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) && *err == nil {
		*err = rbErr
	}
}

// batchInsert builds a multi-row INSERT for rows of width placeholders.
func batchInsert(prefix string, rows, width int) string {
	placeholder := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"

	var sb strings.Builder
	sb.WriteString(prefix)
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(placeholder)
	}
	return sb.String()
}
