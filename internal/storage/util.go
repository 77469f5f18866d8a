// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package storage

import (
	"database/sql"
	"fmt"
	"strings"
)

func joinColumns(columns []string) string {
	return strings.Join(columns, ", ")
}

// literal quotes a constant for use as a SQL string literal
func literal(v string) string {
	return "'" + strings.ReplaceAll(v, "'", "''") + "'"
}

// checkAffected turns an update that matched nothing into ErrNotFound
func checkAffected(res sql.Result, resource string) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", resource, ErrNotFound)
	}

	return nil
}
