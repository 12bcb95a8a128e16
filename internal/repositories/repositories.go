// package repositories provides the persistence layer for operation history.
//
// The scans table is an audit log of maintenance runs. Playlist contents are
// never cached; every operation re-reads the playlist from the API.
package repositories

import (
	"database/sql"
	"fmt"
)

// CountRows returns the number of rows in the given table.
func CountRows(db *sql.DB, table string) (int, error) {
	var count int
	if err := db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s rows: %w", table, err)
	}
	return count, nil
}
