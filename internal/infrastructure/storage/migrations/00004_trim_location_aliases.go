package migrations

import (
	"context"
	"database/sql"
	"strings"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigrationContext(upTrimLocationAliases, downTrimLocationAliases)
}

// upTrimLocationAliases cleans aliases saved before blank and padded
// entries were rejected on save: keys and names are trimmed, rows left
// empty are dropped, and trimmed duplicates keep the last name written.
func upTrimLocationAliases(ctx context.Context, tx *sql.Tx) error {
	rows, err := tx.QueryContext(ctx, `
		SELECT place, short_name FROM location_aliases ORDER BY updated_at, place
	`)
	if err != nil {
		return err
	}

	cleaned := make(map[string]string)
	var order []string
	for rows.Next() {
		var place, short string
		if err := rows.Scan(&place, &short); err != nil {
			rows.Close()
			return err
		}
		place, short = strings.TrimSpace(place), strings.TrimSpace(short)
		if place == "" || short == "" {
			continue
		}
		if _, seen := cleaned[place]; !seen {
			order = append(order, place)
		}
		cleaned[place] = short
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	if _, err := tx.ExecContext(ctx, `DELETE FROM location_aliases`); err != nil {
		return err
	}
	for _, place := range order {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO location_aliases (place, short_name) VALUES (?, ?)
		`, place, cleaned[place]); err != nil {
			return err
		}
	}
	return nil
}

// downTrimLocationAliases is a no-op, trimmed whitespace cannot be restored
func downTrimLocationAliases(ctx context.Context, tx *sql.Tx) error {
	return nil
}
