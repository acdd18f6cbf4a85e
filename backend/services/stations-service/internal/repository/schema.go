package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"powerbank/backend/libs/db"
)

// dayColumns holds the start/end column names indexed by time.Weekday.
var dayColumns = func() [7][2]string {
	var cols [7][2]string
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		cols[d] = [2]string{name + "_start", name + "_end"}
	}
	return cols
}()

func hoursColumnList() string {
	names := make([]string, 0, 14)
	for _, pair := range dayColumns {
		names = append(names, pair[0], pair[1])
	}
	return strings.Join(names, ", ")
}

// Migrate creates the stations table when missing.
func Migrate(ctx context.Context, database *db.DB) error {
	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS stations (\n")
	b.WriteString("\tid TEXT PRIMARY KEY,\n")
	b.WriteString("\ttitle TEXT NOT NULL DEFAULT '',\n")
	b.WriteString("\ttimezone TEXT NOT NULL DEFAULT '',\n")
	for _, pair := range dayColumns {
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", pair[0])
		fmt.Fprintf(&b, "\t%s TEXT NOT NULL DEFAULT '',\n", pair[1])
	}
	b.WriteString("\tonline BOOLEAN,\n")
	b.WriteString("\tlast_checked TIMESTAMP,\n")
	b.WriteString("\tcreated_at TIMESTAMP NOT NULL,\n")
	b.WriteString("\tupdated_at TIMESTAMP NOT NULL\n")
	b.WriteString(")")

	if _, err := database.ExecContext(ctx, b.String()); err != nil {
		return fmt.Errorf("migrate stations: %w", err)
	}
	return nil
}
