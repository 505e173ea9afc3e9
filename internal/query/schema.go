package query

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// DescribeSchema returns a one-table-per-line description of the
// accessible schema for the model's prompt. The description is
// introspected lazily and cached for the process lifetime; failures
// yield an empty string so a chat request never dies on introspection.
func (e *Executor) DescribeSchema(ctx context.Context) string {
	e.schemaMu.Lock()
	defer e.schemaMu.Unlock()

	if e.schema != "" {
		return e.schema
	}

	var (
		schema string
		err    error
	)
	switch e.driver {
	case "postgres":
		schema, err = e.describePostgres(ctx)
	case "sqlite":
		schema, err = e.describeSQLite(ctx)
	default:
		err = fmt.Errorf("unsupported driver %q", e.driver)
	}
	if err != nil {
		log.Printf("WARN: schema introspection failed: %v", err)
		return ""
	}

	e.schema = schema
	return schema
}

func (e *Executor) describePostgres(ctx context.Context) (string, error) {
	rows, err := e.db.WithContext(ctx).Raw(
		`SELECT table_name, column_name, data_type
		 FROM information_schema.columns
		 WHERE table_schema = 'public'
		 ORDER BY table_name, ordinal_position`).Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var (
		b         strings.Builder
		current   string
		colsSoFar []string
	)
	flush := func() {
		if current != "" {
			fmt.Fprintf(&b, "%s(%s)\n", current, strings.Join(colsSoFar, ", "))
		}
	}
	for rows.Next() {
		var table, column, dataType string
		if err := rows.Scan(&table, &column, &dataType); err != nil {
			return "", err
		}
		if table != current {
			flush()
			current = table
			colsSoFar = colsSoFar[:0]
		}
		colsSoFar = append(colsSoFar, column+" "+dataType)
	}
	flush()
	return strings.TrimSpace(b.String()), rows.Err()
}

func (e *Executor) describeSQLite(ctx context.Context) (string, error) {
	rows, err := e.db.WithContext(ctx).Raw(
		`SELECT sql FROM sqlite_master
		 WHERE type = 'table' AND name NOT LIKE 'sqlite_%'
		 ORDER BY name`).Rows()
	if err != nil {
		return "", err
	}
	defer rows.Close()

	var b strings.Builder
	for rows.Next() {
		var ddl string
		if err := rows.Scan(&ddl); err != nil {
			return "", err
		}
		b.WriteString(ddl)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String()), rows.Err()
}
