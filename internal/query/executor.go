// Package query validates and runs SQL statements against the user's
// database, bounding execution time and normalizing results into
// transport-safe rows.
package query

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm"

	"dbchat/internal/domain"
	"dbchat/internal/policy"
)

// ErrUnsafeStatement is returned when the statement's class is not
// allow-listed, or when more than one statement is batched into a call.
var ErrUnsafeStatement = errors.New("statement not allowed")

// ErrQueryTimeout is returned when a statement exceeds the configured
// execution deadline. The statement is not retried.
var ErrQueryTimeout = errors.New("query timed out")

// QueryError carries the engine's own failure message verbatim. Callers
// must frame it before showing it to an end user.
type QueryError struct {
	Message string
}

func (e *QueryError) Error() string {
	return e.Message
}

// Executor runs single SQL statements through the policy gate.
type Executor struct {
	db      *gorm.DB
	driver  string
	policy  *policy.Engine
	allowed []string
	timeout time.Duration

	schemaMu sync.Mutex
	schema   string
}

// NewExecutor creates an executor. allowed is the operator's statement
// allow-list (leading keywords, case-insensitive).
func NewExecutor(db *gorm.DB, driver string, eng *policy.Engine, allowed []string, timeout time.Duration) *Executor {
	return &Executor{
		db:      db,
		driver:  driver,
		policy:  eng,
		allowed: allowed,
		timeout: timeout,
	}
}

// Execute validates and runs one statement, returning normalized rows.
func (e *Executor) Execute(ctx context.Context, stmt string) (*domain.QueryResult, error) {
	stmt = strings.TrimSpace(stmt)

	keyword := leadingKeyword(stmt)
	if keyword == "" {
		return nil, fmt.Errorf("%w: empty statement", ErrUnsafeStatement)
	}

	// One statement per call; interior semicolons fail closed, even inside
	// string literals.
	if strings.Contains(strings.TrimRight(stmt, "; \t\n"), ";") {
		return nil, fmt.Errorf("%w: statement batching is not permitted", ErrUnsafeStatement)
	}

	decision, err := e.policy.Evaluate(ctx, map[string]any{
		"keyword": keyword,
		"allowed": e.allowed,
	})
	if err != nil {
		return nil, fmt.Errorf("policy evaluation failed: %w", err)
	}
	if decision != policy.DecisionAllow {
		return nil, fmt.Errorf("%w: %s statements are not in the allow-list", ErrUnsafeStatement, keyword)
	}

	queryCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	rows, err := e.db.WithContext(queryCtx).Raw(stmt).Rows()
	if err != nil {
		return nil, classify(err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, classify(err)
	}

	result := &domain.QueryResult{
		Columns: columns,
		Records: []map[string]any{},
	}
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, classify(err)
		}
		record := make(map[string]any, len(columns))
		for i, col := range columns {
			record[col] = normalize(values[i])
		}
		result.Records = append(result.Records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, classify(err)
	}

	return result, nil
}

// leadingKeyword extracts the statement's first SQL token, upper-cased.
func leadingKeyword(stmt string) string {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return ""
	}
	return strings.ToUpper(strings.Trim(fields[0], "(;"))
}

// classify maps driver errors onto the executor's error kinds.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) ||
		strings.Contains(err.Error(), "context deadline exceeded") {
		return fmt.Errorf("%w: %v", ErrQueryTimeout, err)
	}
	return &QueryError{Message: err.Error()}
}

// normalize converts a scanned value into a transport-safe scalar.
func normalize(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return v
	}
}
