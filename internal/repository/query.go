package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/sma-academic-api/internal/models"
)

// conditions accumulates positional WHERE clauses. Each expression receives the
// placeholder index of its argument through %d (or %[1]d when used twice).
type conditions struct {
	clauses []string
	args    []interface{}
}

func (c *conditions) add(expr string, arg interface{}) {
	c.args = append(c.args, arg)
	c.clauses = append(c.clauses, fmt.Sprintf(expr, len(c.args)))
}

func (c *conditions) where() string {
	if len(c.clauses) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(c.clauses, " AND ")
}

func limitOffset(page, size int) string {
	page, size = models.NormalisePage(page, size)
	return fmt.Sprintf(" LIMIT %d OFFSET %d", size, (page-1)*size)
}

func likePattern(search string) string {
	return "%" + strings.ToLower(strings.TrimSpace(search)) + "%"
}

// pick returns exec when the caller is inside a transaction, the pool otherwise.
func pick(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}
