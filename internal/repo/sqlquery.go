package repo

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"
)

// whereBuilder collects AND-ed conditions and their positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

func newWhere(cond string, arg any) *whereBuilder {
	w := &whereBuilder{}
	w.add(cond, arg)
	return w
}

// add appends cond, where ? is replaced by the next $N placeholder.
func (w *whereBuilder) add(cond string, arg any) {
	w.args = append(w.args, arg)
	w.conds = append(w.conds, strings.Replace(cond, "?", fmt.Sprintf("$%d", len(w.args)), 1))
}

func (w *whereBuilder) String() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// paged returns the LIMIT/OFFSET clause and the full argument list.
// A positive maxLimit caps the limit and is used when none is given.
func (w *whereBuilder) paged(offset, limit *int, maxLimit int) (string, []any) {
	args := slices.Clone(w.args)
	clause := ""

	n := 0
	if limit != nil && *limit > 0 {
		n = *limit
	}
	if maxLimit > 0 && (n == 0 || n > maxLimit) {
		n = maxLimit
	}
	if n > 0 {
		args = append(args, n)
		clause += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if offset != nil && *offset > 0 {
		args = append(args, *offset)
		clause += fmt.Sprintf(" OFFSET $%d", len(args))
	}
	return clause, args
}

// count runs SELECT COUNT(*) over from with the collected conditions.
func (w *whereBuilder) count(ctx context.Context, db *sql.DB, from string) (int, error) {
	var total int
	err := db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+from+w.String(), w.args...).Scan(&total)
	return total, err
}
