// Package postgres implements the record store against a direct connection
// to the hosted database. It uses pgx directly (no ORM); capacity-sensitive
// writes re-validate inside a transaction so concurrent sessions cannot
// oversell a workshop through this backend.
package postgres

import (
	"strconv"
	"strings"

	"github.com/Shivanand-hulikatti/workshop-admin/internal/store"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store is the pgx-backed record store.
type Store struct {
	db *pgxpool.Pool
}

var _ store.Store = (*Store)(nil)

// New constructs a Store on an existing connection pool.
func New(db *pgxpool.Pool) *Store {
	return &Store{db: db}
}

// patchBuilder accumulates SET clauses for a partial UPDATE.
type patchBuilder struct {
	sets []string
	args []any
}

func (b *patchBuilder) add(column string, value any) {
	b.args = append(b.args, value)
	b.sets = append(b.sets, column+" = $"+strconv.Itoa(len(b.args)))
}

// arg registers a non-SET argument (e.g. a WHERE value) and returns its
// placeholder.
func (b *patchBuilder) arg(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *patchBuilder) empty() bool {
	return len(b.sets) == 0
}

func (b *patchBuilder) setClause() string {
	return strings.Join(b.sets, ", ")
}
