// Package sqlstore implements store.Store against the hosted relational
// backend. Rows use underscore_case columns; the scanners translate to
// and from the camelCase model structs.
package sqlstore

import (
	"database/sql"

	"github.com/gracechapel/shepherd/internal/store"
)

type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for connectivity probes.
func (s *Store) DB() *sql.DB {
	return s.db
}
