// Package postgres implements the storage interfaces on a pgx
// connection pool.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store implements every storage interface against a single pool.
type Store struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}
