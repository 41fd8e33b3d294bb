package dbx

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
)

// Pool owns one *sql.DB per DSN for the lifetime of the process. It replaces
// package-level client caches: whoever creates the Pool closes it.
type Pool struct {
	driver string

	mu  sync.Mutex
	dbs map[string]*sql.DB
}

// NewPool returns an empty pool that opens connections with the named
// database/sql driver ("pgx" in production).
func NewPool(driver string) *Pool {
	return &Pool{driver: driver, dbs: make(map[string]*sql.DB)}
}

// Open returns the cached handle for dsn, opening and pinging a new one on
// first use.
func (p *Pool) Open(ctx context.Context, dsn string) (*sql.DB, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if db, ok := p.dbs[dsn]; ok {
		return db, nil
	}

	db, err := sql.Open(p.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", p.driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", p.driver, err)
	}

	p.dbs[dsn] = db
	return db, nil
}

// CloseAll closes every handle and empties the pool. The pool can be reused
// afterwards.
func (p *Pool) CloseAll() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var errs []error
	for dsn, db := range p.dbs {
		if err := db.Close(); err != nil {
			errs = append(errs, err)
		}
		delete(p.dbs, dsn)
	}
	return errors.Join(errs...)
}

// Len reports how many handles are open.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.dbs)
}
