// Package memory keeps every repository in process memory. It backs service
// and HTTP tests and the server's -memory mode.
package memory

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
)

var ErrNoSQL = errors.New("memory store does not execute SQL")

type memberKey struct {
	workspaceID int64
	userID      int64
}

type memberRow struct {
	permission models.Permission
	seq        int64
}

type tables struct {
	users      map[int64]models.User
	workspaces map[int64]models.Workspace
	members    map[memberKey]memberRow
	items      map[int64]models.Item
	cycles     map[int64]models.CompletedCycle
	tokens     map[int64]models.PasswordResetToken

	// seq is never rolled back, like a database sequence.
	seq int64
}

func newTables() tables {
	return tables{
		users:      map[int64]models.User{},
		workspaces: map[int64]models.Workspace{},
		members:    map[memberKey]memberRow{},
		items:      map[int64]models.Item{},
		cycles:     map[int64]models.CompletedCycle{},
		tokens:     map[int64]models.PasswordResetToken{},
	}
}

// Store holds the tables shared by all memory repositories.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex
	t    tables
}

func NewStore() *Store {
	return &Store{t: newTables()}
}

func (s *Store) nextID() int64 {
	s.t.seq++
	return s.t.seq
}

// WithTx serialises transactions. Writes made through the transaction's
// handle are undone row by row when fn fails or panics, so concurrent writes
// outside the transaction survive a rollback.
func (s *Store) WithTx(ctx context.Context, fn func(ctx context.Context, tx dbx.DBTX) error) (err error) {
	s.txMu.Lock()
	defer s.txMu.Unlock()

	tx := &txLog{}
	defer func() {
		if p := recover(); p != nil {
			s.rollback(tx)
			panic(p)
		}
		if err != nil {
			s.rollback(tx)
		}
	}()

	return fn(ctx, tx)
}

func (s *Store) rollback(tx *txLog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	tx.undo = nil
}

// txLog is handed to transaction callbacks. It runs no SQL and collects the
// prior value of every row the transaction writes.
type txLog struct {
	noSQL
	undo []func()
}

// record saves m[k] for rollback when db is a transaction handle. Callers
// hold s.mu.
func record[K comparable, V any](db dbx.DBTX, m map[K]V, k K) {
	tx, ok := db.(*txLog)
	if !ok {
		return
	}
	old, had := m[k]
	tx.undo = append(tx.undo, func() {
		if had {
			m[k] = old
		} else {
			delete(m, k)
		}
	})
}

// noSQL fails every statement; memory repositories never issue one.
type noSQL struct{}

func (noSQL) ExecContext(context.Context, string, ...any) (sql.Result, error) {
	return nil, ErrNoSQL
}

func (noSQL) QueryContext(context.Context, string, ...any) (*sql.Rows, error) {
	return nil, ErrNoSQL
}

func (noSQL) QueryRowContext(context.Context, string, ...any) *sql.Row {
	return nil
}
