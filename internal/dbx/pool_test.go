package dbx

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestPool_OpenCachesPerDSN(t *testing.T) {
	p := NewPool("sqlite")
	ctx := context.Background()

	a1, err := p.Open(ctx, "file:pool_a?mode=memory&cache=shared")
	require.NoError(t, err)
	a2, err := p.Open(ctx, "file:pool_a?mode=memory&cache=shared")
	require.NoError(t, err)
	b, err := p.Open(ctx, "file:pool_b?mode=memory&cache=shared")
	require.NoError(t, err)

	assert.Same(t, a1, a2)
	assert.NotSame(t, a1, b)
	assert.Equal(t, 2, p.Len())

	require.NoError(t, p.CloseAll())
	assert.Equal(t, 0, p.Len())
	assert.Error(t, a1.PingContext(ctx), "handle must be closed")
}

func TestPool_OpenUnknownDriver(t *testing.T) {
	p := NewPool("no-such-driver")
	_, err := p.Open(context.Background(), "whatever")
	require.Error(t, err)
	assert.Equal(t, 0, p.Len())
}

func TestUniqueViolation(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505", ConstraintName: "users_username_key"}

	name, ok := UniqueViolation(fmt.Errorf("insert: %w", dup))
	assert.True(t, ok)
	assert.Equal(t, "users_username_key", name)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	assert.False(t, ok)

	_, ok = UniqueViolation(errors.New("plain"))
	assert.False(t, ok)
}
