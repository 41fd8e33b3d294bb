package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/dmitrijs2005/fintracker/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistrar struct {
	got services.RegisterInput
	err error
}

func (f *fakeRegistrar) Register(_ context.Context, in services.RegisterInput) (*services.Session, error) {
	f.got = in
	if f.err != nil {
		return nil, f.err
	}
	return &services.Session{User: models.UserSummary{ID: 7, Username: in.Username}}, nil
}

// stubPasswords makes readPassword return the given values in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	old := readPassword
	t.Cleanup(func() { readPassword = old })
	i := 0
	readPassword = func(int) ([]byte, error) {
		if i >= len(pws) {
			return nil, errors.New("no more input")
		}
		pw := []byte(pws[i])
		i++
		return pw, nil
	}
}

func TestGetSimpleText(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("hello world\n"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "hello world" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetSimpleTextEOF(t *testing.T) {
	in := bufio.NewReader(strings.NewReader("lastline"))
	var out bytes.Buffer
	got, err := GetSimpleText(in, "Name?", &out)
	if err != nil || got != "lastline" {
		t.Fatalf("got %q, err=%v", got, err)
	}
}

func TestGetPassword_Error(t *testing.T) {
	stubPasswords(t)
	var out bytes.Buffer
	if _, err := GetPassword("Password", &out); err == nil {
		t.Fatal("expected error")
	}
}

func TestAddUser(t *testing.T) {
	stubPasswords(t, "Secret123", "Secret123")
	r := &fakeRegistrar{}
	var out bytes.Buffer

	err := AddUser(context.Background(), r, strings.NewReader("alice\nAlice A\nalice@example.com\n"), &out)
	require.NoError(t, err)

	assert.Equal(t, services.RegisterInput{
		Username:    "alice",
		DisplayName: "Alice A",
		Email:       "alice@example.com",
		Password:    "Secret123",
	}, r.got)
	assert.Contains(t, out.String(), "Created user alice (id 7)")
}

func TestAddUser_PasswordMismatch(t *testing.T) {
	stubPasswords(t, "Secret123", "Secret124")
	r := &fakeRegistrar{}

	err := AddUser(context.Background(), r, strings.NewReader("alice\nAlice\na@example.com\n"), &bytes.Buffer{})
	assert.ErrorIs(t, err, errPasswordMismatch)
	assert.Empty(t, r.got.Username)
}

func TestAddUser_RegisterError(t *testing.T) {
	stubPasswords(t, "Secret123", "Secret123")
	r := &fakeRegistrar{err: errors.New("Username already taken")}

	err := AddUser(context.Background(), r, strings.NewReader("alice\nAlice\na@example.com\n"), &bytes.Buffer{})
	assert.EqualError(t, err, "Username already taken")
}

func TestAddUser_MissingInput(t *testing.T) {
	r := &fakeRegistrar{}
	err := AddUser(context.Background(), r, strings.NewReader(""), &bytes.Buffer{})
	assert.Error(t, err)
}

type fakeMigrator struct {
	calls   []string
	version int64
	err     error
}

func (f *fakeMigrator) Up(context.Context) error {
	f.calls = append(f.calls, "up")
	f.version++
	return f.err
}

func (f *fakeMigrator) Down(context.Context) error {
	f.calls = append(f.calls, "down")
	f.version--
	return f.err
}

func (f *fakeMigrator) Status(context.Context) (int64, error) {
	f.calls = append(f.calls, "status")
	return f.version, nil
}

func TestMigrate(t *testing.T) {
	tests := []struct {
		command string
		calls   []string
		output  string
	}{
		{"up", []string{"up", "status"}, "schema version: 2\n"},
		{"down", []string{"down", "status"}, "schema version: 0\n"},
		{"status", []string{"status"}, "schema version: 1\n"},
	}
	for _, tt := range tests {
		t.Run(tt.command, func(t *testing.T) {
			m := &fakeMigrator{version: 1}
			var out bytes.Buffer
			require.NoError(t, Migrate(context.Background(), m, tt.command, &out))
			assert.Equal(t, tt.calls, m.calls)
			assert.Equal(t, tt.output, out.String())
		})
	}
}

func TestMigrate_Errors(t *testing.T) {
	m := &fakeMigrator{err: errors.New("locked")}
	assert.EqualError(t, Migrate(context.Background(), m, "up", &bytes.Buffer{}), "locked")

	err := Migrate(context.Background(), &fakeMigrator{}, "sideways", &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown migrate command")
}
