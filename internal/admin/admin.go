// Package admin implements the operator commands shipped next to the server:
// creating accounts from a terminal and managing the database schema.
package admin

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/server/services"
)

// Registrar creates accounts. *services.AuthService satisfies it.
type Registrar interface {
	Register(ctx context.Context, in services.RegisterInput) (*services.Session, error)
}

// Migrator drives schema migrations.
type Migrator interface {
	Up(ctx context.Context) error
	Down(ctx context.Context) error
	Status(ctx context.Context) (int64, error)
}

var errPasswordMismatch = errors.New("passwords do not match")

// AddUser prompts for the account fields and registers the user together
// with their workspace.
func AddUser(ctx context.Context, r Registrar, in io.Reader, out io.Writer) error {
	reader := bufio.NewReader(in)

	username, err := GetSimpleText(reader, "Username", out)
	if err != nil {
		return err
	}
	displayName, err := GetSimpleText(reader, "Display name", out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(reader, "Email", out)
	if err != nil {
		return err
	}

	password, err := GetPassword("Password", out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := GetPassword("Repeat password", out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if !bytes.Equal(password, confirm) {
		return errPasswordMismatch
	}

	sess, err := r.Register(ctx, services.RegisterInput{
		Username:    username,
		DisplayName: displayName,
		Email:       email,
		Password:    string(password),
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Created user %s (id %d)\n", sess.User.Username, sess.User.ID)
	return nil
}

// Migrate runs one of up, down or status.
func Migrate(ctx context.Context, m Migrator, command string, out io.Writer) error {
	switch command {
	case "up":
		if err := m.Up(ctx); err != nil {
			return err
		}
	case "down":
		if err := m.Down(ctx); err != nil {
			return err
		}
	case "status":
	default:
		return fmt.Errorf("unknown migrate command %q (want up, down or status)", command)
	}

	v, err := m.Status(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "schema version: %d\n", v)
	return nil
}
