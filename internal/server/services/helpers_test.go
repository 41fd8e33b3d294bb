package services

import (
	"context"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/fintracker/internal/cryptox"
	"github.com/dmitrijs2005/fintracker/internal/logging"
	"github.com/dmitrijs2005/fintracker/internal/server/archive"
	"github.com/dmitrijs2005/fintracker/internal/server/config"
	"github.com/dmitrijs2005/fintracker/internal/server/mailer"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/dmitrijs2005/fintracker/internal/server/repositories/memory"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testPassword = "Secret123"

// testClock is a settable clock for token expiry.
type testClock struct{ t time.Time }

func (c *testClock) Now() time.Time          { return c.t }
func (c *testClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

type env struct {
	store   *memory.Store
	clock   *testClock
	mail    *mailer.Recorder
	archive *archive.MemoryStore

	auth    *AuthService
	ws      *WorkspaceService
	items   *ItemService
	sharing *SharingService
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.BcryptCost = bcrypt.MinCost

	codec, err := cryptox.NewEmailCodec(cfg.EmailEncryptionKey, cfg.EmailHMACKey)
	require.NoError(t, err)

	store := memory.NewStore()
	clock := &testClock{t: time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)}
	d := Deps{
		Tx:    store,
		Repos: memory.NewManager(store),
		Log:   logging.Nop(),
		Now:   clock.Now,
	}

	rec := &mailer.Recorder{}
	authSvc, err := NewAuthService(d, cfg, codec, rec)
	require.NoError(t, err)

	arch := archive.NewMemoryStore()
	return &env{
		store:   store,
		clock:   clock,
		mail:    rec,
		archive: arch,
		auth:    authSvc,
		ws:      NewWorkspaceService(d, arch),
		items:   NewItemService(d),
		sharing: NewSharingService(d),
	}
}

func (e *env) register(t *testing.T, username string) *Session {
	t.Helper()
	s, err := e.auth.Register(context.Background(), RegisterInput{
		Username:    username,
		DisplayName: "User " + username,
		Password:    testPassword,
		Email:       username + "@example.com",
	})
	require.NoError(t, err)
	return s
}

func (e *env) workspaceOf(t *testing.T, userID int64) int64 {
	t.Helper()
	v, err := e.ws.Get(context.Background(), userID, nil)
	require.NoError(t, err)
	return v.Workspace.ID
}

func (e *env) addItem(t *testing.T, userID, wsID int64, ty models.ItemType, amount string, day int) *models.Item {
	t.Helper()
	it, err := e.items.Create(context.Background(), userID, CreateItemInput{
		WorkspaceID: wsID,
		Type:        ty,
		Label:       string(ty),
		Amount:      dec(amount),
		DayOfMonth:  day,
	})
	require.NoError(t, err)
	return it
}

// resetTokenFrom pulls the token out of the last reset e-mail.
func (e *env) resetTokenFrom(t *testing.T) string {
	t.Helper()
	sent := e.mail.Sent()
	require.NotEmpty(t, sent)

	text := sent[len(sent)-1].Text
	start := strings.Index(text, "http")
	require.GreaterOrEqual(t, start, 0)
	link, _, _ := strings.Cut(text[start:], "\n")

	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
