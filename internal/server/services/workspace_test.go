package services

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceGet_CycleDaysAndCards(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.register(t, "alice")
	ws := e.workspaceOf(t, s.User.ID)

	v, err := e.ws.Get(ctx, s.User.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, v.Workspace.CycleStartDay)
	assert.Equal(t, "Mar 1 - Mar 31", v.CycleLabel)

	e.addItem(t, s.User.ID, ws, models.ItemIncome, "3000", 25)
	e.addItem(t, s.User.ID, ws, models.ItemRent, "1200", 15)

	v, err = e.ws.Get(ctx, s.User.ID, &ws)
	require.NoError(t, err)
	require.NotNil(t, v.Workspace.CycleStartDay)
	assert.Equal(t, 15, *v.Workspace.CycleStartDay)
	assert.Equal(t, 14, *v.Workspace.CycleEndDay)
	assert.Equal(t, "Feb 15 - Mar 14", v.CycleLabel)

	require.Len(t, v.Items, 2)
	assert.Equal(t, 15, v.Items[0].DayOfMonth)
	assert.True(t, v.Cards.CurrentBalance.IsZero())
	assert.True(t, v.Cards.ExpectedBalance.Equal(dec("1800")))
	assert.True(t, v.Cards.DeficitExcess.Equal(dec("1800")))
}

func TestWorkspaceGet_AccessDenied(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	ws := e.workspaceOf(t, alice.User.ID)

	_, err := e.ws.Get(context.Background(), bob.User.ID, &ws)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "Access denied", err.Error())

	_, err = e.ws.Get(context.Background(), 999, nil)
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestSetBalance(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.register(t, "alice")

	ws, err := e.ws.SetBalance(ctx, s.User.ID, nil, dec("1234.567"))
	require.NoError(t, err)
	assert.True(t, ws.Balance.Equal(dec("1234.57")))

	_, err = e.ws.SetBalance(ctx, s.User.ID, nil, dec("-10000000000"))
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestReset_SnapshotsAndClearsPaidFlags(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.register(t, "alice")
	ws := e.workspaceOf(t, s.User.ID)

	_, err := e.ws.SetBalance(ctx, s.User.ID, nil, dec("100"))
	require.NoError(t, err)
	income := e.addItem(t, s.User.ID, ws, models.ItemIncome, "5000", 1)
	e.addItem(t, s.User.ID, ws, models.ItemCreditCard, "300", 20)
	_, err = e.items.TogglePaid(ctx, s.User.ID, income.ID)
	require.NoError(t, err)

	cc, err := e.ws.Reset(ctx, s.User.ID, nil)
	require.NoError(t, err)
	assert.True(t, cc.FinalBalance.Equal(dec("5100")))
	assert.Equal(t, "Mar 1 - Mar 31", cc.CycleLabel)
	require.Len(t, cc.Items, 2)
	assert.True(t, cc.Items[0].IsPaid)

	v, err := e.ws.Get(ctx, s.User.ID, nil)
	require.NoError(t, err)
	assert.True(t, v.Workspace.Balance.Equal(dec("5100")), "reset leaves the balance alone")
	for _, it := range v.Items {
		assert.False(t, it.IsPaid)
	}

	cycles, err := e.ws.ListCycles(ctx, s.User.ID)
	require.NoError(t, err)
	require.Len(t, cycles, 1)
	assert.Equal(t, cc.ID, cycles[0].ID)

	// archived on reset
	require.NotEmpty(t, cycles[0].ArchiveKey)
	body, ok := e.archive.Get(cycles[0].ArchiveKey)
	require.True(t, ok)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(body, &doc))
	assert.Equal(t, "Mar 1 - Mar 31", doc["cycleLabel"])
	assert.Len(t, doc["items"], 2)
}

func TestReset_ViewerForbidden(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")
	ws := e.workspaceOf(t, alice.User.ID)
	require.NoError(t, e.sharing.AddMember(ctx, alice.User.ID, ws, bob.User.ID, models.PermissionViewer))

	_, err := e.ws.Reset(ctx, bob.User.ID, &ws)
	require.ErrorIs(t, err, common.ErrForbidden)
	assert.Equal(t, "Insufficient permissions", err.Error())

	cycles, err := e.ws.ListCycles(ctx, alice.User.ID)
	require.NoError(t, err)
	assert.Empty(t, cycles)
}

func TestDeleteCycleAndExport(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	alice := e.register(t, "alice")
	bob := e.register(t, "bob")

	cc, err := e.ws.Reset(ctx, alice.User.ID, nil)
	require.NoError(t, err)

	link, err := e.ws.ExportURL(ctx, alice.User.ID, cc.ID)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(link, "memory://workspaces/"))

	// other users cannot see it
	_, err = e.ws.ExportURL(ctx, bob.User.ID, cc.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)
	err = e.ws.DeleteCycle(ctx, bob.User.ID, cc.ID)
	assert.ErrorIs(t, err, common.ErrorNotFound)

	require.NoError(t, e.ws.DeleteCycle(ctx, alice.User.ID, cc.ID))
	err = e.ws.DeleteCycle(ctx, alice.User.ID, cc.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, "Cycle not found", err.Error())
}

func TestExport_ArchiveDisabled(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	s := e.register(t, "alice")
	svc := NewWorkspaceService(e.ws.Deps, nil)

	cc, err := svc.Reset(ctx, s.User.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, cc.ArchiveKey)

	_, err = svc.ExportURL(ctx, s.User.ID, cc.ID)
	require.ErrorIs(t, err, common.ErrorNotFound)
	assert.Equal(t, msgArchiveDisabled, err.Error())
}
