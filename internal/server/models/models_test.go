package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestPermission_Capabilities(t *testing.T) {
	tests := []struct {
		p            Permission
		edit         bool
		grantMember  bool
		grantViewer  bool
		grantOwner   bool
		removeOthers bool
		leave        bool
	}{
		{PermissionOwner, true, true, true, false, true, false},
		{PermissionMember, true, false, true, false, true, true},
		{PermissionViewer, false, false, false, false, false, true},
		{Permission("ADMIN"), false, false, false, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.p), func(t *testing.T) {
			assert.Equal(t, tt.edit, tt.p.CanEdit())
			assert.Equal(t, tt.grantMember, tt.p.CanGrant(PermissionMember))
			assert.Equal(t, tt.grantViewer, tt.p.CanGrant(PermissionViewer))
			assert.Equal(t, tt.grantOwner, tt.p.CanGrant(PermissionOwner))
			assert.Equal(t, tt.grantViewer, tt.p.CanAddMembers())
			assert.Equal(t, tt.removeOthers, tt.p.CanRemoveOthers())
			assert.Equal(t, tt.leave, tt.p.CanLeave())
		})
	}

	assert.True(t, PermissionViewer.Valid())
	assert.False(t, Permission("viewer").Valid())
}

func TestItem_BalanceDelta(t *testing.T) {
	income := Item{Type: ItemIncome, Amount: decimal.NewFromInt(5000)}
	rent := Item{Type: ItemRent, Amount: decimal.RequireFromString("500.25")}

	assert.True(t, income.BalanceDelta(true).Equal(decimal.NewFromInt(5000)))
	assert.True(t, income.BalanceDelta(false).Equal(decimal.NewFromInt(-5000)))
	assert.True(t, rent.BalanceDelta(true).Equal(decimal.RequireFromString("-500.25")))
	assert.True(t, rent.BalanceDelta(false).Equal(decimal.RequireFromString("500.25")))
}

func TestItemType_Valid(t *testing.T) {
	for _, ty := range []ItemType{ItemIncome, ItemCreditCard, ItemLoanPayment, ItemRent, ItemOther} {
		assert.True(t, ty.Valid(), ty)
	}
	assert.False(t, ItemType("SALARY").Valid())
	assert.True(t, ItemIncome.IsIncome())
	assert.False(t, ItemCreditCard.IsIncome())
}

func TestPasswordResetToken_Lifecycle(t *testing.T) {
	now := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)
	tok := PasswordResetToken{ExpiresAt: now.Add(time.Hour)}

	assert.True(t, tok.IsValid(now))
	assert.False(t, tok.IsValid(now.Add(time.Hour)), "expiry instant is already invalid")

	used := now
	tok.UsedAt = &used
	assert.True(t, tok.IsUsed())
	assert.False(t, tok.IsValid(now))
}

func TestUser_Summary(t *testing.T) {
	u := User{ID: 3, Username: "alice", DisplayName: "Alice", PasswordHash: "secret"}
	assert.Equal(t, UserSummary{ID: 3, Username: "alice", DisplayName: "Alice"}, u.Summary())
}
