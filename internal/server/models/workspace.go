package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Workspace struct {
	ID      int64
	Balance decimal.Decimal
	// Cycle days are nil while the workspace has no items.
	CycleStartDay *int
	CycleEndDay   *int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Member struct {
	WorkspaceID int64
	UserID      int64
	Username    string
	DisplayName string
	Permission  Permission
}

// SharedWorkspace is a workspace the user belongs to without owning it.
type SharedWorkspace struct {
	WorkspaceID      int64
	OwnerDisplayName string
	Permission       Permission
}

// CompletedCycle is the snapshot taken when a workspace is reset.
// The json tags define the exported archive document.
type CompletedCycle struct {
	ID           int64           `json:"id"`
	WorkspaceID  int64           `json:"workspaceId"`
	CycleLabel   string          `json:"cycleLabel"`
	FinalBalance decimal.Decimal `json:"finalBalance"`
	Items        []Item          `json:"items"`
	// ArchiveKey is the object-storage key of the exported snapshot, if any.
	ArchiveKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}
