package httpapi

import (
	"time"

	"github.com/dmitrijs2005/fintracker/internal/server/cycle"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/dmitrijs2005/fintracker/internal/server/services"
	"github.com/shopspring/decimal"
)

// Money goes over the wire as a JSON number.

type itemDTO struct {
	ID         int64   `json:"id"`
	Type       string  `json:"type"`
	Label      string  `json:"label"`
	Amount     float64 `json:"amount"`
	DayOfMonth int     `json:"dayOfMonth"`
	IsPaid     bool    `json:"isPaid"`
}

func toItem(it models.Item) itemDTO {
	return itemDTO{
		ID:         it.ID,
		Type:       string(it.Type),
		Label:      it.Label,
		Amount:     it.Amount.InexactFloat64(),
		DayOfMonth: it.DayOfMonth,
		IsPaid:     it.IsPaid,
	}
}

func toItems(items []models.Item) []itemDTO {
	out := make([]itemDTO, 0, len(items))
	for _, it := range items {
		out = append(out, toItem(it))
	}
	return out
}

type workspaceDTO struct {
	ID            int64   `json:"id"`
	Balance       float64 `json:"balance"`
	CycleStartDay *int    `json:"cycleStartDay"`
	CycleEndDay   *int    `json:"cycleEndDay"`
}

func toWorkspace(ws models.Workspace) workspaceDTO {
	return workspaceDTO{
		ID:            ws.ID,
		Balance:       ws.Balance.InexactFloat64(),
		CycleStartDay: ws.CycleStartDay,
		CycleEndDay:   ws.CycleEndDay,
	}
}

type balanceCardsDTO struct {
	CurrentBalance  float64 `json:"currentBalance"`
	ExpectedBalance float64 `json:"expectedBalance"`
	DeficitExcess   float64 `json:"deficitExcess"`
}

func toCards(c cycle.BalanceCards) balanceCardsDTO {
	return balanceCardsDTO{
		CurrentBalance:  c.CurrentBalance.InexactFloat64(),
		ExpectedBalance: c.ExpectedBalance.InexactFloat64(),
		DeficitExcess:   c.DeficitExcess.InexactFloat64(),
	}
}

type workspaceViewDTO struct {
	Workspace    workspaceDTO    `json:"workspace"`
	Items        []itemDTO       `json:"items"`
	BalanceCards balanceCardsDTO `json:"balanceCards"`
	CycleLabel   string          `json:"cycleLabel"`
	Permission   string          `json:"permission"`
}

func toWorkspaceView(v *services.WorkspaceView) workspaceViewDTO {
	return workspaceViewDTO{
		Workspace:    toWorkspace(v.Workspace),
		Items:        toItems(v.Items),
		BalanceCards: toCards(v.Cards),
		CycleLabel:   v.CycleLabel,
		Permission:   string(v.Permission),
	}
}

type cycleDTO struct {
	ID           int64     `json:"id"`
	CycleLabel   string    `json:"cycleLabel"`
	FinalBalance float64   `json:"finalBalance"`
	Items        []itemDTO `json:"items"`
	CreatedAt    time.Time `json:"createdAt"`
}

func toCycles(cs []models.CompletedCycle) []cycleDTO {
	out := make([]cycleDTO, 0, len(cs))
	for _, c := range cs {
		out = append(out, cycleDTO{
			ID:           c.ID,
			CycleLabel:   c.CycleLabel,
			FinalBalance: c.FinalBalance.InexactFloat64(),
			Items:        toItems(c.Items),
			CreatedAt:    c.CreatedAt.UTC(),
		})
	}
	return out
}

type memberDTO struct {
	UserID      int64  `json:"userId"`
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Permission  string `json:"permission"`
}

type sharedDTO struct {
	WorkspaceID      int64  `json:"workspaceId"`
	OwnerDisplayName string `json:"ownerDisplayName"`
	Permission       string `json:"permission"`
}

// Request bodies. Pointers distinguish absent fields from zero values.

type registerRequest struct {
	Username    string `json:"username"`
	DisplayName string `json:"displayName"`
	Password    string `json:"password"`
	Email       string `json:"email"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type forgotRequest struct {
	Username string `json:"username"`
}

type resetRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type emailRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewEmail        string `json:"newEmail"`
}

type passwordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type balanceRequest struct {
	Balance     *decimal.Decimal `json:"balance"`
	WorkspaceID *int64           `json:"workspaceId"`
}

type workspaceRef struct {
	WorkspaceID *int64 `json:"workspaceId"`
}

type createItemRequest struct {
	WorkspaceID int64            `json:"workspaceId"`
	Type        string           `json:"type"`
	Label       string           `json:"label"`
	Amount      *decimal.Decimal `json:"amount"`
	DayOfMonth  int              `json:"dayOfMonth"`
}

type updateItemRequest struct {
	Type       *string          `json:"type"`
	Label      *string          `json:"label"`
	Amount     *decimal.Decimal `json:"amount"`
	DayOfMonth *int             `json:"dayOfMonth"`
	IsPaid     *bool            `json:"isPaid"`
}

type addMemberRequest struct {
	UserID     int64  `json:"userId"`
	Permission string `json:"permission"`
}
