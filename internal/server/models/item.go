package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type ItemType string

const (
	ItemIncome      ItemType = "INCOME"
	ItemCreditCard  ItemType = "CREDIT_CARD"
	ItemLoanPayment ItemType = "LOAN_PAYMENT"
	ItemRent        ItemType = "RENT"
	ItemOther       ItemType = "OTHER"
)

func (t ItemType) Valid() bool {
	switch t {
	case ItemIncome, ItemCreditCard, ItemLoanPayment, ItemRent, ItemOther:
		return true
	}
	return false
}

// IsIncome separates inflows from every kind of payment.
func (t ItemType) IsIncome() bool {
	return t == ItemIncome
}

// Item is a recurring monthly line in a workspace. The json tags define the
// shape stored in completed cycle snapshots.
type Item struct {
	ID          int64           `json:"id"`
	WorkspaceID int64           `json:"workspaceId"`
	Type        ItemType        `json:"type"`
	Label       string          `json:"label"`
	Amount      decimal.Decimal `json:"amount"`
	DayOfMonth  int             `json:"dayOfMonth"`
	IsPaid      bool            `json:"isPaid"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// BalanceDelta is the change to the workspace balance when the item's paid
// flag moves to paid. Marking paid credits income and debits payments;
// marking unpaid reverses it.
func (i *Item) BalanceDelta(paid bool) decimal.Decimal {
	d := i.Amount
	if !i.Type.IsIncome() {
		d = d.Neg()
	}
	if !paid {
		d = d.Neg()
	}
	return d
}
