package services

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/dbx"
	"github.com/dmitrijs2005/fintracker/internal/server/cycle"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/shopspring/decimal"
)

const (
	msgItemNotFound   = "Item not found"
	msgBadItemType    = "Invalid item type"
	msgLabelRequired  = "Label is required"
	msgLabelEmpty     = "Label cannot be empty"
	msgAmountPositive = "Amount must be greater than 0"
	msgAmountTooLarge = "Amount is too large"
	msgBadDay         = "dayOfMonth must be between 1 and 31"
	maxLabel          = 100
)

type CreateItemInput struct {
	WorkspaceID int64
	Type        models.ItemType
	Label       string
	Amount      decimal.Decimal
	DayOfMonth  int
}

// ItemPatch carries only the fields being changed.
type ItemPatch struct {
	Type       *models.ItemType
	Label      *string
	Amount     *decimal.Decimal
	DayOfMonth *int
	IsPaid     *bool
}

// ToggleResult is the item after the toggle and the workspace balance it
// produced.
type ToggleResult struct {
	Item    models.Item
	Balance decimal.Decimal
}

type ItemService struct {
	Deps
}

func NewItemService(d Deps) *ItemService {
	return &ItemService{Deps: d}
}

func validateLabel(label, emptyMsg string) (string, error) {
	label = strings.TrimSpace(label)
	if label == "" {
		return "", common.Validation(emptyMsg)
	}
	if len([]rune(label)) > maxLabel {
		return "", common.Validation("Label must be at most 100 characters")
	}
	return label, nil
}

func validateAmount(a decimal.Decimal) (decimal.Decimal, error) {
	if !a.IsPositive() {
		return decimal.Zero, common.Validation(msgAmountPositive)
	}
	if a.GreaterThanOrEqual(decimal.NewFromFloat(maxBalanceMagnitude)) {
		return decimal.Zero, common.Validation(msgAmountTooLarge)
	}
	a = a.Round(2)
	if !a.IsPositive() {
		return decimal.Zero, common.Validation(msgAmountPositive)
	}
	return a, nil
}

func validDay(d int) bool {
	return d >= 1 && d <= cycle.MaxDay
}

// editable fails unless the caller may change the workspace's items.
func (s *ItemService) editable(ctx context.Context, db dbx.DBTX, userID, workspaceID int64) error {
	_, perm, err := s.resolveWorkspace(ctx, db, userID, &workspaceID, msgInsufficientPermissions)
	if err != nil {
		return err
	}
	if !perm.CanEdit() {
		return common.Forbidden(msgInsufficientPermissions)
	}
	return nil
}

// lockItem loads the item for update, mapping a missing row to NotFound.
func (s *ItemService) lockItem(ctx context.Context, tx dbx.DBTX, itemID int64) (*models.Item, error) {
	it, err := s.Repos.Items(tx).GetForUpdate(ctx, itemID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NotFound(msgItemNotFound)
		}
		return nil, err
	}
	return it, nil
}

func (s *ItemService) Create(ctx context.Context, userID int64, in CreateItemInput) (*models.Item, error) {
	if in.WorkspaceID <= 0 {
		return nil, common.Validation("workspaceId is required")
	}
	if !in.Type.Valid() {
		return nil, common.Validation(msgBadItemType)
	}
	label, err := validateLabel(in.Label, msgLabelRequired)
	if err != nil {
		return nil, err
	}
	amount, err := validateAmount(in.Amount)
	if err != nil {
		return nil, err
	}
	if !validDay(in.DayOfMonth) {
		return nil, common.Validation(msgBadDay)
	}

	var item *models.Item
	err = s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.editable(ctx, tx, userID, in.WorkspaceID); err != nil {
			return err
		}
		created, err := s.Repos.Items(tx).Create(ctx, &models.Item{
			WorkspaceID: in.WorkspaceID,
			Type:        in.Type,
			Label:       label,
			Amount:      amount,
			DayOfMonth:  in.DayOfMonth,
		})
		if err != nil {
			return err
		}
		item = created
		_, err = s.syncCycleDays(ctx, tx, in.WorkspaceID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// Update applies a partial change. A change of the paid flag moves the
// balance in the same transaction; a change of due day recomputes the
// cycle days.
func (s *ItemService) Update(ctx context.Context, userID, itemID int64, p ItemPatch) (*models.Item, error) {
	if p.Type != nil && !p.Type.Valid() {
		return nil, common.Validation(msgBadItemType)
	}
	var label string
	if p.Label != nil {
		l, err := validateLabel(*p.Label, msgLabelEmpty)
		if err != nil {
			return nil, err
		}
		label = l
	}
	var amount decimal.Decimal
	if p.Amount != nil {
		a, err := validateAmount(*p.Amount)
		if err != nil {
			return nil, err
		}
		amount = a
	}
	if p.DayOfMonth != nil && !validDay(*p.DayOfMonth) {
		return nil, common.Validation(msgBadDay)
	}

	var out *models.Item
	err := s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		it, err := s.lockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if err := s.editable(ctx, tx, userID, it.WorkspaceID); err != nil {
			return err
		}

		next := *it
		if p.Type != nil {
			next.Type = *p.Type
		}
		if p.Label != nil {
			next.Label = label
		}
		if p.Amount != nil {
			next.Amount = amount
		}
		if p.DayOfMonth != nil {
			next.DayOfMonth = *p.DayOfMonth
		}
		if p.IsPaid != nil {
			next.IsPaid = *p.IsPaid
		}

		updated, err := s.Repos.Items(tx).Update(ctx, &next)
		if err != nil {
			return err
		}
		if next.IsPaid != it.IsPaid {
			if _, err := s.Repos.Workspaces(tx).AddToBalance(ctx, it.WorkspaceID, next.BalanceDelta(next.IsPaid)); err != nil {
				return err
			}
		}
		if next.DayOfMonth != it.DayOfMonth {
			if _, err := s.syncCycleDays(ctx, tx, it.WorkspaceID); err != nil {
				return err
			}
		}
		out = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// TogglePaid flips the paid flag and applies the matching balance change
// atomically: paid income adds its amount, a paid payment subtracts it, and
// un-marking reverses that.
func (s *ItemService) TogglePaid(ctx context.Context, userID, itemID int64) (*ToggleResult, error) {
	var res ToggleResult
	err := s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		it, err := s.lockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if err := s.editable(ctx, tx, userID, it.WorkspaceID); err != nil {
			return err
		}

		it.IsPaid = !it.IsPaid
		updated, err := s.Repos.Items(tx).Update(ctx, it)
		if err != nil {
			return err
		}
		balance, err := s.Repos.Workspaces(tx).AddToBalance(ctx, it.WorkspaceID, it.BalanceDelta(it.IsPaid))
		if err != nil {
			return err
		}
		res = ToggleResult{Item: *updated, Balance: balance}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger().Debug(ctx, "item toggled", "item_id", itemID, "paid", res.Item.IsPaid)
	return &res, nil
}

func (s *ItemService) Delete(ctx context.Context, userID, itemID int64) error {
	return s.Tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		it, err := s.lockItem(ctx, tx, itemID)
		if err != nil {
			return err
		}
		if err := s.editable(ctx, tx, userID, it.WorkspaceID); err != nil {
			return err
		}
		if err := s.Repos.Items(tx).Delete(ctx, itemID); err != nil {
			return err
		}
		_, err = s.syncCycleDays(ctx, tx, it.WorkspaceID)
		return err
	})
}
