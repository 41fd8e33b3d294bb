package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/dmitrijs2005/fintracker/internal/server/services"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
)

const msgBadItemID = "Invalid item id"

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	amount := decimal.Zero
	if req.Amount != nil {
		amount = *req.Amount
	}

	it, err := s.items.Create(r.Context(), identityFrom(r).UserID, services.CreateItemInput{
		WorkspaceID: req.WorkspaceID,
		Type:        models.ItemType(req.Type),
		Label:       req.Label,
		Amount:      amount,
		DayOfMonth:  req.DayOfMonth,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, toItem(*it))
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		s.fail(w, r, common.Validation(msgBadItemID))
		return
	}
	var req updateItemRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	patch := services.ItemPatch{
		Label:      req.Label,
		Amount:     req.Amount,
		DayOfMonth: req.DayOfMonth,
		IsPaid:     req.IsPaid,
	}
	if req.Type != nil {
		t := models.ItemType(*req.Type)
		patch.Type = &t
	}

	it, err := s.items.Update(r.Context(), identityFrom(r).UserID, id, patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, toItem(*it))
}

func (s *Server) togglePaid(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		s.fail(w, r, common.Validation(msgBadItemID))
		return
	}
	res, err := s.items.TogglePaid(r.Context(), identityFrom(r).UserID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, toItem(res.Item))
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		s.fail(w, r, common.Validation(msgBadItemID))
		return
	}
	if err := s.items.Delete(r.Context(), identityFrom(r).UserID, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, nil)
}
