package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/gorilla/mux"
)

func (s *Server) getWorkspace(w http.ResponseWriter, r *http.Request) {
	var wsID *int64
	if raw := r.URL.Query().Get("workspaceId"); raw != "" {
		id, ok := parseID(raw)
		if !ok {
			s.fail(w, r, common.Validation("Invalid workspaceId"))
			return
		}
		wsID = &id
	}

	v, err := s.ws.Get(r.Context(), identityFrom(r).UserID, wsID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, toWorkspaceView(v))
}

func (s *Server) setBalance(w http.ResponseWriter, r *http.Request) {
	var req balanceRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if req.Balance == nil {
		s.fail(w, r, common.Validation("Balance must be a number"))
		return
	}

	ws, err := s.ws.SetBalance(r.Context(), identityFrom(r).UserID, req.WorkspaceID, *req.Balance)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, toWorkspace(*ws))
}

func (s *Server) listCycles(w http.ResponseWriter, r *http.Request) {
	cs, err := s.ws.ListCycles(r.Context(), identityFrom(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, toCycles(cs))
}

func (s *Server) deleteCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		s.fail(w, r, common.Validation("Invalid cycle ID"))
		return
	}
	if err := s.ws.DeleteCycle(r.Context(), identityFrom(r).UserID, id); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) exportCycle(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		s.fail(w, r, common.Validation("Invalid cycle ID"))
		return
	}
	url, err := s.ws.ExportURL(r.Context(), identityFrom(r).UserID, id)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, map[string]string{"url": url})
}

func (s *Server) resetWorkspace(w http.ResponseWriter, r *http.Request) {
	var req workspaceRef
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if _, err := s.ws.Reset(r.Context(), identityFrom(r).UserID, req.WorkspaceID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, nil)
}
