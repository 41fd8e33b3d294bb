package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/fintracker/internal/common"
	"github.com/dmitrijs2005/fintracker/internal/server/models"
	"github.com/gorilla/mux"
)

const msgBadWorkspaceID = "Invalid workspace id"

func (s *Server) searchUser(w http.ResponseWriter, r *http.Request) {
	u, err := s.sharing.SearchUser(r.Context(), identityFrom(r).UserID, r.URL.Query().Get("username"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if u == nil {
		// found nothing: data is an explicit null
		writeJSON(w, http.StatusOK, struct {
			Success bool `json:"success"`
			Data    any  `json:"data"`
		}{true, nil})
		return
	}
	s.ok(w, u)
}

func (s *Server) listShared(w http.ResponseWriter, r *http.Request) {
	shared, err := s.sharing.ListShared(r.Context(), identityFrom(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]sharedDTO, 0, len(shared))
	for _, sw := range shared {
		out = append(out, sharedDTO{
			WorkspaceID:      sw.WorkspaceID,
			OwnerDisplayName: sw.OwnerDisplayName,
			Permission:       string(sw.Permission),
		})
	}
	s.ok(w, out)
}

func (s *Server) listMembers(w http.ResponseWriter, r *http.Request) {
	wsID, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		s.fail(w, r, common.Validation(msgBadWorkspaceID))
		return
	}
	members, err := s.sharing.Members(r.Context(), identityFrom(r).UserID, wsID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	out := make([]memberDTO, 0, len(members))
	for _, m := range members {
		out = append(out, memberDTO{
			UserID:      m.UserID,
			Username:    m.Username,
			DisplayName: m.DisplayName,
			Permission:  string(m.Permission),
		})
	}
	s.ok(w, out)
}

func (s *Server) addMember(w http.ResponseWriter, r *http.Request) {
	wsID, ok := parseID(mux.Vars(r)["id"])
	if !ok {
		s.fail(w, r, common.Validation(msgBadWorkspaceID))
		return
	}
	var req addMemberRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	p := models.Permission(req.Permission)
	if err := s.sharing.AddMember(r.Context(), identityFrom(r).UserID, wsID, req.UserID, p); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, struct {
		UserID      int64  `json:"userId"`
		WorkspaceID int64  `json:"workspaceId"`
		Permission  string `json:"permission"`
	}{req.UserID, wsID, string(p)})
}

func (s *Server) removeMember(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	wsID, ok1 := parseID(vars["id"])
	userID, ok2 := parseID(vars["userId"])
	if !ok1 || !ok2 {
		s.fail(w, r, common.Validation("Invalid workspace or user id"))
		return
	}
	if err := s.sharing.RemoveMember(r.Context(), identityFrom(r).UserID, wsID, userID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, nil)
}
