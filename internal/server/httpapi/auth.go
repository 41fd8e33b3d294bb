package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/fintracker/internal/server/services"
)

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.auth.Register(r.Context(), services.RegisterInput{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Password:    req.Password,
		Email:       req.Email,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSession(w, sess.Token)
	s.ok(w, sess.User)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}

	sess, err := s.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSession(w, sess.Token)
	s.ok(w, sess.User)
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if err := s.auth.Logout(r.Context(), identityFrom(r).UserID); err != nil {
		s.fail(w, r, err)
		return
	}
	s.clearSession(w)
	s.ok(w, nil)
}

func (s *Server) me(w http.ResponseWriter, r *http.Request) {
	u, err := s.auth.Me(r.Context(), identityFrom(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, u)
}

func (s *Server) forgotPassword(w http.ResponseWriter, r *http.Request) {
	var req forgotRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.auth.ForgotPassword(r.Context(), req.Username); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, nil)
}

func (s *Server) resetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	if err := s.auth.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, nil)
}

type maskedEmailDTO struct {
	MaskedEmail *string `json:"maskedEmail"`
}

func masked(m string) maskedEmailDTO {
	if m == "" {
		return maskedEmailDTO{}
	}
	return maskedEmailDTO{MaskedEmail: &m}
}

func (s *Server) getEmail(w http.ResponseWriter, r *http.Request) {
	m, err := s.auth.MaskedEmail(r.Context(), identityFrom(r).UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, masked(m))
}

func (s *Server) updateEmail(w http.ResponseWriter, r *http.Request) {
	var req emailRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	m, err := s.auth.UpdateEmail(r.Context(), identityFrom(r).UserID, req.CurrentPassword, req.NewEmail)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.ok(w, masked(m))
}

// changePassword revokes every session and hands the caller a fresh one.
func (s *Server) changePassword(w http.ResponseWriter, r *http.Request) {
	var req passwordRequest
	if err := decode(r, &req); err != nil {
		s.fail(w, r, err)
		return
	}
	sess, err := s.auth.ChangePassword(r.Context(), identityFrom(r).UserID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSession(w, sess.Token)
	s.ok(w, sess.User)
}
