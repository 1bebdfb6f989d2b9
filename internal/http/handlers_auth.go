package http

import (
	"errors"
	"net/http"

	"findash/internal/auth"
	"findash/internal/log"
)

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, s.validate, &req); err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.gate.Login(r.Context(), req.Token)
	switch {
	case errors.Is(err, auth.ErrInvalidCredential):
		writeError(w, r, http.StatusUnauthorized, "Invalid token")
		return
	case err != nil:
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to issue session",
			log.FieldOperation, log.OpLogin, log.Err(err))
		writeError(w, r, http.StatusInternalServerError, "Could not create session")
		return
	}

	s.gate.SetSessionCookie(w, session)
	ok := true
	writeJSON(w, r, http.StatusOK, AuthResponse{
		Success:       &ok,
		Authenticated: true,
		Mode:          auth.ModeTrusted,
		Message:       "Login successful",
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.gate.Logout(r.Context(), r)
	s.gate.ClearSessionCookie(w)
	ok := true
	writeJSON(w, r, http.StatusOK, AuthResponse{
		Success:       &ok,
		Authenticated: false,
		Mode:          auth.ModeGuest,
		Message:       "Logged out successfully",
	})
}

func (s *Server) handleAuthStatus(w http.ResponseWriter, r *http.Request) {
	d := auth.FromContext(r.Context())
	msg := "Viewing normalized data for privacy"
	if d.Trusted {
		msg = "Real data"
	}
	writeJSON(w, r, http.StatusOK, AuthResponse{
		Authenticated: d.Trusted,
		Mode:          d.Mode(),
		Message:       msg,
	})
}
