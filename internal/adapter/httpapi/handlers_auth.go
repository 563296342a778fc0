package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/navtrail/navtrail-backend/internal/domain"
)

type signupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, s.log, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	result, err := s.auth.Signup(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondMessage(w, http.StatusCreated, "Account created", result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, s.log, fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput))
		return
	}

	result, err := s.auth.Login(r.Context(), req.Email, req.Password, clientIP(r))
	if err != nil {
		respondError(w, s.log, err)
		return
	}

	respondMessage(w, http.StatusOK, "Logged in", result)
}
