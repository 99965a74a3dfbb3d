// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Keyfold Contributors

package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/keyfold/keyfold/internal/auth"
	"github.com/keyfold/keyfold/internal/observability"
	"github.com/keyfold/keyfold/pkg/errutil"
)

// errorResponse is the body for every failure status.
type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req auth.RegistrationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.recordRegistration(observability.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	profile, err := s.service.Register(r.Context(), req)
	if err != nil {
		s.registerError(w, err)
		return
	}

	s.recordRegistration(observability.OutcomeOK)
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) registerError(w http.ResponseWriter, err error) {
	switch errutil.Code(err) {
	case "AUTH_INVALID_INPUT":
		s.recordRegistration(observability.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
	case "AUTH_USERNAME_TAKEN":
		s.recordRegistration(observability.OutcomeConflict)
		writeJSON(w, http.StatusConflict, errorResponse{Error: err.Error()})
	default:
		s.recordRegistration(observability.OutcomeError)
		errutil.LogError(s.logger, "registration failed", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "registration failed"})
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req auth.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.recordLogin(observability.OutcomeInvalid)
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	if err := s.service.Login(r.Context(), req); err != nil {
		switch errutil.Code(err) {
		case "AUTH_INVALID_INPUT":
			s.recordLogin(observability.OutcomeInvalid)
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		case "AUTH_INVALID_CREDENTIALS":
			s.recordLogin(observability.OutcomeUnauthorized)
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: err.Error()})
		default:
			s.recordLogin(observability.OutcomeError)
			errutil.LogError(s.logger, "login failed", err)
			writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "login failed"})
		}
		return
	}

	s.recordLogin(observability.OutcomeOK)
	w.WriteHeader(http.StatusOK)
}

func (s *Server) recordRegistration(outcome string) {
	if s.metrics != nil {
		s.metrics.RegistrationsTotal.WithLabelValues(outcome).Inc()
	}
}

func (s *Server) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.LoginsTotal.WithLabelValues(outcome).Inc()
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write error is acceptable, client may disconnect
	_ = json.NewEncoder(w).Encode(body)
}
