package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"quizwire/internal/auth"
	"quizwire/internal/config"
	"quizwire/internal/db"
	"quizwire/internal/identity"
	"quizwire/internal/questions"
	"quizwire/internal/rooms"
)

type Server struct {
	Registry *rooms.Registry
	Auth     *auth.Service
	Users    auth.UserStore // nil if no database configured
	DB       *db.DB         // nil if no database configured
	Cfg      config.Config
	Logger   *slog.Logger
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Users == nil {
		writeError(w, http.StatusServiceUnavailable, "accounts require a database")
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := s.Auth.Register(r.Context(), req.Username, req.Email, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusCreated, acct)
	case errors.Is(err, auth.ErrUsernameTaken), errors.Is(err, auth.ErrEmailTaken):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, auth.ErrBadUsername), errors.Is(err, auth.ErrBadEmail), errors.Is(err, auth.ErrBadPassword):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.Logger.Error("register failed", "err", err)
		writeError(w, http.StatusInternalServerError, "registration failed")
	}
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	if s.Users == nil {
		writeError(w, http.StatusServiceUnavailable, "accounts require a database")
		return
	}

	var req struct {
		Username string `json:"username"` // username or email
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	acct, err := s.Auth.Login(r.Context(), req.Username, req.Password)
	switch {
	case err == nil:
		writeJSON(w, http.StatusOK, acct)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	default:
		s.Logger.Error("login failed", "err", err)
		writeError(w, http.StatusInternalServerError, "login failed")
	}
}

func (s *Server) handleGuest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, err := s.Auth.GuestToken(strings.TrimSpace(req.Name))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"name":  strings.TrimSpace(req.Name),
		"token": token,
	})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	if s.DB != nil {
		cats, err := s.DB.Categories(r.Context())
		if err != nil {
			s.Logger.Error("loading categories", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to load categories")
			return
		}
		writeJSON(w, http.StatusOK, cats)
		return
	}

	var cats []db.Category
	for _, name := range questions.DefaultCatalog().Categories() {
		cats = append(cats, db.Category{Name: name})
	}
	writeJSON(w, http.StatusOK, cats)
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusServiceUnavailable, "stats require a database")
		return
	}

	who, err := s.bearerIdentity(r)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "invalid or missing token")
		return
	}
	userID := identity.UserID(who)
	if userID == 0 {
		writeError(w, http.StatusForbidden, "guests have no stats")
		return
	}

	stats, err := s.DB.GetUserStats(r.Context(), userID)
	if err != nil {
		s.Logger.Error("loading stats", "err", err, "user", userID)
		writeError(w, http.StatusInternalServerError, "failed to load stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	if s.DB != nil {
		if err := s.DB.Ping(); err != nil {
			status = "db_error"
			w.WriteHeader(http.StatusServiceUnavailable)
			fmt.Fprintf(w, `{"status":"%s","error":"%s"}`, status, err.Error())
			return
		}
	}
	fmt.Fprintf(w, `{"status":"%s"}`, status)
}

func (s *Server) bearerIdentity(r *http.Request) (identity.Identity, error) {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, auth.ErrInvalidToken
	}
	return s.Auth.IdentityFromToken(token)
}
