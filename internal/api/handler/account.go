package handler

import (
	"net/http"

	"github.com/mcoot/petbattle/internal/api/middleware"
	"github.com/mcoot/petbattle/internal/api/request"
	"github.com/mcoot/petbattle/internal/api/response"
	"github.com/mcoot/petbattle/internal/model"
	"github.com/mcoot/petbattle/internal/services/auth"
)

// AccountHandler handles address claims and sessions
type AccountHandler struct {
	authService *auth.Service
}

// NewAccountHandler creates a new account handler
func NewAccountHandler(authService *auth.Service) *AccountHandler {
	return &AccountHandler{
		authService: authService,
	}
}

func decodeCredentials(w http.ResponseWriter, r *http.Request) (request.CredentialsRequest, error) {
	var req request.CredentialsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return req, err
	}
	if err := requireField("address", req.Address); err != nil {
		return req, err
	}
	return req, requireField("secret", req.Secret)
}

// Claim handles POST /api/v1/accounts
func (h *AccountHandler) Claim(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Claim(r.Context(), model.ActorID(req.Address), req.Secret)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.Created(w, response.SessionFromAuth(session))
}

// Login handles POST /api/v1/sessions
func (h *AccountHandler) Login(w http.ResponseWriter, r *http.Request) {
	req, err := decodeCredentials(w, r)
	if err != nil {
		WriteError(w, err)
		return
	}

	session, err := h.authService.Login(r.Context(), model.ActorID(req.Address), req.Secret)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionFromAuth(session))
}

// Me handles GET /api/v1/sessions/me
func (h *AccountHandler) Me(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, response.SessionFromAuth(middleware.GetSession(r.Context())))
}

// Logout handles DELETE /api/v1/sessions/me
func (h *AccountHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.authService.InvalidateSession(middleware.GetSession(r.Context()).Token)
	response.NoContent(w)
}
