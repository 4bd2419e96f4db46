package handlers

import (
	"net/http"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/middleware"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/services"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
)

type AuthHandler struct {
	Service *services.AuthService
}

func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{Service: service}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.Service.Register(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, result)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	result, err := h.Service.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, result)
}

// Me returns the user behind the bearer token.
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	id := middleware.UserID(r.Context())
	if id == nil {
		writeError(w, r, models.ErrUnauthorized)
		return
	}
	user, err := h.Service.Me(r.Context(), *id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, user)
}
