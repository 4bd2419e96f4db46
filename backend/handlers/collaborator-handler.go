package handlers

import (
	"net/http"
	"strconv"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/middleware"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/services"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CollaboratorHandler struct {
	Service *services.CollaboratorService
}

func NewCollaboratorHandler(service *services.CollaboratorService) *CollaboratorHandler {
	return &CollaboratorHandler{Service: service}
}

// pathID parses the named route variable as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return models.ParseID(mux.Vars(r)[name])
}

// emptyData is the body of a successful delete.
var emptyData = map[string]any{}

func (h *CollaboratorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.CollaboratorFilter{
		Role:   models.CollaboratorRole(q.Get("cargo")),
		Search: q.Get("search"),
	}
	if v := q.Get("ativo"); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeError(w, r, &models.ValidationError{Messages: []string{"ativo must be true or false"}})
			return
		}
		filter.Active = &active
	}
	page := utils.ParsePagination(q.Get("page"), q.Get("limit"))

	views, total, err := h.Service.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WritePage(w, views, len(views), total, page)
}

func (h *CollaboratorHandler) Available(w http.ResponseWriter, r *http.Request) {
	minHours := float64(services.DefaultMinimumHours)
	if v := r.URL.Query().Get("horasMinimas"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			writeError(w, r, &models.ValidationError{Messages: []string{"horasMinimas must be a number"}})
			return
		}
		minHours = n
	}

	views, err := h.Service.Available(r.Context(), minHours)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteList(w, views, len(views))
}

func (h *CollaboratorHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}

func (h *CollaboratorHandler) Create(w http.ResponseWriter, r *http.Request) {
	c := models.NewCollaborator()
	if err := decodeJSON(w, r, c); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.Create(r.Context(), c, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, view)
}

func (h *CollaboratorHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.Update(r.Context(), id, func(c *models.Collaborator) error {
		return decodeJSON(w, r, c)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}

func (h *CollaboratorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.Service.Delete(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, emptyData)
}
