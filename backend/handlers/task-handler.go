package handlers

import (
	"net/http"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/middleware"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/services"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskHandler struct {
	Service *services.TaskService
}

func NewTaskHandler(service *services.TaskService) *TaskHandler {
	return &TaskHandler{Service: service}
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.TaskFilter{
		Status:   models.TaskStatus(q.Get("status")),
		Priority: models.Priority(q.Get("prioridade")),
	}
	var err error
	if filter.ProjectID, err = queryID(q.Get("projeto")); err != nil {
		writeError(w, r, err)
		return
	}
	if filter.ResponsibleID, err = queryID(q.Get("responsavel")); err != nil {
		writeError(w, r, err)
		return
	}
	page := utils.ParsePagination(q.Get("page"), q.Get("limit"))

	views, total, err := h.Service.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WritePage(w, views, len(views), total, page)
}

// queryID parses an optional id filter.
func queryID(v string) (*primitive.ObjectID, error) {
	if v == "" {
		return nil, nil
	}
	id, err := models.ParseID(v)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	t := models.NewTask()
	if err := decodeJSON(w, r, t); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.Create(r.Context(), t, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, view)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.Update(r.Context(), id, func(t *models.Task) error {
		return decodeJSON(w, r, t)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *TaskHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.CommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.AddComment(r.Context(), id, req, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}

func (h *TaskHandler) ToggleSubtask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	subtaskID, err := pathID(r, "subtaskId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.ToggleSubtask(r.Context(), id, subtaskID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}
