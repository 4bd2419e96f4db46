package handlers

import (
	"net/http"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/middleware"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/services"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
)

type ProjectHandler struct {
	Service *services.ProjectService
	Tasks   *services.TaskService
}

func NewProjectHandler(service *services.ProjectService, tasks *services.TaskService) *ProjectHandler {
	return &ProjectHandler{Service: service, Tasks: tasks}
}

func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.ProjectFilter{
		Status:   models.ProjectStatus(q.Get("status")),
		Priority: models.Priority(q.Get("prioridade")),
		Search:   q.Get("search"),
	}
	page := utils.ParsePagination(q.Get("page"), q.Get("limit"))

	views, total, err := h.Service.List(r.Context(), filter, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WritePage(w, views, len(views), total, page)
}

func (h *ProjectHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.Service.Stats(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, stats)
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
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

func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	p := models.NewProject()
	if err := decodeJSON(w, r, p); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.Create(r.Context(), p, middleware.UserID(r.Context()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusCreated, view)
}

func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.Update(r.Context(), id, func(p *models.Project) error {
		return decodeJSON(w, r, p)
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}

func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *ProjectHandler) AddCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req models.AssignmentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.AddCollaborator(r.Context(), id, req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}

func (h *ProjectHandler) RemoveCollaborator(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	collaboratorID, err := pathID(r, "collaboratorId")
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.Service.RemoveCollaborator(r.Context(), id, collaboratorID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteData(w, http.StatusOK, view)
}

// ListTasks lists the project's tasks, most critical first.
func (h *ProjectHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	views, err := h.Tasks.ListByProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	utils.WriteList(w, views, len(views))
}
