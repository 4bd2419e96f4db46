package services

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TaskService struct {
	tasks         repositories.TaskRepository
	projects      repositories.ProjectRepository
	collaborators repositories.CollaboratorRepository
	users         repositories.UserRepository
	now           func() time.Time
}

func NewTaskService(store *repositories.Store) *TaskService {
	return &TaskService{
		tasks:         store.Tasks,
		projects:      store.Projects,
		collaborators: store.Collaborators,
		users:         store.Users,
		now:           time.Now,
	}
}

type idSet struct {
	seen map[primitive.ObjectID]bool
	ids  []primitive.ObjectID
}

func (s *idSet) add(id *primitive.ObjectID) {
	if id == nil || id.IsZero() {
		return
	}
	if s.seen == nil {
		s.seen = map[primitive.ObjectID]bool{}
	}
	if !s.seen[*id] {
		s.seen[*id] = true
		s.ids = append(s.ids, *id)
	}
}

// expand resolves the project, responsible collaborator and comment
// authors of each task. References that no longer resolve keep only the id.
func (s *TaskService) expand(ctx context.Context, tasks []models.Task) ([]models.TaskView, error) {
	var projectIDs, collaboratorIDs, userIDs idSet
	for i := range tasks {
		projectIDs.add(&tasks[i].Projeto)
		collaboratorIDs.add(tasks[i].Responsavel)
		for _, c := range tasks[i].Comentarios {
			userIDs.add(c.Autor)
		}
	}

	projects, err := s.projects.FindByIDs(ctx, projectIDs.ids)
	if err != nil {
		return nil, fmt.Errorf("load task projects: %w", err)
	}
	collaborators, err := s.collaborators.FindByIDs(ctx, collaboratorIDs.ids)
	if err != nil {
		return nil, fmt.Errorf("load task responsibles: %w", err)
	}
	users, err := s.users.FindByIDs(ctx, userIDs.ids)
	if err != nil {
		return nil, fmt.Errorf("load comment authors: %w", err)
	}

	projectByID := make(map[primitive.ObjectID]models.ProjectSummary, len(projects))
	for i := range projects {
		projectByID[projects[i].ID] = projects[i].Summary()
	}
	collaboratorByID := make(map[primitive.ObjectID]models.CollaboratorSummary, len(collaborators))
	for i := range collaborators {
		collaboratorByID[collaborators[i].ID] = collaborators[i].Summary()
	}
	userByID := make(map[primitive.ObjectID]models.UserSummary, len(users))
	for i := range users {
		userByID[users[i].ID] = users[i].Summary()
	}

	views := make([]models.TaskView, len(tasks))
	for i := range tasks {
		t := &tasks[i]

		project, ok := projectByID[t.Projeto]
		if !ok {
			project = models.ProjectSummary{ID: t.Projeto}
		}

		var responsible *models.CollaboratorSummary
		if t.Responsavel != nil {
			summary, ok := collaboratorByID[*t.Responsavel]
			if !ok {
				summary = models.CollaboratorSummary{ID: *t.Responsavel}
			}
			responsible = &summary
		}

		comments := make([]models.CommentView, len(t.Comentarios))
		for j, c := range t.Comentarios {
			var author *models.UserSummary
			if c.Autor != nil {
				summary, ok := userByID[*c.Autor]
				if !ok {
					summary = models.UserSummary{ID: *c.Autor}
				}
				author = &summary
			}
			comments[j] = models.CommentView{ID: c.ID, Autor: author, Texto: c.Texto, CreatedAt: c.CreatedAt}
		}

		views[i] = models.TaskView{
			Task:                t,
			Projeto:             project,
			Responsavel:         responsible,
			Comentarios:         comments,
			ProgressoSubtarefas: t.SubtaskProgress(),
		}
	}
	return views, nil
}

func (s *TaskService) view(ctx context.Context, t *models.Task) (models.TaskView, error) {
	views, err := s.expand(ctx, []models.Task{*t})
	if err != nil {
		return models.TaskView{}, err
	}
	return views[0], nil
}

func (s *TaskService) List(ctx context.Context, filter models.TaskFilter, page utils.Pagination) ([]models.TaskView, int64, error) {
	tasks, total, err := s.tasks.Find(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.expand(ctx, tasks)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *TaskService) Get(ctx context.Context, id primitive.ObjectID) (models.TaskView, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return models.TaskView{}, err
	}
	return s.view(ctx, t)
}

// checkReferences verifies the project and responsible collaborator exist.
func (s *TaskService) checkReferences(ctx context.Context, t *models.Task) error {
	if _, err := s.projects.FindByID(ctx, t.Projeto); err != nil {
		return err
	}
	if t.Responsavel != nil {
		if _, err := s.collaborators.FindByID(ctx, *t.Responsavel); err != nil {
			return err
		}
	}
	return nil
}

func (s *TaskService) Create(ctx context.Context, t *models.Task, createdBy *primitive.ObjectID) (models.TaskView, error) {
	now := s.now()
	t.ID = primitive.NilObjectID
	t.CriadoPor = createdBy
	t.CreatedAt = now
	t.UpdatedAt = now
	t.Normalize(now)
	t.StampCompletion("", now)
	if err := models.Validate(t); err != nil {
		return models.TaskView{}, err
	}
	if err := s.checkReferences(ctx, t); err != nil {
		return models.TaskView{}, err
	}

	if err := s.tasks.Insert(ctx, t); err != nil {
		return models.TaskView{}, err
	}
	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in project %s", t.ID.Hex(), t.Projeto.Hex())
	return s.view(ctx, t)
}

// Update applies apply to the stored task and saves the result. Comments
// are append-only and Save leaves them as stored; the completion date
// follows the status.
func (s *TaskService) Update(ctx context.Context, id primitive.ObjectID, apply func(*models.Task) error) (models.TaskView, error) {
	t, err := s.tasks.FindByID(ctx, id)
	if err != nil {
		return models.TaskView{}, err
	}
	previous := *t
	// Decoding a body into t reuses slice arrays and pointers.
	previous.Comentarios = append([]models.Comment(nil), t.Comentarios...)
	previous.Responsavel = copyID(t.Responsavel)
	previous.CriadoPor = copyID(t.CriadoPor)
	if err := apply(t); err != nil {
		return models.TaskView{}, err
	}

	now := s.now()
	t.ID, t.CreatedAt, t.CriadoPor, t.Comentarios = id, previous.CreatedAt, previous.CriadoPor, previous.Comentarios
	t.UpdatedAt = now
	t.Normalize(now)
	t.StampCompletion(previous.Status, now)
	if err := models.Validate(t); err != nil {
		return models.TaskView{}, err
	}
	if t.Projeto != previous.Projeto || !sameRef(t.Responsavel, previous.Responsavel) {
		if err := s.checkReferences(ctx, t); err != nil {
			return models.TaskView{}, err
		}
	}

	if err := s.tasks.Save(ctx, t); err != nil {
		return models.TaskView{}, err
	}
	if t.Status != previous.Status {
		logging.Logger.Infof("Event ID: TASK_STATUS_CHANGED, Description: Task %s moved from %s to %s", id.Hex(), previous.Status, t.Status)
	}
	return s.Get(ctx, id)
}

func sameRef(a, b *primitive.ObjectID) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func (s *TaskService) Delete(ctx context.Context, id primitive.ObjectID) error {
	return s.tasks.Delete(ctx, id)
}

// AddComment appends a comment to the task. author is nil for anonymous requests.
func (s *TaskService) AddComment(ctx context.Context, taskID primitive.ObjectID, req models.CommentRequest, author *primitive.ObjectID) (models.TaskView, error) {
	req.Texto = strings.TrimSpace(req.Texto)
	if err := models.Validate(&req); err != nil {
		return models.TaskView{}, err
	}

	now := s.now()
	comment := models.Comment{
		ID:        primitive.NewObjectID(),
		Autor:     author,
		Texto:     req.Texto,
		CreatedAt: now,
	}
	if err := s.tasks.AppendComment(ctx, taskID, comment, now); err != nil {
		return models.TaskView{}, err
	}
	return s.Get(ctx, taskID)
}

// ToggleSubtask flips the completion flag of one subtask.
func (s *TaskService) ToggleSubtask(ctx context.Context, taskID, subtaskID primitive.ObjectID) (models.TaskView, error) {
	t, err := s.tasks.FindByID(ctx, taskID)
	if err != nil {
		return models.TaskView{}, err
	}
	i := t.Subtask(subtaskID)
	if i < 0 {
		return models.TaskView{}, models.NotFound("Subtask")
	}

	if err := s.tasks.SetSubtaskDone(ctx, taskID, subtaskID, !t.Subtarefas[i].Concluida, s.now()); err != nil {
		return models.TaskView{}, err
	}
	return s.Get(ctx, taskID)
}

// ListByProject returns the project's tasks ordered by priority, most
// critical first, then newest first.
func (s *TaskService) ListByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.TaskView, error) {
	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.FindByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	SortByPriority(tasks)
	return s.expand(ctx, tasks)
}

// SortByPriority orders tasks by priority rank descending, then by creation
// time descending.
func SortByPriority(tasks []models.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		ri, rj := tasks[i].Prioridade.Rank(), tasks[j].Prioridade.Rank()
		if ri != rj {
			return ri > rj
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
}
