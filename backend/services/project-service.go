package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProjectService struct {
	projects      repositories.ProjectRepository
	collaborators repositories.CollaboratorRepository
	now           func() time.Time
}

func NewProjectService(store *repositories.Store) *ProjectService {
	return &ProjectService{
		projects:      store.Projects,
		collaborators: store.Collaborators,
		now:           time.Now,
	}
}

func assignedCollaborators(projects []models.Project) []primitive.ObjectID {
	seen := map[primitive.ObjectID]bool{}
	ids := []primitive.ObjectID{}
	for _, p := range projects {
		for _, a := range p.Colaboradores {
			if !seen[a.Colaborador] {
				seen[a.Colaborador] = true
				ids = append(ids, a.Colaborador)
			}
		}
	}
	return ids
}

// expand builds project views. With capacity set, collaborator summaries
// also carry weekly and allocated hours.
func (s *ProjectService) expand(ctx context.Context, projects []models.Project, capacity bool) ([]models.ProjectView, error) {
	ids := assignedCollaborators(projects)
	collaborators, err := s.collaborators.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load assigned collaborators: %w", err)
	}
	byID := make(map[primitive.ObjectID]*models.Collaborator, len(collaborators))
	for i := range collaborators {
		byID[collaborators[i].ID] = &collaborators[i]
	}

	var hours map[primitive.ObjectID]float64
	if capacity {
		if hours, err = s.projects.AllocatedHours(ctx, ids); err != nil {
			return nil, fmt.Errorf("allocated hours: %w", err)
		}
	}

	now := s.now()
	views := make([]models.ProjectView, len(projects))
	for i := range projects {
		p := &projects[i]
		assignments := make([]models.AssignmentView, len(p.Colaboradores))
		for j, a := range p.Colaboradores {
			summary := models.CollaboratorSummary{ID: a.Colaborador}
			if c, ok := byID[a.Colaborador]; ok {
				if capacity {
					summary = c.CapacitySummary(hours[c.ID])
				} else {
					summary = c.Summary()
				}
			}
			assignments[j] = models.AssignmentView{
				Colaborador:   summary,
				Funcao:        a.Funcao,
				HorasAlocadas: a.HorasAlocadas,
				DataEntrada:   a.DataEntrada,
				DataSaida:     a.DataSaida,
			}
		}
		views[i] = models.ProjectView{
			Project:            p,
			Colaboradores:      assignments,
			Progresso:          p.Progress(),
			TotalColaboradores: p.ActiveCollaborators(),
			DiasRestantes:      p.DaysRemaining(now),
		}
	}
	return views, nil
}

func (s *ProjectService) detail(ctx context.Context, p *models.Project) (models.ProjectView, error) {
	views, err := s.expand(ctx, []models.Project{*p}, true)
	if err != nil {
		return models.ProjectView{}, err
	}
	return views[0], nil
}

func (s *ProjectService) List(ctx context.Context, filter models.ProjectFilter, page utils.Pagination) ([]models.ProjectView, int64, error) {
	projects, total, err := s.projects.Find(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.expand(ctx, projects, false)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *ProjectService) Get(ctx context.Context, id primitive.ObjectID) (models.ProjectView, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return models.ProjectView{}, err
	}
	return s.detail(ctx, p)
}

// prepareAssignments fills defaults on incoming assignments and rejects a
// collaborator that appears twice with an open entry.
func prepareAssignments(incoming []models.Assignment, now time.Time) ([]models.Assignment, error) {
	p := models.Project{Colaboradores: []models.Assignment{}}
	for _, a := range incoming {
		if strings.TrimSpace(a.Funcao) == "" {
			a.Funcao = models.DefaultAssignmentRole
		}
		if a.DataEntrada.IsZero() {
			a.DataEntrada = now
		}
		if a.DataSaida != nil {
			p.Colaboradores = append(p.Colaboradores, a)
			continue
		}
		if err := p.AddCollaborator(a); err != nil {
			return nil, err
		}
	}
	return p.Colaboradores, nil
}

func (s *ProjectService) Create(ctx context.Context, p *models.Project, createdBy *primitive.ObjectID) (models.ProjectView, error) {
	now := s.now()
	p.ID = primitive.NilObjectID
	p.CriadoPor = createdBy
	p.CreatedAt = now
	p.UpdatedAt = now
	p.Normalize()
	if err := models.Validate(p); err != nil {
		return models.ProjectView{}, err
	}
	assignments, err := prepareAssignments(p.Colaboradores, now)
	if err != nil {
		return models.ProjectView{}, err
	}
	p.Colaboradores = assignments

	if err := s.projects.Insert(ctx, p); err != nil {
		return models.ProjectView{}, err
	}
	logging.Logger.Infof("Event ID: PROJECT_CREATED, Description: Project %s created", p.ID.Hex())
	return s.detail(ctx, p)
}

// Update applies apply to the stored project and saves the result. The
// assignment history is only changed by AddCollaborator and
// RemoveCollaborator; Save leaves it as stored, including entries written
// after p was read.
func (s *ProjectService) Update(ctx context.Context, id primitive.ObjectID, apply func(*models.Project) error) (models.ProjectView, error) {
	p, err := s.projects.FindByID(ctx, id)
	if err != nil {
		return models.ProjectView{}, err
	}
	createdAt, createdBy := p.CreatedAt, copyID(p.CriadoPor)
	assignments := append([]models.Assignment{}, p.Colaboradores...)

	if err := apply(p); err != nil {
		return models.ProjectView{}, err
	}
	p.ID, p.CreatedAt, p.CriadoPor, p.Colaboradores = id, createdAt, createdBy, assignments
	p.UpdatedAt = s.now()
	p.Normalize()
	if err := models.Validate(p); err != nil {
		return models.ProjectView{}, err
	}

	if err := s.projects.Save(ctx, p); err != nil {
		return models.ProjectView{}, err
	}
	return s.Get(ctx, id)
}

func (s *ProjectService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.projects.Delete(ctx, id); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: PROJECT_DELETED, Description: Project %s deleted", id.Hex())
	return nil
}

// AddCollaborator opens an assignment of the collaborator on the project.
// The collaborator's allocated hours grow by req.HorasAlocadas as a
// consequence, since they are derived from open assignments.
func (s *ProjectService) AddCollaborator(ctx context.Context, projectID primitive.ObjectID, req models.AssignmentRequest) (models.ProjectView, error) {
	if err := models.Validate(&req); err != nil {
		return models.ProjectView{}, err
	}
	collaboratorID, err := models.ParseID(req.ColaboradorID)
	if err != nil {
		return models.ProjectView{}, err
	}

	if _, err := s.projects.FindByID(ctx, projectID); err != nil {
		return models.ProjectView{}, err
	}
	if _, err := s.collaborators.FindByID(ctx, collaboratorID); err != nil {
		return models.ProjectView{}, err
	}

	funcao := strings.TrimSpace(req.Funcao)
	if funcao == "" {
		funcao = models.DefaultAssignmentRole
	}
	assignment := models.Assignment{
		Colaborador:   collaboratorID,
		Funcao:        funcao,
		HorasAlocadas: req.HorasAlocadas,
		DataEntrada:   s.now(),
	}
	if err := s.projects.AddAssignment(ctx, projectID, assignment); err != nil {
		return models.ProjectView{}, err
	}
	logging.Logger.Infof("Event ID: COLLABORATOR_ASSIGNED, Description: Collaborator %s joined project %s with %.1f hours", collaboratorID.Hex(), projectID.Hex(), req.HorasAlocadas)
	return s.Get(ctx, projectID)
}

// RemoveCollaborator ends the open assignment of the collaborator. It is a
// no-op when there is none.
func (s *ProjectService) RemoveCollaborator(ctx context.Context, projectID, collaboratorID primitive.ObjectID) (models.ProjectView, error) {
	if err := s.projects.CloseAssignment(ctx, projectID, collaboratorID, s.now()); err != nil {
		return models.ProjectView{}, err
	}
	return s.Get(ctx, projectID)
}

func (s *ProjectService) Stats(ctx context.Context) (models.ProjectStats, error) {
	byStatus, err := s.projects.StatsByStatus(ctx)
	if err != nil {
		return models.ProjectStats{}, err
	}
	total, err := s.projects.Count(ctx)
	if err != nil {
		return models.ProjectStats{}, err
	}
	return models.ProjectStats{Total: total, ByStatus: byStatus}, nil
}
