package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultMinimumHours is used by Available when no minimum is given.
const DefaultMinimumHours = 1

type CollaboratorService struct {
	collaborators repositories.CollaboratorRepository
	projects      repositories.ProjectRepository
	now           func() time.Time
}

func NewCollaboratorService(store *repositories.Store) *CollaboratorService {
	return &CollaboratorService{
		collaborators: store.Collaborators,
		projects:      store.Projects,
		now:           time.Now,
	}
}

// views attaches the allocated hours derived from open assignments.
func (s *CollaboratorService) views(ctx context.Context, items []models.Collaborator) ([]models.CollaboratorView, error) {
	ids := make([]primitive.ObjectID, len(items))
	for i := range items {
		ids[i] = items[i].ID
	}
	hours, err := s.projects.AllocatedHours(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("allocated hours: %w", err)
	}

	out := make([]models.CollaboratorView, len(items))
	for i := range items {
		out[i] = items[i].View(hours[items[i].ID])
	}
	return out, nil
}

func (s *CollaboratorService) view(ctx context.Context, c *models.Collaborator) (models.CollaboratorView, error) {
	views, err := s.views(ctx, []models.Collaborator{*c})
	if err != nil {
		return models.CollaboratorView{}, err
	}
	return views[0], nil
}

func (s *CollaboratorService) List(ctx context.Context, filter models.CollaboratorFilter, page utils.Pagination) ([]models.CollaboratorView, int64, error) {
	items, total, err := s.collaborators.Find(ctx, filter, page)
	if err != nil {
		return nil, 0, err
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, 0, err
	}
	return views, total, nil
}

func (s *CollaboratorService) Get(ctx context.Context, id primitive.ObjectID) (models.CollaboratorView, error) {
	c, err := s.collaborators.FindByID(ctx, id)
	if err != nil {
		return models.CollaboratorView{}, err
	}
	return s.view(ctx, c)
}

func (s *CollaboratorService) Create(ctx context.Context, c *models.Collaborator, createdBy *primitive.ObjectID) (models.CollaboratorView, error) {
	now := s.now()
	c.ID = primitive.NilObjectID
	c.CriadoPor = createdBy
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.DataAdmissao.IsZero() {
		c.DataAdmissao = now
	}
	c.Normalize()
	if err := models.Validate(c); err != nil {
		return models.CollaboratorView{}, err
	}

	if err := s.collaborators.Insert(ctx, c); err != nil {
		return models.CollaboratorView{}, err
	}
	logging.Logger.Infof("Event ID: COLLABORATOR_CREATED, Description: Collaborator %s created", c.ID.Hex())
	return c.View(0), nil
}

// Update applies apply to the stored collaborator and saves the result.
// The id and creation fields cannot be changed.
func (s *CollaboratorService) Update(ctx context.Context, id primitive.ObjectID, apply func(*models.Collaborator) error) (models.CollaboratorView, error) {
	c, err := s.collaborators.FindByID(ctx, id)
	if err != nil {
		return models.CollaboratorView{}, err
	}
	createdAt, createdBy := c.CreatedAt, copyID(c.CriadoPor)

	if err := apply(c); err != nil {
		return models.CollaboratorView{}, err
	}
	c.ID, c.CreatedAt, c.CriadoPor = id, createdAt, createdBy
	c.UpdatedAt = s.now()
	c.Normalize()
	if err := models.Validate(c); err != nil {
		return models.CollaboratorView{}, err
	}

	if err := s.collaborators.Replace(ctx, c); err != nil {
		return models.CollaboratorView{}, err
	}
	return s.view(ctx, c)
}

func (s *CollaboratorService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.collaborators.Delete(ctx, id); err != nil {
		return err
	}
	logging.Logger.Infof("Event ID: COLLABORATOR_DELETED, Description: Collaborator %s deleted", id.Hex())
	return nil
}

// Available returns active collaborators with at least minHours of weekly
// capacity left after their open assignments, sorted by name.
func (s *CollaboratorService) Available(ctx context.Context, minHours float64) ([]models.CollaboratorView, error) {
	active := true
	items, err := s.collaborators.FindAll(ctx, models.CollaboratorFilter{Active: &active})
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, items)
	if err != nil {
		return nil, err
	}

	available := make([]models.CollaboratorView, 0, len(views))
	for _, v := range views {
		if v.HorasDisponiveis >= minHours {
			available = append(available, v)
		}
	}
	return available, nil
}

// copyID detaches an id pointer from a document a request body is about to
// be decoded into.
func copyID(id *primitive.ObjectID) *primitive.ObjectID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}
