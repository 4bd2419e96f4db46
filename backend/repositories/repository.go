package repositories

import (
	"context"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Find methods return the requested page together with the total number of
// matching documents. FindByID, Replace, Save and Delete return a
// *models.NotFoundError when no document has the given id.

type CollaboratorRepository interface {
	Find(ctx context.Context, filter models.CollaboratorFilter, page utils.Pagination) ([]models.Collaborator, int64, error)
	// FindAll returns every match sorted by name, without paging.
	FindAll(ctx context.Context, filter models.CollaboratorFilter) ([]models.Collaborator, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Collaborator, error)
	// FindByIDs skips ids that do not resolve.
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Collaborator, error)
	Insert(ctx context.Context, c *models.Collaborator) error
	Replace(ctx context.Context, c *models.Collaborator) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

type ProjectRepository interface {
	Find(ctx context.Context, filter models.ProjectFilter, page utils.Pagination) ([]models.Project, int64, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Project, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.Project, error)
	Insert(ctx context.Context, p *models.Project) error
	// Save writes every field of p except the assignment history, which
	// only AddAssignment and CloseAssignment change.
	Save(ctx context.Context, p *models.Project) error
	Delete(ctx context.Context, id primitive.ObjectID) error

	// AddAssignment appends a to the project in a single conditional write.
	// It returns models.ErrAlreadyAssigned when the collaborator already has
	// an open assignment on the project.
	AddAssignment(ctx context.Context, projectID primitive.ObjectID, a models.Assignment) error
	// CloseAssignment stamps the end date of the open assignment, if any.
	CloseAssignment(ctx context.Context, projectID, collaboratorID primitive.ObjectID, at time.Time) error
	// AllocatedHours sums the hours of open assignments per collaborator.
	// A nil ids slice covers every collaborator.
	AllocatedHours(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]float64, error)
	StatsByStatus(ctx context.Context) ([]models.StatusStats, error)
	Count(ctx context.Context) (int64, error)
}

type TaskRepository interface {
	Find(ctx context.Context, filter models.TaskFilter, page utils.Pagination) ([]models.Task, int64, error)
	FindByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Task, error)
	Insert(ctx context.Context, t *models.Task) error
	// Save writes every field of t except the comments, which only
	// AppendComment adds to.
	Save(ctx context.Context, t *models.Task) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	AppendComment(ctx context.Context, taskID primitive.ObjectID, c models.Comment, at time.Time) error
	SetSubtaskDone(ctx context.Context, taskID, subtaskID primitive.ObjectID, done bool, at time.Time) error
}

type UserRepository interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]models.User, error)
	// FindByEmail returns a *models.NotFoundError for unknown addresses.
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Insert(ctx context.Context, u *models.User) error
	TouchLastAccess(ctx context.Context, id primitive.ObjectID, at time.Time) error
}

// Store groups the repositories of one backend.
type Store struct {
	Collaborators CollaboratorRepository
	Projects      ProjectRepository
	Tasks         TaskRepository
	Users         UserRepository

	// Ping checks the backend is reachable.
	Ping func(ctx context.Context) error
	// Close releases the backend connection.
	Close func(ctx context.Context) error
	// Clear removes every collaborator, project and task. Users are kept.
	Clear func(ctx context.Context) error
}

const (
	collaboratorsCollection = "collaborators"
	projectsCollection      = "projects"
	tasksCollection         = "tasks"
	usersCollection         = "users"
)
