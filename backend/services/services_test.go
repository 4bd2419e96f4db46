package services

import (
	"context"
	"testing"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type clock struct {
	t time.Time
}

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

type fixture struct {
	store         *repositories.Store
	clock         *clock
	collaborators *CollaboratorService
	projects      *ProjectService
	tasks         *TaskService
	auth          *AuthService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := repositories.NewMemoryStore()
	c := &clock{t: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}

	f := &fixture{
		store:         store,
		clock:         c,
		collaborators: NewCollaboratorService(store),
		projects:      NewProjectService(store),
		tasks:         NewTaskService(store),
		auth:          NewAuthService(store, utils.NewTokenManager("test-secret", time.Hour)),
	}
	f.collaborators.now = c.now
	f.projects.now = c.now
	f.tasks.now = c.now
	f.auth.now = c.now
	return f
}

func (f *fixture) collaborator(t *testing.T, name, email, matricula string, weekly float64) models.CollaboratorView {
	t.Helper()
	c := models.NewCollaborator()
	c.NomeCompleto = name
	c.Email = email
	c.Matricula = matricula
	c.Cargo = models.RoleDeveloper
	c.HorasSemanais = weekly
	view, err := f.collaborators.Create(context.Background(), c, nil)
	require.NoError(t, err)
	return view
}

func (f *fixture) project(t *testing.T, name string) models.ProjectView {
	t.Helper()
	p := models.NewProject()
	p.Nome = name
	p.DataInicio = f.clock.t
	p.DataTermino = f.clock.t.Add(30 * 24 * time.Hour)
	view, err := f.projects.Create(context.Background(), p, nil)
	require.NoError(t, err)
	f.clock.advance(time.Minute)
	return view
}

func (f *fixture) assign(t *testing.T, projectID, collaboratorID primitive.ObjectID, hours float64) (models.ProjectView, error) {
	t.Helper()
	return f.projects.AddCollaborator(context.Background(), projectID, models.AssignmentRequest{
		ColaboradorID: collaboratorID.Hex(),
		Funcao:        "Desenvolvedora",
		HorasAlocadas: hours,
	})
}

func TestAvailableCollaborators(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	ana := f.collaborator(t, "Ana Silva", "ana@mesatech.com", "MT001", 40)
	bruno := f.collaborator(t, "Bruno Costa", "bruno@mesatech.com", "MT002", 30)
	inactive := f.collaborator(t, "Carla Dias", "carla@mesatech.com", "MT003", 40)
	_, err := f.collaborators.Update(ctx, inactive.ID, func(c *models.Collaborator) error {
		c.Ativo = false
		return nil
	})
	require.NoError(t, err)

	portal := f.project(t, "Portal")
	_, err = f.assign(t, portal.ID, ana.ID, 20)
	require.NoError(t, err)
	_, err = f.assign(t, portal.ID, bruno.ID, 25)
	require.NoError(t, err)

	got, err := f.collaborators.Get(ctx, ana.ID)
	require.NoError(t, err)
	assert.Equal(t, 20.0, got.HorasAlocadas)
	assert.Equal(t, 20.0, got.HorasDisponiveis)
	assert.Equal(t, "Ana", got.PrimeiroNome)

	available, err := f.collaborators.Available(ctx, 20)
	require.NoError(t, err)
	require.Len(t, available, 1)
	assert.Equal(t, ana.ID, available[0].ID)

	available, err = f.collaborators.Available(ctx, 21)
	require.NoError(t, err)
	assert.Empty(t, available)

	available, err = f.collaborators.Available(ctx, DefaultMinimumHours)
	require.NoError(t, err)
	for _, v := range available {
		assert.True(t, v.Ativo)
		assert.GreaterOrEqual(t, v.HorasDisponiveis, float64(DefaultMinimumHours))
	}
	assert.Len(t, available, 2)
}

func TestCollaboratorUpdateKeepsIdentity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ana := f.collaborator(t, "Ana Silva", "ana@mesatech.com", "MT001", 40)
	f.clock.advance(time.Hour)

	updated, err := f.collaborators.Update(ctx, ana.ID, func(c *models.Collaborator) error {
		c.ID = primitive.NewObjectID()
		c.HorasSemanais = 30
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, ana.ID, updated.ID)
	assert.Equal(t, 30.0, updated.HorasSemanais)
	assert.True(t, updated.UpdatedAt.After(updated.CreatedAt))

	_, err = f.collaborators.Update(ctx, ana.ID, func(c *models.Collaborator) error {
		c.HorasSemanais = 80
		return nil
	})
	var verr *models.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"horasSemanais must not exceed 60"}, verr.Messages)
}

func TestProjectAssignments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ana := f.collaborator(t, "Ana Silva", "ana@mesatech.com", "MT001", 40)
	portal := f.project(t, "Portal")

	view, err := f.assign(t, portal.ID, ana.ID, 20)
	require.NoError(t, err)
	require.Len(t, view.Colaboradores, 1)
	assert.Equal(t, "Ana Silva", view.Colaboradores[0].Colaborador.NomeCompleto)
	require.NotNil(t, view.Colaboradores[0].Colaborador.HorasAlocadas)
	assert.Equal(t, 20.0, *view.Colaboradores[0].Colaborador.HorasAlocadas)
	assert.Equal(t, 1, view.TotalColaboradores)

	t.Run("re-adding an active collaborator is rejected", func(t *testing.T) {
		_, err := f.assign(t, portal.ID, ana.ID, 10)
		assert.ErrorIs(t, err, models.ErrAlreadyAssigned)
	})

	t.Run("unknown references are not found", func(t *testing.T) {
		_, err := f.assign(t, primitive.NewObjectID(), ana.ID, 10)
		assert.True(t, models.IsNotFound(err))
		_, err = f.assign(t, portal.ID, primitive.NewObjectID(), 10)
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("malformed collaborator id", func(t *testing.T) {
		_, err := f.projects.AddCollaborator(ctx, portal.ID, models.AssignmentRequest{ColaboradorID: "nope"})
		assert.ErrorIs(t, err, models.ErrInvalidID)
	})

	t.Run("remove then add again keeps history", func(t *testing.T) {
		f.clock.advance(time.Hour)
		view, err := f.projects.RemoveCollaborator(ctx, portal.ID, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, view.TotalColaboradores)

		got, err := f.collaborators.Get(ctx, ana.ID)
		require.NoError(t, err)
		assert.Zero(t, got.HorasAlocadas)

		view, err = f.assign(t, portal.ID, ana.ID, 15)
		require.NoError(t, err)
		require.Len(t, view.Colaboradores, 2)
		assert.NotNil(t, view.Colaboradores[0].DataSaida)
		assert.Nil(t, view.Colaboradores[1].DataSaida)

		got, err = f.collaborators.Get(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, 15.0, got.HorasAlocadas)
	})

	t.Run("removing an absent collaborator is a no-op", func(t *testing.T) {
		view, err := f.projects.RemoveCollaborator(ctx, portal.ID, primitive.NewObjectID())
		require.NoError(t, err)
		assert.Len(t, view.Colaboradores, 2)
	})

	t.Run("update does not replace assignments", func(t *testing.T) {
		view, err := f.projects.Update(ctx, portal.ID, func(p *models.Project) error {
			p.Nome = "Portal v2"
			p.Colaboradores = nil
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Portal v2", view.Nome)
		assert.Len(t, view.Colaboradores, 2)
	})
}

func TestProjectCreateRejectsDuplicateOpenAssignments(t *testing.T) {
	f := newFixture(t)
	collaboratorID := primitive.NewObjectID()

	p := models.NewProject()
	p.Nome = "Duplicated"
	p.DataInicio = f.clock.t
	p.DataTermino = f.clock.t.Add(time.Hour)
	p.Colaboradores = []models.Assignment{
		{Colaborador: collaboratorID, HorasAlocadas: 10},
		{Colaborador: collaboratorID, HorasAlocadas: 5},
	}

	_, err := f.projects.Create(context.Background(), p, nil)
	assert.ErrorIs(t, err, models.ErrAlreadyAssigned)
}

func TestProjectStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	for _, p := range []struct {
		status         models.ProjectStatus
		estimated, got float64
	}{
		{models.ProjectInProgress, 500, 200},
		{models.ProjectInProgress, 800, 100},
		{models.ProjectPlanning, 1200, 50},
	} {
		view := f.project(t, "p")
		_, err := f.projects.Update(ctx, view.ID, func(project *models.Project) error {
			project.Status = p.status
			project.HorasEstimadas = p.estimated
			project.HorasRealizadas = p.got
			return nil
		})
		require.NoError(t, err)
	}

	stats, err := f.projects.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Total)
	assert.Equal(t, []models.StatusStats{
		{Status: models.ProjectInProgress, Count: 2, TotalHorasEstimadas: 1300, TotalHorasRealizadas: 300},
		{Status: models.ProjectPlanning, Count: 1, TotalHorasEstimadas: 1200, TotalHorasRealizadas: 50},
	}, stats.ByStatus)
}

func (f *fixture) task(t *testing.T, projectID primitive.ObjectID, title string, priority models.Priority) models.TaskView {
	t.Helper()
	task := models.NewTask()
	task.Titulo = title
	task.Projeto = projectID
	task.Prioridade = priority
	task.Subtarefas = []models.Subtask{{Titulo: "write tests"}}
	view, err := f.tasks.Create(context.Background(), task, nil)
	require.NoError(t, err)
	f.clock.advance(time.Minute)
	return view
}

func TestTaskCreate(t *testing.T) {
	f := newFixture(t)

	t.Run("unknown project", func(t *testing.T) {
		task := models.NewTask()
		task.Titulo = "orphan"
		task.Projeto = primitive.NewObjectID()
		_, err := f.tasks.Create(context.Background(), task, nil)

		var nf *models.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "Project", nf.Entity)
	})

	t.Run("expands the project and gives subtasks ids", func(t *testing.T) {
		portal := f.project(t, "Portal")
		view := f.task(t, portal.ID, "Login", models.PriorityHigh)

		assert.Equal(t, "Portal", view.Projeto.Nome)
		assert.Equal(t, models.ProjectPlanning, view.Projeto.Status)
		require.Len(t, view.Subtarefas, 1)
		assert.False(t, view.Subtarefas[0].ID.IsZero())
		assert.Nil(t, view.DataConclusao)
	})
}

func TestTaskCompletionDate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	portal := f.project(t, "Portal")
	task := f.task(t, portal.ID, "Login", models.PriorityMedium)

	setStatus := func(status models.TaskStatus) models.TaskView {
		view, err := f.tasks.Update(ctx, task.ID, func(t *models.Task) error {
			t.Status = status
			return nil
		})
		require.NoError(t, err)
		return view
	}

	done := setStatus(models.TaskDone)
	require.NotNil(t, done.DataConclusao)
	completedAt := *done.DataConclusao

	f.clock.advance(time.Hour)
	again := setStatus(models.TaskDone)
	require.NotNil(t, again.DataConclusao)
	assert.True(t, completedAt.Equal(*again.DataConclusao))

	for _, status := range []models.TaskStatus{models.TaskPending, models.TaskInProgress, models.TaskInReview, models.TaskCancelled} {
		assert.Nil(t, setStatus(status).DataConclusao, status)
	}
}

func TestTaskSubtasksAndComments(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	portal := f.project(t, "Portal")
	task := f.task(t, portal.ID, "Login", models.PriorityMedium)
	subtaskID := task.Subtarefas[0].ID

	t.Run("toggling twice restores the flag", func(t *testing.T) {
		view, err := f.tasks.ToggleSubtask(ctx, task.ID, subtaskID)
		require.NoError(t, err)
		assert.True(t, view.Subtarefas[0].Concluida)
		assert.Equal(t, 100, view.ProgressoSubtarefas)

		view, err = f.tasks.ToggleSubtask(ctx, task.ID, subtaskID)
		require.NoError(t, err)
		assert.False(t, view.Subtarefas[0].Concluida)
	})

	t.Run("unknown subtask", func(t *testing.T) {
		_, err := f.tasks.ToggleSubtask(ctx, task.ID, primitive.NewObjectID())
		assert.True(t, models.IsNotFound(err))
	})

	t.Run("comments expand their author and survive updates", func(t *testing.T) {
		result, err := f.auth.Register(ctx, models.RegisterRequest{Nome: "Ana", Email: "ana@mesatech.com", Senha: "secret1"})
		require.NoError(t, err)
		author := result.User.ID

		view, err := f.tasks.AddComment(ctx, task.ID, models.CommentRequest{Texto: "  pronto para revisão "}, &author)
		require.NoError(t, err)
		require.Len(t, view.Comentarios, 1)
		assert.Equal(t, "pronto para revisão", view.Comentarios[0].Texto)
		require.NotNil(t, view.Comentarios[0].Autor)
		assert.Equal(t, "Ana", view.Comentarios[0].Autor.Nome)

		view, err = f.tasks.Update(ctx, task.ID, func(t *models.Task) error {
			t.Comentarios = []models.Comment{{Texto: "forged"}}
			return nil
		})
		require.NoError(t, err)
		require.Len(t, view.Comentarios, 1)
		assert.Equal(t, "pronto para revisão", view.Comentarios[0].Texto)
	})

	t.Run("empty comment", func(t *testing.T) {
		_, err := f.tasks.AddComment(ctx, task.ID, models.CommentRequest{Texto: "   "}, nil)
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestListByProjectOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	portal := f.project(t, "Portal")

	f.task(t, portal.ID, "low", models.PriorityLow)
	f.task(t, portal.ID, "critical old", models.PriorityCritical)
	f.task(t, portal.ID, "medium", models.PriorityMedium)
	f.task(t, portal.ID, "critical new", models.PriorityCritical)
	f.task(t, portal.ID, "high", models.PriorityHigh)

	views, err := f.tasks.ListByProject(ctx, portal.ID)
	require.NoError(t, err)

	titles := make([]string, len(views))
	for i, v := range views {
		titles[i] = v.Titulo
	}
	assert.Equal(t, []string{"critical new", "critical old", "high", "medium", "low"}, titles)

	_, err = f.tasks.ListByProject(ctx, primitive.NewObjectID())
	assert.True(t, models.IsNotFound(err))
}

func TestAuth(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	registered, err := f.auth.Register(ctx, models.RegisterRequest{Nome: "Gestor", Email: "Gestor@MesaTech.com", Senha: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, registered.Token)
	assert.Equal(t, "gestor@mesatech.com", registered.User.Email)
	assert.Equal(t, models.UserCollaborator, registered.User.Role)

	t.Run("duplicate email", func(t *testing.T) {
		_, err := f.auth.Register(ctx, models.RegisterRequest{Nome: "Outro", Email: "gestor@mesatech.com", Senha: "secret1"})
		var dup *models.DuplicateKeyError
		assert.ErrorAs(t, err, &dup)
	})

	t.Run("short password", func(t *testing.T) {
		_, err := f.auth.Register(ctx, models.RegisterRequest{Nome: "Outro", Email: "outro@mesatech.com", Senha: "123"})
		var verr *models.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("login", func(t *testing.T) {
		result, err := f.auth.Login(ctx, models.LoginRequest{Email: "gestor@mesatech.com", Senha: "secret1"})
		require.NoError(t, err)
		require.NotNil(t, result.User.UltimoAcesso)

		_, err = f.auth.Login(ctx, models.LoginRequest{Email: "gestor@mesatech.com", Senha: "wrong!"})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
		_, err = f.auth.Login(ctx, models.LoginRequest{Email: "nobody@mesatech.com", Senha: "secret1"})
		assert.ErrorIs(t, err, models.ErrInvalidCredentials)
	})

	t.Run("me", func(t *testing.T) {
		user, err := f.auth.Me(ctx, registered.User.ID)
		require.NoError(t, err)
		assert.Equal(t, "Gestor", user.Nome)

		_, err = f.auth.Me(ctx, primitive.NewObjectID())
		assert.ErrorIs(t, err, models.ErrUnauthorized)
	})
}

func TestUpdateKeepsConcurrentAppends(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ana := f.collaborator(t, "Ana Souza", "ana@mesatech.com", "MT001", 40)
	portal := f.project(t, "Portal")
	task := f.task(t, portal.ID, "Login", models.PriorityMedium)

	t.Run("assignment added while a project update is in flight", func(t *testing.T) {
		view, err := f.projects.Update(ctx, portal.ID, func(p *models.Project) error {
			if _, err := f.assign(t, portal.ID, ana.ID, 15); err != nil {
				return err
			}
			p.Nome = "Portal v2"
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, "Portal v2", view.Nome)
		require.Len(t, view.Colaboradores, 1)
		assert.Equal(t, ana.ID, view.Colaboradores[0].Colaborador.ID)

		got, err := f.collaborators.Get(ctx, ana.ID)
		require.NoError(t, err)
		assert.Equal(t, 15.0, got.HorasAlocadas)
	})

	t.Run("comment added while a task update is in flight", func(t *testing.T) {
		view, err := f.tasks.Update(ctx, task.ID, func(tk *models.Task) error {
			if _, err := f.tasks.AddComment(ctx, task.ID, models.CommentRequest{Texto: "revisado"}, nil); err != nil {
				return err
			}
			tk.Status = models.TaskInProgress
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, models.TaskInProgress, view.Status)
		require.Len(t, view.Comentarios, 1)
		assert.Equal(t, "revisado", view.Comentarios[0].Texto)
	})
}
