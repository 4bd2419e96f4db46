package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func validCollaborator() *Collaborator {
	c := NewCollaborator()
	c.NomeCompleto = "Ana Souza"
	c.Email = "ana@mesatech.com"
	c.Matricula = "MT001"
	c.Cargo = RoleDeveloper
	return c
}

func TestCollaboratorNormalizeAndView(t *testing.T) {
	c := validCollaborator()
	c.NomeCompleto = "  Ana Maria Souza "
	c.Email = " ANA@MesaTech.com"
	c.Skills = []string{" Go ", "", "SQL"}
	c.Normalize()

	assert.Equal(t, "Ana Maria Souza", c.NomeCompleto)
	assert.Equal(t, "ana@mesatech.com", c.Email)
	assert.Equal(t, []string{"Go", "SQL"}, c.Skills)

	view := c.View(15)
	assert.Equal(t, "Ana", view.PrimeiroNome)
	assert.Equal(t, 15.0, view.HorasAlocadas)
	assert.Equal(t, 25.0, view.HorasDisponiveis)
}

func TestValidateMessages(t *testing.T) {
	require.NoError(t, Validate(validCollaborator()))

	c := validCollaborator()
	c.HorasSemanais = 61
	c.Cargo = "Chef"
	c.Email = "nope"
	err := Validate(c)
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
	assert.ElementsMatch(t, []string{
		"email is not a valid email",
		"cargo has an invalid value 'Chef'",
		"horasSemanais must not exceed 60",
	}, validation.Messages)

	p := NewProject()
	p.Cor = "blue"
	err = Validate(p)
	require.ErrorAs(t, err, &validation)
	assert.Contains(t, validation.Messages, "nome is required")
	assert.Contains(t, validation.Messages, "cor must be a hex color")
}

func TestEnums(t *testing.T) {
	assert.True(t, ProjectInProgress.Valid())
	assert.False(t, ProjectStatus("em andamento").Valid())
	assert.True(t, RoleIntern.Valid())
	assert.False(t, CollaboratorRole("").Valid())
	assert.True(t, UserViewer.Valid())

	assert.Greater(t, PriorityCritical.Rank(), PriorityHigh.Rank())
	assert.Greater(t, PriorityHigh.Rank(), PriorityMedium.Rank())
	assert.Greater(t, PriorityMedium.Rank(), PriorityLow.Rank())
	assert.Equal(t, 0, Priority("urgente").Rank())

	assert.True(t, TaskDone.Terminal())
	assert.True(t, TaskCancelled.Terminal())
	assert.False(t, TaskInReview.Terminal())
}

func TestProjectAssignments(t *testing.T) {
	p := NewProject()
	ana := primitive.NewObjectID()
	at := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	require.NoError(t, p.AddCollaborator(Assignment{Colaborador: ana, HorasAlocadas: 10}))
	assert.ErrorIs(t, p.AddCollaborator(Assignment{Colaborador: ana}), ErrAlreadyAssigned)
	assert.Equal(t, 1, p.ActiveCollaborators())

	assert.True(t, p.RemoveCollaborator(ana, at))
	assert.False(t, p.RemoveCollaborator(ana, at))
	assert.Equal(t, 0, p.ActiveCollaborators())

	require.NoError(t, p.AddCollaborator(Assignment{Colaborador: ana, HorasAlocadas: 5}))
	require.Len(t, p.Colaboradores, 2)
	assert.Equal(t, at, *p.Colaboradores[0].DataSaida)
	assert.Nil(t, p.Colaboradores[1].DataSaida)
}

func TestProjectDerivedFields(t *testing.T) {
	p := NewProject()
	assert.Equal(t, 0, p.Progress())

	p.HorasEstimadas, p.HorasRealizadas = 800, 100
	assert.Equal(t, 13, p.Progress())
	p.HorasRealizadas = 1000
	assert.Equal(t, 100, p.Progress())

	assert.Nil(t, p.DaysRemaining(time.Now()))
	p.DataTermino = time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC)
	days := p.DaysRemaining(p.DataTermino.Add(-36 * time.Hour))
	require.NotNil(t, days)
	assert.Equal(t, 2, *days)

	p.Nome = "  Portal  "
	p.Colaboradores = nil
	p.Tags = []string{"web", " "}
	p.Normalize()
	assert.Equal(t, "Portal", p.Nome)
	assert.NotNil(t, p.Colaboradores)
	assert.Equal(t, []string{"web"}, p.Tags)
}

func TestTaskNormalizeAndCompletion(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	task := &Task{Titulo: " Login ", Subtarefas: []Subtask{{Titulo: "Form"}, {Titulo: "API", Concluida: true}}}
	task.Normalize(now)

	assert.Equal(t, "Login", task.Titulo)
	assert.NotNil(t, task.Comentarios)
	for _, s := range task.Subtarefas {
		assert.False(t, s.ID.IsZero())
	}
	assert.Equal(t, 50, task.SubtaskProgress())
	assert.Equal(t, 1, task.Subtask(task.Subtarefas[1].ID))
	assert.Equal(t, -1, task.Subtask(primitive.NewObjectID()))

	task.Status = TaskDone
	task.StampCompletion(TaskInReview, now)
	require.NotNil(t, task.DataConclusao)
	assert.Equal(t, now, *task.DataConclusao)

	task.StampCompletion(TaskDone, now.Add(time.Hour))
	assert.Equal(t, now, *task.DataConclusao)

	task.Status = TaskInProgress
	task.StampCompletion(TaskDone, now)
	assert.Nil(t, task.DataConclusao)
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()
	parsed, err := ParseID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, parsed)

	_, err = ParseID("xyz")
	assert.ErrorIs(t, err, ErrInvalidID)
}

func TestErrors(t *testing.T) {
	err := NotFound("Project")
	assert.True(t, IsNotFound(err))
	assert.Equal(t, "Project not found", err.Error())
	assert.False(t, IsNotFound(ErrInvalidID))
	assert.Equal(t, "a record with this email already exists", (&DuplicateKeyError{Field: "email"}).Error())
}

func TestParseDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-01-15", time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)},
		{"2024-01-15T10:30", time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)},
		{"2024-01-15T10:30:05", time.Date(2024, 1, 15, 10, 30, 5, 0, time.UTC)},
		{"2024-01-15T10:30:05.250Z", time.Date(2024, 1, 15, 10, 30, 5, 250e6, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), got)
		})
	}

	_, err := ParseDate("15/01/2024")
	assert.Error(t, err)
}

func TestDecodeBodies(t *testing.T) {
	t.Run("empty admission date keeps the current value", func(t *testing.T) {
		c := NewCollaborator()
		admitted := time.Date(2023, 2, 1, 0, 0, 0, 0, time.UTC)
		c.DataAdmissao = admitted
		require.NoError(t, json.Unmarshal([]byte(`{"nomeCompleto":"Ana","dataAdmissao":""}`), c))
		assert.Equal(t, "Ana", c.NomeCompleto)
		assert.Equal(t, admitted, c.DataAdmissao)
		assert.Equal(t, "TI", c.Departamento)
	})

	t.Run("project dates from a date input", func(t *testing.T) {
		p := NewProject()
		require.NoError(t, json.Unmarshal([]byte(`{"nome":"Portal","dataInicio":"2024-01-15","dataTermino":"2024-06-30T00:00:00Z"}`), p))
		assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), p.DataInicio)
		assert.Equal(t, 2024, p.DataTermino.Year())
		assert.Equal(t, ProjectPlanning, p.Status)
	})

	t.Run("invalid date names the field", func(t *testing.T) {
		err := json.Unmarshal([]byte(`{"dataTermino":"amanhã"}`), NewProject())
		var fe *FieldError
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "dataTermino has an invalid date", fe.Error())
	})

	t.Run("expanded references collapse to ids", func(t *testing.T) {
		projectID := primitive.NewObjectID()
		collaboratorID := primitive.NewObjectID()
		body := `{"projeto":{"_id":"` + projectID.Hex() + `","nome":"Portal"},"responsavel":"` + collaboratorID.Hex() + `","dataVencimento":"2024-02-01"}`
		task := NewTask()
		require.NoError(t, json.Unmarshal([]byte(body), task))
		assert.Equal(t, projectID, task.Projeto)
		require.NotNil(t, task.Responsavel)
		assert.Equal(t, collaboratorID, *task.Responsavel)
		require.NotNil(t, task.DataVencimento)

		require.NoError(t, json.Unmarshal([]byte(`{"responsavel":"","dataVencimento":null}`), task))
		assert.Nil(t, task.Responsavel)
		assert.Nil(t, task.DataVencimento)
	})

	t.Run("assignment collaborator from a response", func(t *testing.T) {
		collaboratorID := primitive.NewObjectID()
		var p Project
		body := `{"colaboradores":[{"colaborador":{"_id":"` + collaboratorID.Hex() + `","nomeCompleto":"Ana"},"horasAlocadas":10,"dataSaida":null}]}`
		require.NoError(t, json.Unmarshal([]byte(body), &p))
		require.Len(t, p.Colaboradores, 1)
		assert.Equal(t, collaboratorID, p.Colaboradores[0].Colaborador)
		assert.Equal(t, 10.0, p.Colaboradores[0].HorasAlocadas)
		assert.Nil(t, p.Colaboradores[0].DataSaida)
	})

	t.Run("malformed reference", func(t *testing.T) {
		err := json.Unmarshal([]byte(`{"projeto":"abc"}`), NewTask())
		assert.ErrorIs(t, err, ErrInvalidID)

		var fe *FieldError
		err = json.Unmarshal([]byte(`{"projeto":true}`), NewTask())
		require.ErrorAs(t, err, &fe)
		assert.Equal(t, "projeto", fe.Field)
	})
}
