package models

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Subtask struct {
	ID        primitive.ObjectID `json:"_id" bson:"_id"`
	Titulo    string             `json:"titulo" bson:"titulo" validate:"required"`
	Concluida bool               `json:"concluida" bson:"concluida"`
}

type Comment struct {
	ID        primitive.ObjectID  `json:"_id" bson:"_id"`
	Autor     *primitive.ObjectID `json:"autor" bson:"autor"`
	Texto     string              `json:"texto" bson:"texto" validate:"required"`
	CreatedAt time.Time           `json:"createdAt" bson:"createdAt"`
}

// Attachment only records metadata; files are stored elsewhere.
type Attachment struct {
	ID         primitive.ObjectID `json:"_id" bson:"_id"`
	Nome       string             `json:"nome" bson:"nome"`
	URL        string             `json:"url" bson:"url"`
	Tipo       string             `json:"tipo" bson:"tipo"`
	Tamanho    int64              `json:"tamanho" bson:"tamanho"`
	UploadedAt time.Time          `json:"uploadedAt" bson:"uploadedAt"`
}

type Task struct {
	ID              primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Titulo          string              `json:"titulo" bson:"titulo" validate:"required,max=200"`
	Descricao       string              `json:"descricao" bson:"descricao"`
	Projeto         primitive.ObjectID  `json:"projeto" bson:"projeto" validate:"required"`
	Responsavel     *primitive.ObjectID `json:"responsavel" bson:"responsavel"`
	Status          TaskStatus          `json:"status" bson:"status" validate:"enum"`
	Prioridade      Priority            `json:"prioridade" bson:"prioridade" validate:"enum"`
	DataInicio      *time.Time          `json:"dataInicio" bson:"dataInicio"`
	DataVencimento  *time.Time          `json:"dataVencimento" bson:"dataVencimento"`
	DataConclusao   *time.Time          `json:"dataConclusao" bson:"dataConclusao"`
	HorasEstimadas  float64             `json:"horasEstimadas" bson:"horasEstimadas" validate:"min=0"`
	HorasRealizadas float64             `json:"horasRealizadas" bson:"horasRealizadas" validate:"min=0"`
	Subtarefas      []Subtask           `json:"subtarefas" bson:"subtarefas" validate:"dive"`
	Comentarios     []Comment           `json:"comentarios" bson:"comentarios" validate:"dive"`
	Anexos          []Attachment        `json:"anexos" bson:"anexos"`
	Tags            []string            `json:"tags" bson:"tags"`
	CriadoPor       *primitive.ObjectID `json:"criadoPor,omitempty" bson:"criadoPor,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

func NewTask() *Task {
	return &Task{
		Status:      TaskPending,
		Prioridade:  PriorityMedium,
		Subtarefas:  []Subtask{},
		Comentarios: []Comment{},
		Anexos:      []Attachment{},
		Tags:        []string{},
	}
}

// Normalize trims the title and gives ids to embedded entries that lack one.
func (t *Task) Normalize(now time.Time) {
	t.Titulo = strings.TrimSpace(t.Titulo)
	if t.Subtarefas == nil {
		t.Subtarefas = []Subtask{}
	}
	if t.Comentarios == nil {
		t.Comentarios = []Comment{}
	}
	if t.Anexos == nil {
		t.Anexos = []Attachment{}
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	for i := range t.Subtarefas {
		if t.Subtarefas[i].ID.IsZero() {
			t.Subtarefas[i].ID = primitive.NewObjectID()
		}
	}
	for i := range t.Comentarios {
		if t.Comentarios[i].ID.IsZero() {
			t.Comentarios[i].ID = primitive.NewObjectID()
		}
		if t.Comentarios[i].CreatedAt.IsZero() {
			t.Comentarios[i].CreatedAt = now
		}
	}
	for i := range t.Anexos {
		if t.Anexos[i].ID.IsZero() {
			t.Anexos[i].ID = primitive.NewObjectID()
		}
		if t.Anexos[i].UploadedAt.IsZero() {
			t.Anexos[i].UploadedAt = now
		}
	}
}

// StampCompletion keeps DataConclusao consistent with Status: a done task
// always has a completion date, any other status has none. A task that was
// already done keeps its original date.
func (t *Task) StampCompletion(previous TaskStatus, now time.Time) {
	if t.Status != TaskDone {
		t.DataConclusao = nil
		return
	}
	if previous != TaskDone || t.DataConclusao == nil {
		t.DataConclusao = &now
	}
}

// Subtask returns the index of the subtask with the given id, or -1.
func (t *Task) Subtask(id primitive.ObjectID) int {
	for i, s := range t.Subtarefas {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// SubtaskProgress is the share of completed subtasks as a rounded percentage.
func (t *Task) SubtaskProgress() int {
	if len(t.Subtarefas) == 0 {
		return 0
	}
	done := 0
	for _, s := range t.Subtarefas {
		if s.Concluida {
			done++
		}
	}
	return int(math.Round(float64(done) / float64(len(t.Subtarefas)) * 100))
}

type CommentView struct {
	ID        primitive.ObjectID `json:"_id"`
	Autor     *UserSummary       `json:"autor"`
	Texto     string             `json:"texto"`
	CreatedAt time.Time          `json:"createdAt"`
}

// TaskView replaces references with summaries and adds subtask progress.
type TaskView struct {
	*Task
	Projeto             ProjectSummary       `json:"projeto"`
	Responsavel         *CollaboratorSummary `json:"responsavel"`
	Comentarios         []CommentView        `json:"comentarios"`
	ProgressoSubtarefas int                  `json:"progressoSubtarefas"`
}

type TaskFilter struct {
	ProjectID     *primitive.ObjectID
	ResponsibleID *primitive.ObjectID
	Status        TaskStatus
	Priority      Priority
}
