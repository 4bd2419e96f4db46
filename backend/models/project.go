package models

import (
	"math"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	DefaultAssignmentRole = "Membro"
	DefaultProjectColor   = "#3B82F6"
)

// Assignment links a collaborator to a project. Entries are never removed;
// leaving a project stamps DataSaida.
type Assignment struct {
	Colaborador   primitive.ObjectID `json:"colaborador" bson:"colaborador" validate:"required"`
	Funcao        string             `json:"funcao" bson:"funcao"`
	HorasAlocadas float64            `json:"horasAlocadas" bson:"horasAlocadas" validate:"min=0"`
	DataEntrada   time.Time          `json:"dataEntrada" bson:"dataEntrada"`
	DataSaida     *time.Time         `json:"dataSaida" bson:"dataSaida"`
}

func (a Assignment) Active() bool {
	return a.DataSaida == nil
}

type Project struct {
	ID              primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	Nome            string              `json:"nome" bson:"nome" validate:"required,max=200"`
	Descricao       string              `json:"descricao" bson:"descricao"`
	Cliente         string              `json:"cliente" bson:"cliente"`
	DataInicio      time.Time           `json:"dataInicio" bson:"dataInicio" validate:"required"`
	DataTermino     time.Time           `json:"dataTermino" bson:"dataTermino" validate:"required"`
	HorasEstimadas  float64             `json:"horasEstimadas" bson:"horasEstimadas" validate:"min=0"`
	HorasRealizadas float64             `json:"horasRealizadas" bson:"horasRealizadas" validate:"min=0"`
	Status          ProjectStatus       `json:"status" bson:"status" validate:"enum"`
	Prioridade      Priority            `json:"prioridade" bson:"prioridade" validate:"enum"`
	Colaboradores   []Assignment        `json:"colaboradores" bson:"colaboradores" validate:"dive"`
	Tags            []string            `json:"tags" bson:"tags"`
	Cor             string              `json:"cor" bson:"cor" validate:"omitempty,hexcolor"`
	CriadoPor       *primitive.ObjectID `json:"criadoPor,omitempty" bson:"criadoPor,omitempty"`
	CreatedAt       time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt" bson:"updatedAt"`
}

func NewProject() *Project {
	return &Project{
		Status:        ProjectPlanning,
		Prioridade:    PriorityMedium,
		Colaboradores: []Assignment{},
		Tags:          []string{},
		Cor:           DefaultProjectColor,
	}
}

func (p *Project) Normalize() {
	p.Nome = strings.TrimSpace(p.Nome)
	if p.Colaboradores == nil {
		p.Colaboradores = []Assignment{}
	}
	tags := make([]string, 0, len(p.Tags))
	for _, t := range p.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	p.Tags = tags
}

// ActiveAssignment returns the index of the open assignment of collaboratorID, or -1.
func (p *Project) ActiveAssignment(collaboratorID primitive.ObjectID) int {
	for i, a := range p.Colaboradores {
		if a.Colaborador == collaboratorID && a.Active() {
			return i
		}
	}
	return -1
}

// AddCollaborator appends an open assignment. It fails with ErrAlreadyAssigned
// when the collaborator already has one.
func (p *Project) AddCollaborator(a Assignment) error {
	if p.ActiveAssignment(a.Colaborador) >= 0 {
		return ErrAlreadyAssigned
	}
	a.DataSaida = nil
	p.Colaboradores = append(p.Colaboradores, a)
	return nil
}

// RemoveCollaborator closes the open assignment of collaboratorID.
// It reports whether an assignment was closed.
func (p *Project) RemoveCollaborator(collaboratorID primitive.ObjectID, at time.Time) bool {
	i := p.ActiveAssignment(collaboratorID)
	if i < 0 {
		return false
	}
	p.Colaboradores[i].DataSaida = &at
	return true
}

// Progress is realized/estimated hours as a percentage, capped at 100.
func (p *Project) Progress() int {
	if p.HorasEstimadas <= 0 {
		return 0
	}
	pct := int(math.Round(p.HorasRealizadas / p.HorasEstimadas * 100))
	if pct > 100 {
		return 100
	}
	return pct
}

func (p *Project) ActiveCollaborators() int {
	n := 0
	for _, a := range p.Colaboradores {
		if a.Active() {
			n++
		}
	}
	return n
}

// DaysRemaining counts whole days (rounded up) until DataTermino.
func (p *Project) DaysRemaining(now time.Time) *int {
	if p.DataTermino.IsZero() {
		return nil
	}
	days := int(math.Ceil(p.DataTermino.Sub(now).Hours() / 24))
	return &days
}

type AssignmentView struct {
	Colaborador   CollaboratorSummary `json:"colaborador"`
	Funcao        string              `json:"funcao"`
	HorasAlocadas float64             `json:"horasAlocadas"`
	DataEntrada   time.Time           `json:"dataEntrada"`
	DataSaida     *time.Time          `json:"dataSaida"`
}

// ProjectView replaces collaborator references with summaries and adds derived fields.
type ProjectView struct {
	*Project
	Colaboradores      []AssignmentView `json:"colaboradores"`
	Progresso          int              `json:"progresso"`
	TotalColaboradores int              `json:"totalColaboradores"`
	DiasRestantes      *int             `json:"diasRestantes"`
}

// ProjectSummary is embedded in task responses in place of the project reference.
type ProjectSummary struct {
	ID     primitive.ObjectID `json:"_id"`
	Nome   string             `json:"nome,omitempty"`
	Cor    string             `json:"cor,omitempty"`
	Status ProjectStatus      `json:"status,omitempty"`
}

func (p *Project) Summary() ProjectSummary {
	return ProjectSummary{ID: p.ID, Nome: p.Nome, Cor: p.Cor, Status: p.Status}
}

type ProjectFilter struct {
	Status   ProjectStatus
	Priority Priority
	Search   string
}

// StatusStats aggregates projects sharing one status.
type StatusStats struct {
	Status               ProjectStatus `json:"_id" bson:"_id"`
	Count                int64         `json:"count" bson:"count"`
	TotalHorasEstimadas  float64       `json:"totalHorasEstimadas" bson:"totalHorasEstimadas"`
	TotalHorasRealizadas float64       `json:"totalHorasRealizadas" bson:"totalHorasRealizadas"`
}

type ProjectStats struct {
	Total    int64         `json:"total"`
	ByStatus []StatusStats `json:"byStatus"`
}
