package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultWeeklyHours = 40

// Collaborator is an employee that can be assigned to projects and tasks.
// Allocated hours are not stored; they are derived from the active
// project assignments whenever a collaborator is read.
type Collaborator struct {
	ID            primitive.ObjectID  `json:"_id" bson:"_id,omitempty"`
	NomeCompleto  string              `json:"nomeCompleto" bson:"nomeCompleto" validate:"required,max=100"`
	Email         string              `json:"email" bson:"email" validate:"required,email"`
	Matricula     string              `json:"matricula" bson:"matricula" validate:"required"`
	Cargo         CollaboratorRole    `json:"cargo" bson:"cargo" validate:"required,enum"`
	Departamento  string              `json:"departamento" bson:"departamento"`
	Telefone      *string             `json:"telefone" bson:"telefone"`
	Avatar        *string             `json:"avatar" bson:"avatar"`
	HorasSemanais float64             `json:"horasSemanais" bson:"horasSemanais" validate:"min=1,max=60"`
	Skills        []string            `json:"skills" bson:"skills"`
	DataAdmissao  time.Time           `json:"dataAdmissao" bson:"dataAdmissao"`
	Ativo         bool                `json:"ativo" bson:"ativo"`
	CriadoPor     *primitive.ObjectID `json:"criadoPor,omitempty" bson:"criadoPor,omitempty"`
	CreatedAt     time.Time           `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time           `json:"updatedAt" bson:"updatedAt"`
}

// NewCollaborator returns a collaborator pre-filled with the defaults a
// request body is decoded over.
func NewCollaborator() *Collaborator {
	return &Collaborator{
		Departamento:  "TI",
		HorasSemanais: DefaultWeeklyHours,
		Skills:        []string{},
		Ativo:         true,
	}
}

// Normalize trims text fields and lowercases the email.
func (c *Collaborator) Normalize() {
	c.NomeCompleto = strings.TrimSpace(c.NomeCompleto)
	c.Email = strings.ToLower(strings.TrimSpace(c.Email))
	c.Matricula = strings.TrimSpace(c.Matricula)
	skills := make([]string, 0, len(c.Skills))
	for _, s := range c.Skills {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	c.Skills = skills
}

func (c *Collaborator) FirstName() string {
	fields := strings.Fields(c.NomeCompleto)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// CollaboratorView is the wire representation with the derived capacity fields.
type CollaboratorView struct {
	*Collaborator
	HorasAlocadas    float64 `json:"horasAlocadas"`
	HorasDisponiveis float64 `json:"horasDisponiveis"`
	PrimeiroNome     string  `json:"primeiroNome"`
}

func (c *Collaborator) View(allocated float64) CollaboratorView {
	return CollaboratorView{
		Collaborator:     c,
		HorasAlocadas:    allocated,
		HorasDisponiveis: c.HorasSemanais - allocated,
		PrimeiroNome:     c.FirstName(),
	}
}

// CollaboratorSummary is embedded in project and task responses in place of a reference.
type CollaboratorSummary struct {
	ID            primitive.ObjectID `json:"_id"`
	NomeCompleto  string             `json:"nomeCompleto,omitempty"`
	Email         string             `json:"email,omitempty"`
	Cargo         CollaboratorRole   `json:"cargo,omitempty"`
	Avatar        *string            `json:"avatar,omitempty"`
	HorasSemanais *float64           `json:"horasSemanais,omitempty"`
	HorasAlocadas *float64           `json:"horasAlocadas,omitempty"`
}

func (c *Collaborator) Summary() CollaboratorSummary {
	return CollaboratorSummary{
		ID:           c.ID,
		NomeCompleto: c.NomeCompleto,
		Email:        c.Email,
		Cargo:        c.Cargo,
		Avatar:       c.Avatar,
	}
}

// CapacitySummary extends Summary with weekly and allocated hours.
func (c *Collaborator) CapacitySummary(allocated float64) CollaboratorSummary {
	s := c.Summary()
	weekly := c.HorasSemanais
	s.HorasSemanais = &weekly
	s.HorasAlocadas = &allocated
	return s
}

type CollaboratorFilter struct {
	Active *bool
	Role   CollaboratorRole
	Search string
}
