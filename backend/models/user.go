package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is an account of the web application. Only the authentication
// scaffolding uses it; comment authors reference users.
type User struct {
	ID           primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Nome         string             `json:"nome" bson:"nome" validate:"required,max=100"`
	Email        string             `json:"email" bson:"email" validate:"required,email"`
	Senha        string             `json:"-" bson:"senha"`
	Role         UserRole           `json:"role" bson:"role" validate:"enum"`
	Avatar       *string            `json:"avatar" bson:"avatar"`
	Ativo        bool               `json:"ativo" bson:"ativo"`
	UltimoAcesso *time.Time         `json:"ultimoAcesso" bson:"ultimoAcesso"`
	CreatedAt    time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt    time.Time          `json:"updatedAt" bson:"updatedAt"`
}

func (u *User) Normalize() {
	u.Nome = strings.TrimSpace(u.Nome)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	if u.Role == "" {
		u.Role = UserCollaborator
	}
}

type UserSummary struct {
	ID    primitive.ObjectID `json:"_id"`
	Nome  string             `json:"nome,omitempty"`
	Email string             `json:"email,omitempty"`
}

func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Nome: u.Nome, Email: u.Email}
}
