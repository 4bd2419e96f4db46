package models

// AssignmentRequest is the body of POST /api/projects/{id}/collaborators.
type AssignmentRequest struct {
	ColaboradorID string  `json:"colaboradorId" validate:"required"`
	Funcao        string  `json:"funcao"`
	HorasAlocadas float64 `json:"horasAlocadas" validate:"min=0"`
}

type CommentRequest struct {
	Texto string `json:"texto" validate:"required"`
}

type RegisterRequest struct {
	Nome  string `json:"nome" validate:"required,max=100"`
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required,min=6"`
}

type LoginRequest struct {
	Email string `json:"email" validate:"required,email"`
	Senha string `json:"senha" validate:"required"`
}

// AuthResult is returned by register and login.
type AuthResult struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
