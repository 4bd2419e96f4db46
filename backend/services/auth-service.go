package services

import (
	"context"
	"time"

	"github.com/Saulo24/API-FULL-MESA-TECH/backend/logging"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/models"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/repositories"
	"github.com/Saulo24/API-FULL-MESA-TECH/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type AuthService struct {
	users  repositories.UserRepository
	tokens *utils.TokenManager
	now    func() time.Time
}

func NewAuthService(store *repositories.Store, tokens *utils.TokenManager) *AuthService {
	return &AuthService{users: store.Users, tokens: tokens, now: time.Now}
}

func (s *AuthService) issue(u *models.User) (models.AuthResult, error) {
	token, err := s.tokens.GenerateToken(u.ID.Hex(), string(u.Role))
	if err != nil {
		return models.AuthResult{}, err
	}
	return models.AuthResult{Token: token, User: u}, nil
}

func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (models.AuthResult, error) {
	if err := models.Validate(&req); err != nil {
		return models.AuthResult{}, err
	}

	hashed, err := utils.HashPassword(req.Senha)
	if err != nil {
		return models.AuthResult{}, err
	}
	now := s.now()
	user := &models.User{
		Nome:      req.Nome,
		Email:     req.Email,
		Senha:     hashed,
		Ativo:     true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	user.Normalize()
	if err := models.Validate(user); err != nil {
		return models.AuthResult{}, err
	}

	if err := s.users.Insert(ctx, user); err != nil {
		return models.AuthResult{}, err
	}
	logging.Logger.Infof("Event ID: USER_REGISTERED, Description: User %s registered", user.ID.Hex())
	return s.issue(user)
}

// Login checks the credentials and records the access time. Unknown emails,
// wrong passwords and inactive accounts all yield models.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (models.AuthResult, error) {
	if err := models.Validate(&req); err != nil {
		return models.AuthResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if models.IsNotFound(err) {
		return models.AuthResult{}, models.ErrInvalidCredentials
	}
	if err != nil {
		return models.AuthResult{}, err
	}
	if !user.Ativo || !utils.CheckPassword(user.Senha, req.Senha) {
		logging.Logger.Warnf("Event ID: LOGIN_FAILED, Description: Failed login for user %s", user.ID.Hex())
		return models.AuthResult{}, models.ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TouchLastAccess(ctx, user.ID, now); err != nil {
		return models.AuthResult{}, err
	}
	user.UltimoAcesso = &now
	return s.issue(user)
}

// Me returns the account behind an authenticated request.
func (s *AuthService) Me(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if models.IsNotFound(err) {
		return nil, models.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.Ativo {
		return nil, models.ErrUnauthorized
	}
	return user, nil
}
