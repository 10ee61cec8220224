package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/mail"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/auth-service/internal/repository"
)

const (
	accessTTL   = 60 * time.Minute
	refreshTTL  = 720 * time.Hour
	minPassword = 8
)

type AuthSvc struct {
	repo *repository.UserRepo
	cost int
}

func NewAuthSvc(r *repository.UserRepo) *AuthSvc {
	return &AuthSvc{repo: r, cost: bcrypt.DefaultCost}
}

type Tokens struct {
	Access  string
	Refresh string
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return "", fmt.Errorf("%w: email is not valid", domain.ErrInvalid)
	}
	return email, nil
}

// Register creates a FAN account. Other roles are granted by an admin or by
// an approved celebrity application.
func (s *AuthSvc) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	return s.create(ctx, email, password, name, domain.RoleFan)
}

func (s *AuthSvc) create(ctx context.Context, email, password, name string, role domain.Role) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	if len(password) < minPassword {
		return nil, fmt.Errorf("%w: password must be at least %d characters", domain.ErrInvalid, minPassword)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, err
	}
	u := &domain.User{Email: email, PasswordHash: string(hash), Name: name, Role: role, Active: true}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// EnsureAdmin creates the bootstrap admin account if the email is free.
func (s *AuthSvc) EnsureAdmin(ctx context.Context, email, password, name string) error {
	_, err := s.create(ctx, email, password, name, domain.RoleAdmin)
	if errors.Is(err, domain.ErrEmailTaken) {
		return nil
	}
	if err == nil {
		log.Printf("[auth] bootstrap admin %s created", email)
	}
	return err
}

func (s *AuthSvc) Login(ctx context.Context, email, password string) (*domain.User, Tokens, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	u, err := s.repo.ByEmail(ctx, email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, Tokens{}, domain.ErrBadCredentials
	}
	if err != nil {
		return nil, Tokens{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, Tokens{}, domain.ErrBadCredentials
	}
	if !u.Active {
		return nil, Tokens{}, domain.ErrDisabled
	}
	t, err := s.issue(u)
	return u, t, err
}

// Refresh trades a refresh token for a new pair, re-reading role and active
// flag so changes made by an admin take effect.
func (s *AuthSvc) Refresh(ctx context.Context, refreshToken string) (*domain.User, Tokens, error) {
	claims, err := auth.ParseValidate(refreshToken)
	if err != nil {
		return nil, Tokens{}, domain.ErrBadCredentials
	}
	u, err := s.repo.ByID(ctx, claims.Sub)
	if err != nil {
		return nil, Tokens{}, err
	}
	if !u.Active {
		return nil, Tokens{}, domain.ErrDisabled
	}
	t, err := s.issue(u)
	return u, t, err
}

func (s *AuthSvc) issue(u *domain.User) (Tokens, error) {
	access, err := auth.CreateAccessToken(u.ID, string(u.Role), u.Email, u.Name, accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := auth.CreateAccessToken(u.ID, string(u.Role), u.Email, u.Name, refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{Access: access, Refresh: refresh}, nil
}

// Validate checks the token and that the account is still active.
func (s *AuthSvc) Validate(ctx context.Context, token string) (*domain.User, bool) {
	claims, err := auth.ParseValidate(token)
	if err != nil {
		return nil, false
	}
	u, err := s.repo.ByID(ctx, claims.Sub)
	if err != nil || !u.Active {
		return nil, false
	}
	return u, true
}

// UpdateAccount changes role and/or active flag. Empty role and nil active
// leave the field alone.
func (s *AuthSvc) UpdateAccount(ctx context.Context, id, role string, active *bool) (*domain.User, error) {
	if role != "" && !auth.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalid, role)
	}
	u, err := s.repo.ByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role != "" {
		u.Role = domain.Role(role)
	}
	if active != nil {
		u.Active = *active
	}
	if err := s.repo.Save(ctx, u); err != nil {
		return nil, err
	}
	log.Printf("[auth] account %s role=%s active=%t", u.ID, u.Role, u.Active)
	return u, nil
}
