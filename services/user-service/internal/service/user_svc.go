package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kiaorakahi/marketplace/pkg/auth"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/repository"
)

type UserSvc struct{ repo *repository.UserRepo }

func NewUserSvc(r *repository.UserRepo) *UserSvc { return &UserSvc{repo: r} }

// SyncFromAuth is called after register and login to mirror the account
// into a profile. id is the auth-service user id and becomes the profile id.
func (s *UserSvc) SyncFromAuth(ctx context.Context, id, email, name, role string) (*domain.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	role = strings.ToUpper(role)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", domain.ErrInvalid)
	}
	if role == "" {
		role = auth.RoleFan
	}
	if !auth.ValidRole(role) {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalid, role)
	}
	u := &domain.User{ID: id, Email: email, Name: strings.TrimSpace(name), Role: role, Active: true}
	if err := s.repo.UpsertByEmail(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *UserSvc) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return s.repo.ByID(ctx, id)
}

func (s *UserSvc) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.repo.ByEmail(ctx, strings.ToLower(email))
}

// Update edits the self-service fields. Empty values keep what is stored.
func (s *UserSvc) Update(ctx context.Context, id, name, phone, avatar string) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalid)
	}
	fields := map[string]any{}
	if v := strings.TrimSpace(name); v != "" {
		fields["name"] = v
	}
	if v := strings.TrimSpace(phone); v != "" {
		fields["phone"] = v
	}
	if v := strings.TrimSpace(avatar); v != "" {
		fields["avatar_url"] = v
	}
	return s.repo.UpdateFields(ctx, id, fields)
}

func (s *UserSvc) List(ctx context.Context, page, size int32, query, role string) ([]domain.User, int64, error) {
	return s.repo.List(ctx, page, size, query, role)
}

// AdminUpdate changes role and/or the active flag of a profile.
func (s *UserSvc) AdminUpdate(ctx context.Context, id, role string, active *bool) (*domain.User, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: missing id", domain.ErrInvalid)
	}
	fields := map[string]any{}
	if role != "" {
		role = strings.ToUpper(role)
		if !auth.ValidRole(role) {
			return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalid, role)
		}
		fields["role"] = role
	}
	if active != nil {
		fields["active"] = *active
	}
	if _, err := s.repo.ByID(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.UpdateFields(ctx, id, fields)
}

func (s *UserSvc) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

// Settings returns every known key, stored values over defaults.
func (s *UserSvc) Settings(ctx context.Context) (map[string]string, error) {
	stored, err := s.repo.Settings(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(domain.DefaultSettings))
	for k, v := range domain.DefaultSettings {
		out[k] = v
	}
	for k, v := range stored {
		if _, known := out[k]; known {
			out[k] = v
		}
	}
	return out, nil
}

// UpdateSettings validates every pair before writing any of them.
func (s *UserSvc) UpdateSettings(ctx context.Context, values map[string]string, by string) (map[string]string, error) {
	if len(values) == 0 {
		return nil, fmt.Errorf("%w: no settings given", domain.ErrInvalid)
	}
	clean := make(map[string]string, len(values))
	for k, v := range values {
		v = strings.TrimSpace(v)
		if err := domain.ValidateSetting(k, v); err != nil {
			return nil, err
		}
		clean[k] = v
	}
	if err := s.repo.SaveSettings(ctx, clean, by); err != nil {
		return nil, err
	}
	return s.Settings(ctx)
}
