package service

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/celebrity-service/internal/repository"
)

const (
	maxBio      = 2000
	maxTags     = 10
	maxResponse = 30
)

type CelebritySvc struct {
	repo *repository.CelebrityRepo
	now  func() time.Time
}

func NewCelebritySvc(r *repository.CelebrityRepo) *CelebritySvc {
	return &CelebritySvc{repo: r, now: time.Now}
}

type CreateInput struct {
	UserID       string
	Name         string
	Category     string
	Tags         []string
	Bio          string
	AvatarURL    string
	Price        int64
	IsVIP        bool
	ResponseDays int
}

func (s *CelebritySvc) Create(ctx context.Context, in CreateInput) (*domain.Celebrity, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", domain.ErrInvalid)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalid)
	}
	days, err := responseDays(in.ResponseDays)
	if err != nil {
		return nil, err
	}
	tags, err := cleanTags(in.Tags)
	if err != nil {
		return nil, err
	}
	c := &domain.Celebrity{
		Name:         name,
		Category:     category(in.Category),
		Tags:         tags,
		Bio:          strings.TrimSpace(in.Bio),
		AvatarURL:    strings.TrimSpace(in.AvatarURL),
		Price:        in.Price,
		IsVIP:        in.IsVIP,
		Active:       true,
		ResponseDays: days,
	}
	if in.UserID != "" {
		uid := in.UserID
		c.UserID = &uid
		if _, err := s.repo.ByUser(ctx, uid); err == nil {
			return nil, fmt.Errorf("%w: user already has a celebrity profile", domain.ErrConflict)
		}
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// Get resolves a celebrity by id, falling back to slug.
func (s *CelebritySvc) Get(ctx context.Context, id, slug string) (*domain.Celebrity, error) {
	switch {
	case id != "":
		return s.repo.ByID(ctx, id)
	case slug != "":
		return s.repo.BySlug(ctx, strings.ToLower(slug))
	}
	return nil, fmt.Errorf("%w: id or slug is required", domain.ErrInvalid)
}

func (s *CelebritySvc) GetByUser(ctx context.Context, userID string) (*domain.Celebrity, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalid)
	}
	return s.repo.ByUser(ctx, userID)
}

func (s *CelebritySvc) List(ctx context.Context, page, size int32, f repository.Filter) ([]domain.Celebrity, int64, error) {
	return s.repo.List(ctx, page, size, f)
}

type ProfileInput struct {
	Bio          *string
	AvatarURL    *string
	Price        *int64
	Active       *bool
	ResponseDays *int
	Tags         []string
}

// UpdateProfile edits the celebrity owned by userID.
func (s *CelebritySvc) UpdateProfile(ctx context.Context, userID string, in ProfileInput) (*domain.Celebrity, error) {
	c, err := s.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if in.Bio != nil {
		bio := strings.TrimSpace(*in.Bio)
		if len([]rune(bio)) > maxBio {
			return nil, fmt.Errorf("%w: bio is limited to %d characters", domain.ErrInvalid, maxBio)
		}
		fields["bio"] = bio
	}
	if in.AvatarURL != nil {
		fields["avatar_url"] = strings.TrimSpace(*in.AvatarURL)
	}
	if in.Price != nil {
		if *in.Price <= 0 {
			return nil, fmt.Errorf("%w: price must be positive", domain.ErrInvalid)
		}
		fields["price"] = *in.Price
	}
	if in.Active != nil {
		fields["active"] = *in.Active
	}
	if in.ResponseDays != nil {
		days, err := responseDays(*in.ResponseDays)
		if err != nil {
			return nil, err
		}
		fields["response_days"] = days
	}
	if in.Tags != nil {
		tags, err := cleanTags(in.Tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = pq.StringArray(tags)
	}
	return s.repo.Update(ctx, c.ID, fields)
}

// SetTier is the admin switch for VIP pricing and visibility.
func (s *CelebritySvc) SetTier(ctx context.Context, id string, vip, active *bool) (*domain.Celebrity, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: id is required", domain.ErrInvalid)
	}
	if _, err := s.repo.ByID(ctx, id); err != nil {
		return nil, err
	}
	fields := map[string]any{}
	if vip != nil {
		fields["is_vip"] = *vip
	}
	if active != nil {
		fields["active"] = *active
	}
	return s.repo.Update(ctx, id, fields)
}

type ApplicationInput struct {
	UserID               string
	Name                 string
	Email                string
	Phone                string
	Category             string
	Bio                  string
	SocialHandle         string
	SocialLinks          map[string]string
	Price                int64
	ProfilePhotoURL      string
	IDDocumentURL        string
	VerificationVideoURL string
}

func (s *CelebritySvc) SubmitApplication(ctx context.Context, in ApplicationInput) (*domain.Application, error) {
	if in.UserID == "" {
		return nil, fmt.Errorf("%w: applicant is required", domain.ErrInvalid)
	}
	name := strings.TrimSpace(in.Name)
	bio := strings.TrimSpace(in.Bio)
	if name == "" || bio == "" {
		return nil, fmt.Errorf("%w: name and bio are required", domain.ErrInvalid)
	}
	if len([]rune(bio)) > maxBio {
		return nil, fmt.Errorf("%w: bio is limited to %d characters", domain.ErrInvalid, maxBio)
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(in.Email))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email", domain.ErrInvalid)
	}
	if in.Price <= 0 {
		return nil, fmt.Errorf("%w: requested price must be positive", domain.ErrInvalid)
	}
	if in.ProfilePhotoURL == "" || in.IDDocumentURL == "" || in.VerificationVideoURL == "" {
		return nil, fmt.Errorf("%w: profile photo, id document and verification video are required", domain.ErrInvalid)
	}
	if _, err := s.repo.ByUser(ctx, in.UserID); err == nil {
		return nil, fmt.Errorf("%w: already a celebrity", domain.ErrConflict)
	}
	links := map[string]any{}
	for k, v := range in.SocialLinks {
		if v = strings.TrimSpace(v); v != "" {
			links[strings.ToLower(strings.TrimSpace(k))] = v
		}
	}
	a := &domain.Application{
		UserID:               in.UserID,
		Name:                 name,
		Email:                strings.ToLower(addr.Address),
		Phone:                strings.TrimSpace(in.Phone),
		Category:             category(in.Category),
		Bio:                  bio,
		SocialHandle:         strings.TrimSpace(in.SocialHandle),
		SocialLinks:          links,
		Price:                in.Price,
		ProfilePhotoURL:      in.ProfilePhotoURL,
		IDDocumentURL:        in.IDDocumentURL,
		VerificationVideoURL: in.VerificationVideoURL,
		Status:               domain.ApplicationPending,
	}
	if err := s.repo.CreateApplication(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

func (s *CelebritySvc) ListApplications(ctx context.Context, page, size int32, status, userID string) ([]domain.Application, int64, error) {
	return s.repo.ListApplications(ctx, page, size, status, userID)
}

// ReviewApplication decides a pending application. Approval creates the
// celebrity record from the application in the same transaction.
func (s *CelebritySvc) ReviewApplication(ctx context.Context, id string, approve bool, note, reviewer string) (*domain.Application, *domain.Celebrity, error) {
	if id == "" {
		return nil, nil, fmt.Errorf("%w: id is required", domain.ErrInvalid)
	}
	note = strings.TrimSpace(note)
	if !approve && note == "" {
		return nil, nil, fmt.Errorf("%w: a rejection needs a note", domain.ErrInvalid)
	}
	return s.repo.ReviewApplication(ctx, id, func(a *domain.Application) (*domain.Celebrity, error) {
		now := s.now().UTC()
		a.ReviewerNote = note
		a.ReviewedBy = reviewer
		a.ReviewedAt = &now
		if !approve {
			a.Status = domain.ApplicationRejected
			return nil, nil
		}
		a.Status = domain.ApplicationApproved
		uid := a.UserID
		return &domain.Celebrity{
			UserID:       &uid,
			Name:         a.Name,
			Category:     a.Category,
			Tags:         []string{},
			Bio:          a.Bio,
			AvatarURL:    a.ProfilePhotoURL,
			Price:        a.Price,
			Active:       true,
			ResponseDays: domain.DefaultResponseDays,
		}, nil
	})
}

func (s *CelebritySvc) Stats(ctx context.Context) (domain.Stats, error) {
	return s.repo.Stats(ctx)
}

func category(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	if c == "" {
		return "general"
	}
	return c
}

func responseDays(d int) (int, error) {
	if d == 0 {
		return domain.DefaultResponseDays, nil
	}
	if d < 1 || d > maxResponse {
		return 0, fmt.Errorf("%w: response days must be 1-%d", domain.ErrInvalid, maxResponse)
	}
	return d, nil
}

func cleanTags(in []string) ([]string, error) {
	out := make([]string, 0, len(in))
	seen := map[string]bool{}
	for _, t := range in {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	if len(out) > maxTags {
		return nil, fmt.Errorf("%w: at most %d tags", domain.ErrInvalid, maxTags)
	}
	return out, nil
}
