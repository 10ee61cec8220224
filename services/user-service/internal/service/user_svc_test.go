package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kiaorakahi/marketplace/pkg/db/dbtest"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/domain"
	"github.com/kiaorakahi/marketplace/services/user-service/internal/repository"
)

func newSvc(t *testing.T) *UserSvc {
	t.Helper()
	repo := repository.NewUserRepo(dbtest.Open(t))
	require.NoError(t, repo.Migrate())
	return NewUserSvc(repo)
}

func TestSyncFromAuthUpserts(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	u, err := s.SyncFromAuth(ctx, "u-1", "Mere@Example.com", "Mere", "fan")
	require.NoError(t, err)
	assert.Equal(t, "u-1", u.ID)
	assert.Equal(t, "mere@example.com", u.Email)
	assert.Equal(t, "FAN", u.Role)

	_, err = s.Update(ctx, "u-1", "", "+64 21 555 0101", "")
	require.NoError(t, err)

	u, err = s.SyncFromAuth(ctx, "u-1", "mere@example.com", "", "CELEBRITY")
	require.NoError(t, err)
	assert.Equal(t, "CELEBRITY", u.Role)

	got, err := s.GetByID(ctx, "u-1")
	require.NoError(t, err)
	assert.Equal(t, "Mere", got.Name)
	assert.Equal(t, "+64 21 555 0101", got.Phone)
	assert.Equal(t, "CELEBRITY", got.Role)

	_, err = s.SyncFromAuth(ctx, "u-2", "x@example.com", "X", "ROOT")
	assert.ErrorIs(t, err, domain.ErrInvalid)
}

func TestListSearchesCaseInsensitively(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()
	for _, in := range []struct{ id, email, name, role string }{
		{"a", "tama@example.com", "Tama Nikora", "FAN"},
		{"b", "aroha@example.com", "Aroha Smith", "CELEBRITY"},
		{"c", "boss@example.com", "Admin", "ADMIN"},
	} {
		_, err := s.SyncFromAuth(ctx, in.id, in.email, in.name, in.role)
		require.NoError(t, err)
	}

	users, total, err := s.List(ctx, 0, 10, "NIKORA", "")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "a", users[0].ID)

	_, total, err = s.List(ctx, 0, 10, "", "celebrity")
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	_, total, err = s.List(ctx, 0, 10, "example.com", "")
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
}

func TestAdminUpdateAndStats(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()
	_, err := s.SyncFromAuth(ctx, "a", "a@example.com", "A", "FAN")
	require.NoError(t, err)
	_, err = s.SyncFromAuth(ctx, "b", "b@example.com", "B", "FAN")
	require.NoError(t, err)

	off := false
	u, err := s.AdminUpdate(ctx, "b", "celebrity", &off)
	require.NoError(t, err)
	assert.Equal(t, "CELEBRITY", u.Role)
	assert.False(t, u.Active)

	_, err = s.AdminUpdate(ctx, "missing", "FAN", nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = s.AdminUpdate(ctx, "a", "OWNER", nil)
	assert.ErrorIs(t, err, domain.ErrInvalid)

	st, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, st.Total)
	assert.EqualValues(t, 1, st.Active)
	assert.EqualValues(t, 1, st.ByRole["FAN"])
	assert.EqualValues(t, 1, st.ByRole["CELEBRITY"])
}

func TestSettingsFallBackToDefaults(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultSettings, got)

	got, err = s.UpdateSettings(ctx, map[string]string{
		domain.SettingBookingsEnabled: "false",
		domain.SettingAnnouncement:    "  Back soon  ",
	}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "false", got[domain.SettingBookingsEnabled])
	assert.Equal(t, "Back soon", got[domain.SettingAnnouncement])
	assert.Equal(t, "Kia Ora Kahi", got[domain.SettingPlatformName])

	got, err = s.UpdateSettings(ctx, map[string]string{domain.SettingBookingsEnabled: "true"}, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "true", got[domain.SettingBookingsEnabled])
}

func TestUpdateSettingsRejectsBadInputAtomically(t *testing.T) {
	s := newSvc(t)
	ctx := context.Background()
	bad := []map[string]string{
		{},
		{"colour_scheme": "dark"},
		{domain.SettingApplicationsOpen: "maybe"},
		{domain.SettingSupportEmail: "not-an-email"},
		{domain.SettingPlatformName: ""},
		{domain.SettingAnnouncement: "ok", domain.SettingBookingsEnabled: "sometimes"},
	}
	for _, in := range bad {
		_, err := s.UpdateSettings(ctx, in, "admin@example.com")
		assert.ErrorIs(t, err, domain.ErrInvalid, in)
	}
	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "", got[domain.SettingAnnouncement])
}
