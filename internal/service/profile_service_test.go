package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"meetmii/internal/models"
	"meetmii/internal/repository"
)

// fakeProfileRepository keeps profiles in memory keyed by user id.
type fakeProfileRepository struct {
	byUserID map[uint]*models.Profile
}

func newFakeProfileRepository() *fakeProfileRepository {
	return &fakeProfileRepository{byUserID: make(map[uint]*models.Profile)}
}

func (f *fakeProfileRepository) Save(ctx context.Context, profile *models.Profile) error {
	stored := *profile
	f.byUserID[profile.UserID] = &stored
	return nil
}

func (f *fakeProfileRepository) FindByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	if p, ok := f.byUserID[userID]; ok {
		copied := *p
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfileRepository) FindByUsername(ctx context.Context, username string) (*models.Profile, error) {
	for _, p := range f.byUserID {
		if p.Username == username {
			copied := *p
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeProfileRepository) HealthCheck(ctx context.Context) error { return nil }

type recordingNotifier struct {
	published []string
}

func (n *recordingNotifier) PublishScan(ctx context.Context, username string) {
	n.published = append(n.published, username)
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestProfileServiceUpsertCreatesThenPatches(t *testing.T) {
	repo := newFakeProfileRepository()
	svc := NewProfileService(repo, nil, zap.NewNop())
	ctx := context.Background()

	created, err := svc.Upsert(ctx, 7, "ana", &ProfileUpdateRequest{
		DisplayName: strPtr("Ana"),
		Instagram:   strPtr("ana.gram"),
	})
	require.NoError(t, err)
	assert.Equal(t, "ana", created.Username)
	assert.Equal(t, "Ana", created.DisplayName)
	assert.Equal(t, "ana.gram", created.Instagram)

	// A later partial update must not clear fields it does not mention.
	updated, err := svc.Upsert(ctx, 7, "ana", &ProfileUpdateRequest{
		Bio:      strPtr("networking fan"),
		LinkedIn: strPtr("in/ana"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Ana", updated.DisplayName)
	assert.Equal(t, "ana.gram", updated.Instagram)
	assert.Equal(t, "networking fan", updated.Bio)
	assert.Equal(t, "in/ana", updated.LinkedIn)
	assert.False(t, updated.UpdatedAt.IsZero())
}

func TestProfileServiceProfessionalModeHidesPersonalHandles(t *testing.T) {
	repo := newFakeProfileRepository()
	svc := NewProfileService(repo, nil, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, 7, "ana", &ProfileUpdateRequest{
		DisplayName:        strPtr("Ana"),
		Instagram:          strPtr("ana.gram"),
		Snapchat:           strPtr("ana.snap"),
		Twitter:            strPtr("ana_tw"),
		TikTok:             strPtr("ana.tok"),
		LinkedIn:           strPtr("in/ana"),
		ContactEmail:       strPtr("ana@example.com"),
		Website:            strPtr("https://ana.dev"),
		IsProfessionalMode: boolPtr(true),
	})
	require.NoError(t, err)

	view, err := svc.GetPublic(ctx, "ana")
	require.NoError(t, err)

	assert.True(t, view.IsProfessionalMode)
	assert.Empty(t, view.Instagram)
	assert.Empty(t, view.Snapchat)
	assert.Empty(t, view.Twitter)
	assert.Empty(t, view.TikTok)
	assert.Equal(t, "in/ana", view.LinkedIn)
	assert.Equal(t, "ana@example.com", view.ContactEmail)
	assert.Equal(t, "https://ana.dev", view.Website)

	// Toggling professional mode off restores the handles.
	_, err = svc.Upsert(ctx, 7, "ana", &ProfileUpdateRequest{IsProfessionalMode: boolPtr(false)})
	require.NoError(t, err)

	view, err = svc.GetPublic(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana.gram", view.Instagram)
	assert.Equal(t, "ana.snap", view.Snapchat)
}

func TestProfileServiceGetPublicPublishesScan(t *testing.T) {
	repo := newFakeProfileRepository()
	notifier := &recordingNotifier{}
	svc := NewProfileService(repo, notifier, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Upsert(ctx, 7, "ana", &ProfileUpdateRequest{DisplayName: strPtr("Ana")})
	require.NoError(t, err)

	_, err = svc.GetPublic(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, []string{"ana"}, notifier.published)

	_, err = svc.GetPublic(ctx, "ghost")
	assert.ErrorIs(t, err, ErrProfileNotFound)
	assert.Len(t, notifier.published, 1, "a failed lookup must not publish a scan")
}
