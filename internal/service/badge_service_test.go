package service

import (
	"context"
	"testing"

	"chirp/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// badgeRepo applies mutations to one in-memory user.
func badgeRepo(admin bool, target *models.User) *userRepoStub {
	repo := noopUserRepo()
	repo.isAdminFn = func(_ context.Context, _ string) (bool, error) { return admin, nil }
	repo.mutateBadgesFn = func(_ context.Context, handle string, fn func(*models.User) error) (*models.User, error) {
		if target == nil {
			return nil, models.NewNotFoundError("User", handle)
		}
		if err := fn(target); err != nil {
			return nil, err
		}
		return target, nil
	}
	return repo
}

func TestBadgeService_NonAdminRejectedBeforeLookup(t *testing.T) {
	t.Parallel()
	repo := badgeRepo(false, nil)
	repo.mutateBadgesFn = func(_ context.Context, _ string, _ func(*models.User) error) (*models.User, error) {
		t.Fatal("target must not be inspected")
		return nil, nil
	}
	svc := NewBadgeService(repo)

	_, err := svc.Grant(context.Background(), BadgeInput{AdminID: "u1", Handle: "ghost", Badge: "bogus"})
	assert.True(t, models.HasCode(err, models.CodeForbidden))

	_, err = svc.Revoke(context.Background(), BadgeInput{AdminID: "", Handle: "x", Badge: "verified"})
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestBadgeService_InvalidBadge(t *testing.T) {
	t.Parallel()
	svc := NewBadgeService(badgeRepo(true, &models.User{ID: "t"}))
	_, err := svc.Grant(context.Background(), BadgeInput{AdminID: "admin", Handle: "t", Badge: "gold"})
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestBadgeService_VerifiedLockstep(t *testing.T) {
	t.Parallel()
	target := &models.User{ID: "t"}
	svc := NewBadgeService(badgeRepo(true, target))
	ctx := context.Background()

	u, err := svc.Grant(ctx, BadgeInput{AdminID: "admin", Handle: "t", Badge: "Verified"})
	require.NoError(t, err)
	assert.True(t, u.Verified)
	assert.Equal(t, []string{"verified"}, []string(u.Badges))

	_, err = svc.Grant(ctx, BadgeInput{AdminID: "admin", Handle: "t", Badge: "verified"})
	assert.True(t, models.HasCode(err, models.CodeConflict))

	u, err = svc.Revoke(ctx, BadgeInput{AdminID: "admin", Handle: "t", Badge: "verified"})
	require.NoError(t, err)
	assert.False(t, u.Verified)
	assert.Empty(t, u.Badges)

	_, err = svc.Revoke(ctx, BadgeInput{AdminID: "admin", Handle: "t", Badge: "verified"})
	assert.True(t, models.HasCode(err, models.CodePreconditionAbsent))
}

func TestBadgeService_MissingTarget(t *testing.T) {
	t.Parallel()
	svc := NewBadgeService(badgeRepo(true, nil))
	_, err := svc.Grant(context.Background(), BadgeInput{AdminID: "admin", Handle: "ghost", Badge: "premium"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
