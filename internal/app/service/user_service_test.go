package service

import (
	"context"
	"testing"

	"system_sentinel/internal/common"
	"system_sentinel/internal/common/security"
	"system_sentinel/internal/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func boolPtr(b bool) *bool { return &b }

func TestCreate_Defaults(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	user, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "a@x.com",
		Username: "alice",
		Password: "pw1",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.True(t, user.IsActive)
	assert.False(t, user.IsSuperuser)
	assert.False(t, user.CreatedAt.IsZero())
	assert.Nil(t, user.UpdatedAt)
	assert.NotEqual(t, "pw1", user.HashedPassword)
	assert.True(t, security.CheckPasswordHash("pw1", user.HashedPassword))
}

func TestCreate_MissingFields(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{Email: "a@x.com"})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestCreate_InvalidEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email:    "not-an-email",
		Username: "alice",
		Password: "pw1",
	})
	assert.ErrorIs(t, err, common.ErrBadRequest)
}

func TestCreate_DuplicateEmail(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	a, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "e@x.com", Username: "alice", Password: "pw1",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserRequest{
		Email: "e@x.com", Username: "bob", Password: "pw2",
	})
	require.ErrorIs(t, err, ErrEmailTaken)
	assert.ErrorIs(t, err, common.ErrConflict)

	// The failed registration must not have touched A's record.
	stored, err := repo.FindByID(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", stored.Username)
	assert.Equal(t, "e@x.com", stored.Email)
}

func TestCreate_DuplicateUsername(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Email: "a@x.com", Username: "alice", Password: "pw1",
	})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateUserRequest{
		Email: "b@x.com", Username: "alice", Password: "pw2",
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
	assert.ErrorIs(t, err, common.ErrConflict)
}

func TestUpdate_AppliesFieldsAndTimestamps(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	alice := mustCreateUser(t, repo, "a@x.com", "alice", "pw1", false)

	updated, err := svc.Update(context.Background(), alice.ID, model.UserPatch{
		FullName: strPtr("Alice Example"),
	})
	require.NoError(t, err)

	require.NotNil(t, updated.FullName)
	assert.Equal(t, "Alice Example", *updated.FullName)
	require.NotNil(t, updated.UpdatedAt, "updated_at must be set on mutation")
	assert.Equal(t, alice.CreatedAt, updated.CreatedAt, "created_at is immutable")
	assert.Equal(t, alice.HashedPassword, updated.HashedPassword, "password unchanged without a patch")
}

func TestUpdate_RehashesPassword(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	alice := mustCreateUser(t, repo, "a@x.com", "alice", "pw1", false)

	updated, err := svc.Update(context.Background(), alice.ID, model.UserPatch{
		Password: strPtr("pw2"),
	})
	require.NoError(t, err)

	assert.NotEqual(t, "pw2", updated.HashedPassword)
	assert.True(t, security.CheckPasswordHash("pw2", updated.HashedPassword))
	assert.False(t, security.CheckPasswordHash("pw1", updated.HashedPassword))
}

func TestUpdate_EmailConflictExcludesSelf(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	alice := mustCreateUser(t, repo, "a@x.com", "alice", "pw1", false)
	mustCreateUser(t, repo, "b@x.com", "bob", "pw2", false)

	// Re-submitting your own current email is not a conflict.
	_, err := svc.Update(context.Background(), alice.ID, model.UserPatch{
		Email: strPtr("a@x.com"),
	})
	require.NoError(t, err)

	// Taking bob's email is.
	_, err = svc.Update(context.Background(), alice.ID, model.UserPatch{
		Email: strPtr("b@x.com"),
	})
	require.ErrorIs(t, err, ErrEmailTaken)

	// The failed update must leave alice unchanged.
	stored, err := repo.FindByID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", stored.Email)
}

func TestUpdate_UsernameConflict(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	alice := mustCreateUser(t, repo, "a@x.com", "alice", "pw1", false)
	mustCreateUser(t, repo, "b@x.com", "bob", "pw2", false)

	_, err := svc.Update(context.Background(), alice.ID, model.UserPatch{
		Username: strPtr("bob"),
	})
	require.ErrorIs(t, err, ErrUsernameTaken)
}

func TestUpdate_CannotElevate(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	alice := mustCreateUser(t, repo, "a@x.com", "alice", "pw1", false)

	updated, err := svc.Update(context.Background(), alice.ID, model.UserPatch{
		FullName: strPtr("Alice"),
		IsActive: boolPtr(false),
	})
	require.NoError(t, err)

	assert.False(t, updated.IsActive, "is_active is patchable")
	assert.False(t, updated.IsSuperuser, "is_superuser must never change through a patch")
}

func TestUpdate_NotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)

	_, err := svc.Update(context.Background(), 42, model.UserPatch{FullName: strPtr("x")})
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestList_Pagination(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	mustCreateUser(t, repo, "a@x.com", "alice", "pw", false)
	mustCreateUser(t, repo, "b@x.com", "bob", "pw", false)
	mustCreateUser(t, repo, "c@x.com", "carol", "pw", false)

	page, err := svc.List(context.Background(), 1, 1)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "bob", page[0].Username)

	all, err := svc.List(context.Background(), -5, 0) // defaults applied
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestDelete_SelfDeletionRejected(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	admin := mustCreateUser(t, repo, "root@x.com", "admin", "pw", true)

	err := svc.Delete(context.Background(), admin, admin.ID)
	require.ErrorIs(t, err, common.ErrSelfDeletion)

	_, err = repo.FindByID(context.Background(), admin.ID)
	assert.NoError(t, err, "rejected self-deletion must not remove the record")
}

func TestDelete_NotFound(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	admin := mustCreateUser(t, repo, "root@x.com", "admin", "pw", true)

	err := svc.Delete(context.Background(), admin, 999)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestDelete_MissingActorFailsClosed(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	alice := mustCreateUser(t, repo, "a@x.com", "alice", "pw", false)

	err := svc.Delete(context.Background(), nil, alice.ID)
	assert.ErrorIs(t, err, common.ErrForbidden)
}

func TestDelete_Success(t *testing.T) {
	t.Parallel()

	repo := newFakeUserRepo()
	svc := NewUserService(repo, nil)
	admin := mustCreateUser(t, repo, "root@x.com", "admin", "pw", true)
	alice := mustCreateUser(t, repo, "a@x.com", "alice", "pw", false)

	require.NoError(t, svc.Delete(context.Background(), admin, alice.ID))

	_, err := repo.FindByID(context.Background(), alice.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
