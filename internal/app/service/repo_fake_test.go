package service

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"system_sentinel/internal/common"
	"system_sentinel/internal/common/security"
	"system_sentinel/internal/domain/model"
)

// fakeUserRepo is an in-memory UserRepository. It mimics the storage-level
// uniqueness constraints so the check-then-act backstop is exercised too.
type fakeUserRepo struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[int64]model.User{}}
}

func (r *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	r.nextID++
	user.ID = r.nextID
	user.CreatedAt = time.Now().UTC()
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) FindByID(ctx context.Context, id int64) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *fakeUserRepo) List(ctx context.Context, skip, limit int) ([]model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	ids := make([]int64, 0, len(r.users))
	for id := range r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	users := []model.User{}
	for i, id := range ids {
		if i < skip {
			continue
		}
		if len(users) >= limit {
			break
		}
		users = append(users, r.users[id])
	}
	return users, nil
}

func (r *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return common.ErrNotFound
	}
	for id, u := range r.users {
		if id == user.ID {
			continue
		}
		if u.Email == user.Email || u.Username == user.Username {
			return fmt.Errorf("user with given username or email already exists: %w", common.ErrConflict)
		}
	}
	r.users[user.ID] = *user
	return nil
}

func (r *fakeUserRepo) Delete(ctx context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

func mustCreateUser(t *testing.T, repo *fakeUserRepo, email, username, password string, superuser bool) *model.User {
	t.Helper()
	hashed, err := security.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	user := &model.User{
		Email:          email,
		Username:       username,
		HashedPassword: hashed,
		IsActive:       true,
		IsSuperuser:    superuser,
	}
	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("fake repo Create error: %v", err)
	}
	return user
}
