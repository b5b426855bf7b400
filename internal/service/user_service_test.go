package service

import (
	"context"
	"testing"
	"time"

	"backend/internal/apperror"
	"backend/internal/model"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	users  map[uuid.UUID]*model.User
	tokens map[string]*model.RefreshToken
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users:  make(map[uuid.UUID]*model.User),
		tokens: make(map[string]*model.RefreshToken),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *model.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, gorm.ErrRecordNotFound
	}
	u, ok := r.users[parsed]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *u
	return &copied, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			copied := *u
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeUserRepo) List(_ context.Context, page, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (r *fakeUserRepo) Update(_ context.Context, user *model.User) error {
	copied := *user
	r.users[user.ID] = &copied
	return nil
}

func (r *fakeUserRepo) Delete(_ context.Context, id string) error {
	parsed, err := uuid.Parse(id)
	if err != nil {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, parsed)
	return nil
}

func (r *fakeUserRepo) StoreRefreshToken(_ context.Context, token *model.RefreshToken) error {
	copied := *token
	r.tokens[token.Token] = &copied
	return nil
}

func (r *fakeUserRepo) GetRefreshToken(_ context.Context, token string) (*model.RefreshToken, error) {
	t, ok := r.tokens[token]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *t
	return &copied, nil
}

func (r *fakeUserRepo) DeleteRefreshToken(_ context.Context, token string) error {
	delete(r.tokens, token)
	return nil
}

func seedUser(t *testing.T, repo *fakeUserRepo, email, password, role string) uuid.UUID {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	user := model.User{
		Username: email,
		Email:    email,
		Password: string(hashed),
		Role:     role,
	}
	if err := repo.Create(context.Background(), &user); err != nil {
		t.Fatal(err)
	}
	return user.ID
}

func TestCreateUser(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)

	resp, err := service.CreateUser(context.Background(), CreateUserRequest{
		Username: "shopadmin",
		Email:    "admin@shop.com",
		Password: "secret123",
		Role:     model.RoleAdmin,
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if resp.Role != model.RoleAdmin {
		t.Errorf("role = %s, want admin", resp.Role)
	}

	stored := repo.users[resp.ID]
	if stored.Password == "secret123" {
		t.Error("password must be stored hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestCreateUserDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)
	seedUser(t, repo, "taken@shop.com", "pw", model.RoleStaff)

	tests := []struct {
		name string
		req  CreateUserRequest
	}{
		{
			name: "duplicate username",
			req:  CreateUserRequest{Username: "taken@shop.com", Email: "other@shop.com", Password: "secret", Role: model.RoleStaff},
		},
		{
			name: "duplicate email",
			req:  CreateUserRequest{Username: "fresh", Email: "taken@shop.com", Password: "secret", Role: model.RoleStaff},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.CreateUser(context.Background(), tt.req)
			if apperror.CodeOf(err) != apperror.CodeConflict {
				t.Errorf("code = %s, want CONFLICT", apperror.CodeOf(err))
			}
		})
	}
}

func TestCreateUserInvalidRole(t *testing.T) {
	service := NewUserService(newFakeUserRepo())

	_, err := service.CreateUser(context.Background(), CreateUserRequest{
		Username: "u", Email: "u@shop.com", Password: "secret", Role: "superuser",
	})
	if apperror.CodeOf(err) != apperror.CodeValidation {
		t.Fatalf("code = %s, want VALIDATION", apperror.CodeOf(err))
	}
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)
	seedUser(t, repo, "staff@shop.com", "correct-horse", model.RoleStaff)

	t.Run("success issues token pair", func(t *testing.T) {
		tokens, err := service.Login(context.Background(), LoginUserRequest{
			Email: "staff@shop.com", Password: "correct-horse",
		})
		if err != nil {
			t.Fatalf("Login: %v", err)
		}
		if tokens.AccessToken == "" || tokens.RefreshToken == "" {
			t.Error("expected both tokens")
		}
		if _, ok := repo.tokens[tokens.RefreshToken]; !ok {
			t.Error("refresh token not stored")
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(context.Background(), LoginUserRequest{
			Email: "staff@shop.com", Password: "wrong",
		})
		if apperror.CodeOf(err) != apperror.CodeUnauthorized {
			t.Errorf("code = %s, want UNAUTHORIZED", apperror.CodeOf(err))
		}
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := service.Login(context.Background(), LoginUserRequest{
			Email: "nobody@shop.com", Password: "whatever",
		})
		if apperror.CodeOf(err) != apperror.CodeUnauthorized {
			t.Errorf("code = %s, want UNAUTHORIZED", apperror.CodeOf(err))
		}
	})
}

func TestRefreshRotatesToken(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)
	seedUser(t, repo, "manager@shop.com", "pw123456", model.RoleManager)

	tokens, err := service.Login(context.Background(), LoginUserRequest{
		Email: "manager@shop.com", Password: "pw123456",
	})
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	rotated, err := service.Refresh(context.Background(), tokens.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if rotated.RefreshToken == tokens.RefreshToken {
		t.Error("refresh token should rotate")
	}

	// the consumed token is gone; replaying it fails
	_, err = service.Refresh(context.Background(), tokens.RefreshToken)
	if apperror.CodeOf(err) != apperror.CodeUnauthorized {
		t.Errorf("code = %s, want UNAUTHORIZED on replay", apperror.CodeOf(err))
	}
}

func TestRefreshExpiredToken(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)
	userID := seedUser(t, repo, "old@shop.com", "pw123456", model.RoleStaff)

	repo.tokens["stale"] = &model.RefreshToken{
		UserID:    userID,
		Token:     "stale",
		ExpiresAt: time.Now().Add(-time.Hour),
	}

	_, err := service.Refresh(context.Background(), "stale")
	if apperror.CodeOf(err) != apperror.CodeUnauthorized {
		t.Fatalf("code = %s, want UNAUTHORIZED", apperror.CodeOf(err))
	}
	if _, ok := repo.tokens["stale"]; ok {
		t.Error("expired token should be deleted")
	}
}

func TestLogout(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewUserService(repo)
	userID := seedUser(t, repo, "bye@shop.com", "pw123456", model.RoleStaff)

	repo.tokens["live"] = &model.RefreshToken{
		UserID:    userID,
		Token:     "live",
		ExpiresAt: time.Now().Add(time.Hour),
	}

	if err := service.Logout(context.Background(), "live"); err != nil {
		t.Fatalf("Logout: %v", err)
	}
	if _, ok := repo.tokens["live"]; ok {
		t.Error("refresh token should be deleted")
	}

	// logging out without a token is a no-op
	if err := service.Logout(context.Background(), ""); err != nil {
		t.Errorf("Logout with empty token: %v", err)
	}
}
