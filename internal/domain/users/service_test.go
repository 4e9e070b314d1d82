package users

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"petclinic/internal/domain/clinic"
	"petclinic/internal/platform/logger"
)

type fakeRepo struct {
	byName  map[string]User
	findErr error
	saveErr error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byName: map[string]User{}}
}

func (r *fakeRepo) FindByUsername(_ context.Context, username string) (User, error) {
	if r.findErr != nil {
		return User{}, r.findErr
	}
	u, ok := r.byName[username]
	if !ok {
		return User{}, clinic.ErrNotFound
	}
	return u, nil
}

func (r *fakeRepo) Save(_ context.Context, u *User) error {
	if r.saveErr != nil {
		return r.saveErr
	}
	r.byName[u.Username] = *u
	return nil
}

type passthroughTx struct{}

func (passthroughTx) ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func (passthroughTx) ReadWrite(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func newTestService(repo Repository) *Service {
	s := NewService(repo, passthroughTx{}, logger.NewNop())
	s.cost = bcrypt.MinCost
	return s
}

func TestSaveUser_HashesPasswordAndNormalizesRoles(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	u := &User{
		Username: " vet1 ",
		Password: "secret",
		Enabled:  true,
		Roles:    []Role{{Name: "vet_admin"}, {Name: "ROLE_VET_ADMIN"}, {Name: "owner_admin"}},
	}
	require.NoError(t, svc.SaveUser(context.Background(), u))

	stored, ok := repo.byName["vet1"]
	require.True(t, ok)
	assert.NotEqual(t, "secret", stored.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.Password), []byte("secret")))
	assert.Equal(t, []string{RoleVetAdmin, RoleOwnerAdmin}, stored.RoleNames())
}

func TestSaveUser_KeepsExistingHash(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	h, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)

	u := &User{Username: "admin", Password: string(h), Enabled: true, Roles: []Role{{Name: RoleAdmin}}}
	require.NoError(t, svc.SaveUser(context.Background(), u))
	assert.Equal(t, string(h), repo.byName["admin"].Password)
}

func TestSaveUser_FailedWriteLeavesUserUntouched(t *testing.T) {
	repo := newFakeRepo()
	repo.saveErr = errors.New("disk full")
	svc := newTestService(repo)

	u := User{Username: " vet1 ", Password: "secret", Enabled: true, Roles: []Role{{Name: "vet_admin"}, {Name: "vet_admin"}}}
	want := User{Username: " vet1 ", Password: "secret", Enabled: true, Roles: []Role{{Name: "vet_admin"}, {Name: "vet_admin"}}}

	require.Error(t, svc.SaveUser(context.Background(), &u))
	assert.Equal(t, want, u)
	assert.Empty(t, repo.byName)
}

func TestSaveUser_Validation(t *testing.T) {
	svc := newTestService(newFakeRepo())

	cases := map[string]User{
		"username": {Password: "x", Roles: []Role{{Name: RoleAdmin}}},
		"password": {Username: "a", Roles: []Role{{Name: RoleAdmin}}},
		"roles":    {Username: "a", Password: "x", Roles: []Role{{Name: "  "}}},
	}
	for field, u := range cases {
		u := u
		err := svc.SaveUser(context.Background(), &u)
		require.Error(t, err, field)
		assert.ErrorIs(t, err, clinic.ErrInvalid, field)

		var ve *clinic.ValidationError
		require.True(t, errors.As(err, &ve), field)
		assert.Equal(t, field, ve.Field)
	}
}

func TestFindUser_AbsentVsStorageError(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	l, err := svc.FindUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, l.Present())

	boom := errors.New("connection reset")
	repo.findErr = boom
	_, err = svc.FindUser(context.Background(), "nobody")
	assert.ErrorIs(t, err, boom)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	require.NoError(t, svc.SaveUser(context.Background(), &User{
		Username: "admin", Password: "admin", Enabled: true,
		Roles: []Role{{Name: RoleAdmin}, {Name: RoleOwnerAdmin}},
	}))
	require.NoError(t, svc.SaveUser(context.Background(), &User{
		Username: "off", Password: "pw", Enabled: false,
		Roles: []Role{{Name: RoleAdmin}},
	}))

	p, err := svc.Authenticate(context.Background(), "admin", "admin")
	require.NoError(t, err)
	assert.Equal(t, "admin", p.Username)
	assert.True(t, p.HasRole(RoleOwnerAdmin))
	assert.False(t, p.HasRole(RoleVetAdmin))

	_, err = svc.Authenticate(context.Background(), "admin", "wrong")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Authenticate(context.Background(), "ghost", "admin")
	assert.ErrorIs(t, err, ErrBadCredentials)

	_, err = svc.Authenticate(context.Background(), "off", "pw")
	assert.ErrorIs(t, err, ErrBadCredentials)
}
