package services

import (
	"context"
	"testing"
	"time"

	"helmet-store/models"
	"helmet-store/store"
	"helmet-store/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAndLogin(t *testing.T) {
	st := store.NewMemoryStore()
	auth := newTestAuth(t, st)
	ctx := context.Background()

	res, err := auth.Register(ctx, RegisterInput{Email: " An@Example.com ", Password: "secret1", Name: "An", Phone: "0900"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, "an@example.com", res.User.Email)
	assert.Equal(t, models.RoleUser, res.User.Role)

	stored, err := st.Users().FindByEmail(ctx, "an@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "secret1", stored.Password)

	claims, err := auth.tokens.ParseJWT(res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.Subject)
	assert.Equal(t, models.RoleUser, claims.Role)

	login, err := auth.Login(ctx, "AN@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
}

func TestRegisterValidation(t *testing.T) {
	auth := newTestAuth(t, store.NewMemoryStore())
	ctx := context.Background()

	for name, in := range map[string]RegisterInput{
		"missing email":  {Password: "secret1"},
		"missing pass":   {Email: "a@example.com"},
		"short password": {Email: "a@example.com", Password: "12345"},
		"bad email":      {Email: "not-an-email", Password: "secret1"},
	} {
		t.Run(name, func(t *testing.T) {
			_, err := auth.Register(ctx, in)
			requireKind(t, err, utils.KindValidation)
		})
	}
}

func TestRegisterDuplicateEmailIsConflictRegardlessOfPassword(t *testing.T) {
	auth := newTestAuth(t, store.NewMemoryStore())
	ctx := context.Background()

	_, err := auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	for _, password := range []string{"secret1", "x", "", "another-valid-password"} {
		_, err := auth.Register(ctx, RegisterInput{Email: "A@example.com", Password: password})
		requireKind(t, err, utils.KindConflict)
	}
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	auth := newTestAuth(t, store.NewMemoryStore())
	ctx := context.Background()
	_, err := auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, wrongPassword := auth.Login(ctx, "a@example.com", "wrong-password")
	requireKind(t, wrongPassword, utils.KindUnauthorized)

	_, unknownUser := auth.Login(ctx, "ghost@example.com", "secret1")
	requireKind(t, unknownUser, utils.KindUnauthorized)

	assert.Equal(t, wrongPassword.Error(), unknownUser.Error())
}

func TestUpdateProfile(t *testing.T) {
	st := store.NewMemoryStore()
	auth := newTestAuth(t, st)
	auth.now = fixedClock(time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	ctx := context.Background()

	res, err := auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1", Name: "A", Phone: "0900"})
	require.NoError(t, err)

	address := "12 Nguyen Hue"
	user, err := auth.UpdateProfile(ctx, res.User.ID, models.ProfileUpdate{Address: &address})
	require.NoError(t, err)
	assert.Equal(t, "12 Nguyen Hue", user.Address)
	assert.Equal(t, "A", user.Name)
	assert.Equal(t, "0900", user.Phone)

	_, err = auth.UpdateProfile(ctx, "64b7f0c2a1b2c3d4e5f60718", models.ProfileUpdate{Address: &address})
	requireKind(t, err, utils.KindNotFound)
}

func TestPromote(t *testing.T) {
	auth := newTestAuth(t, store.NewMemoryStore())
	ctx := context.Background()
	_, err := auth.Register(ctx, RegisterInput{Email: "a@example.com", Password: "secret1"})
	require.NoError(t, err)

	user, err := auth.Promote(ctx, "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	login, err := auth.Login(ctx, "a@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, login.User.Role)

	_, err = auth.Promote(ctx, "ghost@example.com")
	requireKind(t, err, utils.KindNotFound)
}
