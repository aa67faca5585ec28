package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahapatra12/vitam-cms/domain"
)

func TestCreateUser(t *testing.T) {
	repo := newFakeUserRepo()
	audit := &recordingAudit{}
	svc := NewUserService(repo, audit)

	created, err := svc.CreateUser(context.Background(), domain.NewUser{
		Name:     "Ravi Kumar",
		Email:    "ravi@vitam.edu.in",
		Password: "a-strong-password",
		Phone:    "+919876543210",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.User.UUID)
	assert.Equal(t, domain.RoleStudent, created.User.Role, "role defaults to student")
	assert.True(t, created.User.IsActive)

	assert.NoError(t, bcrypt.CompareHashAndPassword(
		[]byte(created.User.Password), []byte("a-strong-password")))

	// The authenticator secret is minted at creation and handed back once.
	assert.NotEmpty(t, created.AuthenticatorSecret)
	assert.Equal(t, created.User.TotpSecret, created.AuthenticatorSecret)
	assert.True(t, strings.HasPrefix(created.AuthenticatorURI, "otpauth://totp/"))
	assert.False(t, created.User.TotpConfirmed)

	assert.Contains(t, audit.actions, domain.AuditUserCreated)
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &recordingAudit{})
	ctx := context.Background()

	input := domain.NewUser{
		Name:     "Ravi Kumar",
		Email:    "ravi@vitam.edu.in",
		Password: "a-strong-password",
	}
	_, err := svc.CreateUser(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateUser(ctx, input)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestUpdateProfile(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, &recordingAudit{})
	ctx := context.Background()

	created, err := svc.CreateUser(ctx, domain.NewUser{
		Name:     "Ravi Kumar",
		Email:    "ravi@vitam.edu.in",
		Password: "a-strong-password",
		Phone:    "+919876543210",
	})
	require.NoError(t, err)

	phone := "+911112223334"
	address := "Hostel Block C, Room 12"
	updated, err := svc.UpdateProfile(ctx, created.User.UUID, &phone, &address)
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, address, updated.Address)

	// Empty phone is ignored, address may be cleared explicitly.
	empty := ""
	updated, err = svc.UpdateProfile(ctx, created.User.UUID, &empty, &empty)
	require.NoError(t, err)
	assert.Equal(t, phone, updated.Phone)
	assert.Equal(t, "", updated.Address)
}
