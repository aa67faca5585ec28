package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/mahapatra12/vitam-cms/domain"
	"github.com/mahapatra12/vitam-cms/utils"
)

var ErrEmailTaken = errors.New("email already exists")

type userService struct {
	repo  domain.UserRepository
	audit domain.AuditRecorder
}

func NewUserService(repo domain.UserRepository, audit domain.AuditRecorder) domain.UserUseCase {
	return &userService{repo: repo, audit: audit}
}

// CreateUser provisions a principal. The authenticator secret is generated
// here, exactly once; login only reads it, and the handoff material in the
// response is the operator's single chance to capture it.
func (s *userService) CreateUser(ctx context.Context, input domain.NewUser) (*domain.CreatedUser, error) {
	if _, err := s.repo.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	secret, err := utils.GenerateTOTPSecret(input.Email)
	if err != nil {
		return nil, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleStudent
	}

	user := &domain.User{
		UUID:       uuid.NewString(),
		Name:       input.Name,
		Email:      input.Email,
		Password:   string(hashed),
		Role:       role,
		Department: input.Department,
		RollNumber: input.RollNumber,
		Year:       input.Year,
		Phone:      input.Phone,
		TotpSecret: secret,
		IsActive:   true,
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, &user.UUID, domain.AuditUserCreated, map[string]any{
		"email": user.Email,
		"role":  user.Role,
	})

	return &domain.CreatedUser{
		User:                user,
		AuthenticatorSecret: secret,
		AuthenticatorURI:    utils.TOTPProvisioningURI(secret, user.Email),
	}, nil
}

func (s *userService) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	return s.repo.GetAllUsers(ctx)
}

func (s *userService) GetUserByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	return s.repo.GetUserByUUID(ctx, uuid)
}

func (s *userService) UpdateProfile(ctx context.Context, uuid string, phone, address *string) (*domain.User, error) {
	user, err := s.repo.GetUserByUUID(ctx, uuid)
	if err != nil {
		return nil, err
	}

	if phone != nil && *phone != "" {
		user.Phone = *phone
	}
	if address != nil {
		user.Address = *address
	}

	if err := s.repo.UpdateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
