package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/mahapatra12/vitam-cms/domain"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) domain.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) CreateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *userRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetUserByUUID(ctx context.Context, uuid string) (*domain.User, error) {
	var user domain.User
	if err := r.db.WithContext(ctx).First(&user, "uuid = ?", uuid).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	if err := r.db.WithContext(ctx).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// StoreLoginCodes is one UPDATE so concurrent logins cannot interleave a
// half-written code pair; the later login simply wins.
func (r *userRepository) StoreLoginCodes(ctx context.Context, uuid, smsCode, emailCode string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"sms_code":              smsCode,
			"sms_code_expires_at":   expiresAt,
			"email_code":            emailCode,
			"email_code_expires_at": expiresAt,
		}).Error
}

func (r *userRepository) CompleteSecondFactor(ctx context.Context, uuid string) error {
	return r.db.WithContext(ctx).Model(&domain.User{}).
		Where("uuid = ?", uuid).
		Updates(map[string]interface{}{
			"sms_code":              nil,
			"sms_code_expires_at":   nil,
			"email_code":            nil,
			"email_code_expires_at": nil,
			"totp_confirmed":        true,
			"last_login":            time.Now(),
		}).Error
}
