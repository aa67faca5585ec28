package domain

import (
	"context"
	"time"
)

const (
	RoleSuperAdmin = "super_admin"
	RoleAdmin      = "admin"
	RoleHOD        = "hod"
	RoleFaculty    = "faculty"
	RoleStudent    = "student"
	RoleAlumni     = "alumni"
)

type User struct {
	UUID     string `gorm:"primaryKey;type:uuid" json:"uuid"`
	Name     string `gorm:"not null" json:"name"`
	Email    string `gorm:"unique;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`
	Role     string `gorm:"not null;default:student" json:"role"`

	// Academic identity. RollNumber is unique when present (faculty and
	// admins have none).
	Department string  `json:"department"`
	RollNumber *string `gorm:"uniqueIndex" json:"roll_number,omitempty"`
	Year       *int    `json:"year,omitempty"`

	// Contact. Phone is required: it is the SMS second-factor destination.
	Phone   string `gorm:"not null" json:"phone"`
	Address string `json:"address"`

	// Authenticator-app material. The secret is generated once, when the
	// user is created, and never rotated by the login flow. TotpConfirmed
	// flips true on the first completed second-factor login and never back.
	TotpSecret    string `gorm:"not null" json:"-"`
	TotpConfirmed bool   `gorm:"not null;default:false" json:"-"`

	// Ephemeral login codes. Each code travels with its expiry: both set
	// while a login is pending, both null otherwise.
	SmsCode            *string    `json:"-"`
	SmsCodeExpiresAt   *time.Time `json:"-"`
	EmailCode          *string    `json:"-"`
	EmailCodeExpiresAt *time.Time `json:"-"`

	IsActive  bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin *time.Time `json:"last_login,omitempty"`
	CreatedAt time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

type UserRepository interface {
	CreateUser(ctx context.Context, user *User) error
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByUUID(ctx context.Context, uuid string) (*User, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	UpdateUser(ctx context.Context, user *User) error

	// StoreLoginCodes overwrites both ephemeral code pairs in a single
	// UPDATE. Concurrent logins race here last-writer-wins; a code from an
	// earlier login simply stops matching.
	StoreLoginCodes(ctx context.Context, uuid, smsCode, emailCode string, expiresAt time.Time) error

	// CompleteSecondFactor clears both code pairs, ratchets TotpConfirmed
	// to true and stamps LastLogin, all in one UPDATE. Calling it again for
	// the same login is a no-op.
	CompleteSecondFactor(ctx context.Context, uuid string) error
}

type NewUser struct {
	Name       string
	Email      string
	Password   string
	Role       string
	Department string
	RollNumber *string
	Year       *int
	Phone      string
}

// CreatedUser carries the one-time authenticator handoff material alongside
// the stored record. The admin relays the secret or otpauth URI to the user;
// it is not retrievable through the listing endpoints afterwards.
type CreatedUser struct {
	User                *User
	AuthenticatorSecret string
	AuthenticatorURI    string
}

type UserUseCase interface {
	CreateUser(ctx context.Context, input NewUser) (*CreatedUser, error)
	GetAllUsers(ctx context.Context) ([]User, error)
	GetUserByUUID(ctx context.Context, uuid string) (*User, error)
	UpdateProfile(ctx context.Context, uuid string, phone, address *string) (*User, error)
}
