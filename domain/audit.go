// domain/audit.go
package domain

import (
	"context"
	"time"
)

const (
	AuditLoginAttempt = "LOGIN_ATTEMPT"
	AuditLoginFailed  = "LOGIN_FAILED"
	AuditLoginSuccess = "LOGIN_SUCCESS"
	AuditUserCreated  = "USER_CREATED"
)

type AuditEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserUUID  *string   `gorm:"type:uuid;index" json:"user_uuid,omitempty"`
	Action    string    `gorm:"not null;index" json:"action"`
	Details   string    `json:"details"` // JSON blob
	IP        string    `json:"ip"`
	UserAgent string    `json:"user_agent"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

type AuditEventRepository interface {
	SaveEvent(ctx context.Context, event *AuditEvent) error
}

// AuditRecorder is fire-and-forget: implementations marshal details, attach
// request metadata from the context and swallow storage errors.
type AuditRecorder interface {
	Record(ctx context.Context, userUUID *string, action string, details map[string]any)
}

type requestMetaKey struct{}

type RequestMeta struct {
	IP        string
	UserAgent string
}

func WithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

func RequestMetaFrom(ctx context.Context) RequestMeta {
	meta, _ := ctx.Value(requestMetaKey{}).(RequestMeta)
	return meta
}
