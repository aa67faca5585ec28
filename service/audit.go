package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/mahapatra12/vitam-cms/domain"
)

type auditService struct {
	repo domain.AuditEventRepository
}

func NewAuditService(repo domain.AuditEventRepository) domain.AuditRecorder {
	return &auditService{repo: repo}
}

// Record never fails the caller: audit storage problems are logged and
// dropped so a full audit table cannot take logins down with it.
func (s *auditService) Record(ctx context.Context, userUUID *string, action string, details map[string]any) {
	var detailsJSON string
	if details != nil {
		if b, err := json.Marshal(details); err == nil {
			detailsJSON = string(b)
		}
	}

	meta := domain.RequestMetaFrom(ctx)
	event := &domain.AuditEvent{
		UserUUID:  userUUID,
		Action:    action,
		Details:   detailsJSON,
		IP:        meta.IP,
		UserAgent: meta.UserAgent,
	}

	if err := s.repo.SaveEvent(ctx, event); err != nil {
		log.Warn().Err(err).Str("action", action).Msg("failed to save audit event")
	}
}
