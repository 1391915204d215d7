package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/claims-console/internal/domain"
	"github.com/spec-kit/claims-console/internal/events"
	"github.com/spec-kit/claims-console/internal/repository"
)

// ErrAuditDisabled is returned by Activity when no audit store is configured.
var ErrAuditDisabled = errors.New("access audit not persisted")

// AuditService records identity changes and access denials.
type AuditService struct {
	dispatcher events.Dispatcher
	repo       repository.AuditRepository
	logger     *zap.Logger
}

// NewAuditService creates the service. A nil repo keeps the trail in the logs only.
func NewAuditService(dispatcher events.Dispatcher, repo repository.AuditRepository, logger *zap.Logger) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		repo:       repo,
		logger:     logger,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventIdentitySet, a.handleIdentitySet)
	a.dispatcher.Subscribe(events.EventIdentityCleared, a.handleIdentityCleared)
	a.dispatcher.Subscribe(events.EventAccessDenied, a.handleAccessDenied)
}

// RecordDenied publishes a denied decision for subject.
func (a *AuditService) RecordDenied(ctx context.Context, sessionID, userID, subject string, roles domain.RoleSet) {
	if a.dispatcher == nil {
		return
	}
	_ = a.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventAccessDenied,
		SessionID: sessionID,
		Timestamp: time.Now().UTC(),
		Payload: events.AccessDeniedPayload{
			Subject: subject,
			UserID:  userID,
			Roles:   roles.Strings(),
		},
	})
}

// Activity lists the most recent audit entries of a session.
func (a *AuditService) Activity(ctx context.Context, sessionID string, limit int) ([]repository.AuditEntry, error) {
	if a.repo == nil {
		return nil, ErrAuditDisabled
	}
	return a.repo.ListBySession(ctx, sessionID, limit)
}

func (a *AuditService) handleIdentitySet(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.IdentitySetPayload)
	a.logger.Info("IdentitySet",
		zap.String("session_id", event.SessionID),
		zap.String("user_id", payload.UserID),
		zap.Strings("roles", payload.Roles))
	return a.persist(ctx, event, &repository.AuditEntry{UserID: payload.UserID, Roles: payload.Roles})
}

func (a *AuditService) handleIdentityCleared(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.IdentityClearedPayload)
	a.logger.Info("IdentityCleared",
		zap.String("session_id", event.SessionID),
		zap.String("reason", payload.Reason))
	return a.persist(ctx, event, &repository.AuditEntry{Subject: payload.Reason})
}

func (a *AuditService) handleAccessDenied(ctx context.Context, event events.Event) error {
	payload, _ := event.Payload.(events.AccessDeniedPayload)
	a.logger.Debug("AccessDenied",
		zap.String("session_id", event.SessionID),
		zap.String("subject", payload.Subject),
		zap.Strings("roles", payload.Roles))
	if event.SessionID == "" {
		return nil
	}
	return a.persist(ctx, event, &repository.AuditEntry{UserID: payload.UserID, Roles: payload.Roles, Subject: payload.Subject})
}

func (a *AuditService) persist(ctx context.Context, event events.Event, entry *repository.AuditEntry) error {
	if a.repo == nil {
		return nil
	}
	entry.ID = event.ID
	entry.SessionID = event.SessionID
	entry.EventType = string(event.Type)
	entry.OccurredAt = event.Timestamp
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.OccurredAt.IsZero() {
		entry.OccurredAt = time.Now().UTC()
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return a.repo.Insert(ctx, entry)
}
