package service

import (
	"context"

	"go.uber.org/zap"

	"github.com/spec-kit/citizen-portal/internal/events"
	"github.com/spec-kit/citizen-portal/internal/repository"
)

// AuditService records authentication events.
type AuditService struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
	audits     repository.LoginAuditRepository
}

// NewAuditService creates the service. audits may be nil, in which case events
// are only logged.
func NewAuditService(dispatcher events.Dispatcher, logger *zap.Logger, audits repository.LoginAuditRepository) *AuditService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditService{
		dispatcher: dispatcher,
		logger:     logger,
		audits:     audits,
	}
}

// RegisterHandlers subscribes to events.
func (a *AuditService) RegisterHandlers() {
	if a.dispatcher == nil {
		return
	}
	a.dispatcher.Subscribe(events.EventLoginSucceeded, a.handleLoginSucceeded)
	a.dispatcher.Subscribe(events.EventLoginFailed, a.handleLoginFailed)
	a.dispatcher.Subscribe(events.EventLogout, a.handleLogout)
	a.dispatcher.Subscribe(events.EventUserRegistered, a.handleUserRegistered)
}

func (a *AuditService) handleLoginSucceeded(ctx context.Context, event events.Event) error {
	a.logger.Info("LoginSucceeded", eventFields(event)...)
	return a.persist(ctx, event)
}

func (a *AuditService) handleLoginFailed(ctx context.Context, event events.Event) error {
	a.logger.Warn("LoginFailed", eventFields(event)...)
	return a.persist(ctx, event)
}

func (a *AuditService) handleLogout(ctx context.Context, event events.Event) error {
	a.logger.Info("Logout", eventFields(event)...)
	return a.persist(ctx, event)
}

func (a *AuditService) handleUserRegistered(_ context.Context, event events.Event) error {
	a.logger.Info("UserRegistered", eventFields(event)...)
	return nil
}

func (a *AuditService) persist(ctx context.Context, event events.Event) error {
	if a.audits == nil {
		return nil
	}
	err := a.audits.Record(ctx, &repository.LoginAudit{
		ID:         event.ID,
		EventType:  string(event.Type),
		Username:   event.Actor.Username,
		Role:       string(event.Actor.Role),
		Reason:     event.Reason,
		IP:         event.IP,
		UserAgent:  event.UserAgent,
		RequestID:  event.RequestID,
		OccurredAt: event.Timestamp,
	})
	if err != nil {
		a.logger.Error("record login audit", zap.String("event_id", event.ID), zap.Error(err))
	}
	return err
}

func eventFields(event events.Event) []zap.Field {
	fields := []zap.Field{
		zap.String("event_id", event.ID),
		zap.String("username", event.Actor.Username),
		zap.String("ip", event.IP),
	}
	if event.Actor.Role != "" {
		fields = append(fields, zap.String("role", string(event.Actor.Role)))
	}
	if event.Reason != "" {
		fields = append(fields, zap.String("reason", event.Reason))
	}
	if event.RequestID != "" {
		fields = append(fields, zap.String("request_id", event.RequestID))
	}
	return fields
}
