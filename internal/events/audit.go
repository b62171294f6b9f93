package events

import (
	"context"

	"go.uber.org/zap"
)

// AuditLog writes mapping lifecycle events to a structured log.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog creates an audit log writing through logger.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{logger: logger.Named("audit")}
}

// Created records a MappingCreated event.
func (a *AuditLog) Created(_ context.Context, event *MappingCreated) error {
	a.logger.Info("mapping created",
		zap.String("id", event.ID),
		zap.String("owner", event.Owner),
		zap.String("code", event.Code),
		zap.String("long_url", event.LongURL),
		zap.Bool("custom", event.Custom),
		zap.Time("created_at", event.CreatedAt),
	)

	return nil
}

// Deleted records a MappingDeleted event.
func (a *AuditLog) Deleted(_ context.Context, event *MappingDeleted) error {
	a.logger.Info("mapping deleted",
		zap.String("owner", event.Owner),
		zap.String("code", event.Code),
		zap.Time("deleted_at", event.DeletedAt),
	)

	return nil
}

// Register adds consumers for every lifecycle topic to group.
func (a *AuditLog) Register(group *Group, logger *zap.Logger) {
	group.Add(NewConsumer(group.subscriber, TopicMappingCreated, a.Created, logger))
	group.Add(NewConsumer(group.subscriber, TopicMappingDeleted, a.Deleted, logger))
}
