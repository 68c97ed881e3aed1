package services

import (
	"context"

	"github.com/sorenkv/cardvault-backend/internal/clients/redis"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

// Emitter publishes realtime messages. When a redis bus is configured
// the message fans out across instances; otherwise it goes straight to
// the local hub.
type Emitter interface {
	Emit(ctx context.Context, msg realtime.Message)
}

type emitter struct {
	log *logger.Logger
	hub *realtime.Hub
	bus redis.EventBus
}

func NewEmitter(log *logger.Logger, hub *realtime.Hub, bus redis.EventBus) Emitter {
	return &emitter{log: log.With("service", "Emitter"), hub: hub, bus: bus}
}

func (e *emitter) Emit(ctx context.Context, msg realtime.Message) {
	if e == nil || msg.Channel == "" {
		return
	}
	if e.bus != nil {
		if err := e.bus.Publish(ctx, msg); err != nil {
			e.log.Warn("redis publish failed, delivering locally", "error", err)
			e.hub.Broadcast(msg)
		}
		return
	}
	if e.hub != nil {
		e.hub.Broadcast(msg)
	}
}
