package service

import (
	"context"
	"encoding/json"
	"fmt"

	"anoa.com/rickmortyapi/internal/modules/favorite/dto"
	"anoa.com/rickmortyapi/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// Channel is the Redis pub/sub channel carrying a user's favorite events.
func Channel(userID uint) string {
	return fmt.Sprintf("user_favorites:%d", userID)
}

// EventPublisher publishes favorite events; a nil client turns it into a no-op.
type EventPublisher struct {
	rdb *redis.Client
}

func NewEventPublisher(rdb *redis.Client) *EventPublisher {
	return &EventPublisher{rdb: rdb}
}

func (p *EventPublisher) Publish(ctx context.Context, event dto.FavoriteEvent) {
	if p == nil || p.rdb == nil {
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("failed to encode favorite event")
		return
	}
	if err := p.rdb.Publish(ctx, Channel(event.UserID), payload).Err(); err != nil {
		logger.Ctx(ctx).Warn().Err(err).Uint("user_id", event.UserID).Msg("failed to publish favorite event")
	}
}
