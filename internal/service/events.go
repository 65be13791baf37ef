package service

import (
	"context"
	"encoding/json"

	"github.com/redis/go-redis/v9"

	"github.com/hinagata/saas-admin/internal/domain"
)

const eventChannel = "saas-admin:events"

// EventService fans mutation events out over redis pub/sub so every
// instance can feed its realtime subscribers.
type EventService struct {
	rdb *redis.Client
}

func NewEventService(redisClient *redis.Client) *EventService {
	return &EventService{
		rdb: redisClient,
	}
}

func (s *EventService) Publish(ctx context.Context, event domain.Event) error {
	jsonstr, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.rdb.Publish(ctx, eventChannel, jsonstr).Err()
}

// Stream subscribes to the event channel and forwards events visible to
// the caller onto output until ctx is cancelled. Tenant admins only see
// events of their own tenant; super admins see everything.
func (s *EventService) Stream(ctx context.Context, caller domain.User, output chan<- domain.Event) error {
	pubsub := s.rdb.Subscribe(ctx, eventChannel)
	defer pubsub.Close()

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			var event domain.Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}
			if !visibleTo(caller, event) {
				continue
			}
			select {
			case output <- event:
			case <-ctx.Done():
				return nil
			}
		}
	}
}

func visibleTo(caller domain.User, event domain.Event) bool {
	switch caller.Role {
	case domain.RoleSuperAdmin:
		return true
	case domain.RoleTenantAdmin:
		tenantID, ok := caller.TenantID()
		return ok && event.TenantID != nil && *event.TenantID == tenantID
	default:
		return false
	}
}
