// Package events carries store change notifications between the admin
// services and the caches that depend on store data.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/google/uuid"
	"github.com/lsjscarlett/store-locator/internal/cache"
	"github.com/lsjscarlett/store-locator/internal/logger"
	"go.uber.org/zap"
)

// TopicStoreChanged is published after any store mutation.
const TopicStoreChanged = "store.changed"

// StoreChanged describes a store mutation.
type StoreChanged struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	StoreIDs  []string  `json:"store_ids"`
	Timestamp time.Time `json:"timestamp"`
}

// Handler processes one event. A returned error is logged; the event is
// not redelivered.
type Handler func(ctx context.Context, evt StoreChanged) error

// Bus is an in-process publish/subscribe bus.
type Bus struct {
	pubsub *gochannel.GoChannel
	log    *zap.SugaredLogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewBus creates a Bus backed by a Watermill GoChannel.
func NewBus() *Bus {
	log := logger.GetLogger("events")
	ctx, cancel := context.WithCancel(context.Background())
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{
				OutputChannelBuffer:            100,
				Persistent:                     false,
				BlockPublishUntilSubscriberAck: false,
			},
			NewZapAdapter(log),
		),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// StoreChanged publishes a store change. Publishing failures are logged;
// the result cache still expires on its own TTL.
func (b *Bus) StoreChanged(ctx context.Context, action string, storeIDs ...string) {
	evt := StoreChanged{
		ID:        uuid.NewString(),
		Action:    action,
		StoreIDs:  storeIDs,
		Timestamp: time.Now().UTC(),
	}
	if err := b.Publish(ctx, evt); err != nil {
		b.log.Warnf("Failed to publish %s event: %v", TopicStoreChanged, err)
	}
}

// Publish sends evt on TopicStoreChanged.
func (b *Bus) Publish(_ context.Context, evt StoreChanged) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return err
	}
	msg := message.NewMessage(evt.ID, payload)
	msg.Metadata.Set("action", evt.Action)
	return b.pubsub.Publish(TopicStoreChanged, msg)
}

// Subscribe runs handler for every StoreChanged event until Close.
func (b *Bus) Subscribe(name string, handler Handler) error {
	ch, err := b.pubsub.Subscribe(b.ctx, TopicStoreChanged)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", name, err)
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		for msg := range ch {
			var evt StoreChanged
			if err := json.Unmarshal(msg.Payload, &evt); err != nil {
				b.log.Warnf("[%s] dropping malformed event %s: %v", name, msg.UUID, err)
				msg.Ack()
				continue
			}
			if err := handler(msg.Context(), evt); err != nil {
				b.log.Warnf("[%s] handler failed for %s event %s: %v", name, evt.Action, evt.ID, err)
			}
			msg.Ack()
		}
	}()
	return nil
}

// Close stops all subscriptions and waits for running handlers.
func (b *Bus) Close() error {
	b.cancel()
	err := b.pubsub.Close()
	b.wg.Wait()
	return err
}

// PurgeCache returns a handler that empties c on every store change.
func PurgeCache(c *cache.Cache) Handler {
	log := logger.GetLogger("events")
	return func(ctx context.Context, evt StoreChanged) error {
		if err := c.Purge(ctx); err != nil {
			return err
		}
		log.Infof("Purged %s cache after %s of %d store(s)", c.Namespace(), evt.Action, len(evt.StoreIDs))
		return nil
	}
}

// zapAdapter lets Watermill log through zap.
type zapAdapter struct {
	log    *zap.SugaredLogger
	fields watermill.LogFields
}

// NewZapAdapter wraps a zap logger as a watermill.LoggerAdapter.
func NewZapAdapter(log *zap.SugaredLogger) watermill.LoggerAdapter {
	return &zapAdapter{log: log}
}

func (a *zapAdapter) kv(fields watermill.LogFields) []interface{} {
	merged := a.fields.Add(fields)
	out := make([]interface{}, 0, len(merged)*2)
	for k, v := range merged {
		out = append(out, k, v)
	}
	return out
}

func (a *zapAdapter) Error(msg string, err error, fields watermill.LogFields) {
	a.log.Errorw(msg, append(a.kv(fields), "error", err)...)
}

func (a *zapAdapter) Info(msg string, fields watermill.LogFields) {
	a.log.Infow(msg, a.kv(fields)...)
}

func (a *zapAdapter) Debug(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.kv(fields)...)
}

func (a *zapAdapter) Trace(msg string, fields watermill.LogFields) {
	a.log.Debugw(msg, a.kv(fields)...)
}

func (a *zapAdapter) With(fields watermill.LogFields) watermill.LoggerAdapter {
	return &zapAdapter{log: a.log, fields: a.fields.Add(fields)}
}
