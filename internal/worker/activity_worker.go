package worker

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"agencydesk/internal/amqp"
	"agencydesk/internal/cache"
	"agencydesk/internal/log"
	"agencydesk/internal/storage"
)

// ActivityStore persists entity change records.
type ActivityStore interface {
	AppendActivity(ctx context.Context, a storage.Activity) (int64, error)
}

// ActivityWorker turns entity events from AMQP into activity log rows.
// Redelivered events seen within the dedupe window are acknowledged without
// writing a second row.
type ActivityWorker struct {
	store  ActivityStore
	seen   *cache.LRUCache[struct{}]
	logger *log.Logger

	recorded   atomic.Int64
	duplicates atomic.Int64
}

// NewActivityWorker remembers up to dedupeSize recent events for dedupeWindow.
func NewActivityWorker(store ActivityStore, dedupeSize int, dedupeWindow time.Duration, logger *log.Logger) *ActivityWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &ActivityWorker{
		store:  store,
		seen:   cache.NewLRUCache[struct{}](dedupeSize, dedupeWindow),
		logger: logger.WithComponent(log.ComponentWorker),
	}
}

// HandleEntityEvent records one event. A returned error makes the consumer
// requeue the delivery.
func (w *ActivityWorker) HandleEntityEvent(ctx context.Context, ev amqp.EntityEvent) error {
	key := eventKey(ev)
	if _, dup := w.seen.Get(key); dup {
		w.duplicates.Add(1)
		w.logger.DebugContext(ctx, "Duplicate entity event skipped",
			log.FieldEntity, ev.Kind, log.FieldEntityID, ev.ID, log.FieldVersion, ev.Version)
		return nil
	}

	id, err := w.store.AppendActivity(ctx, storage.Activity{
		Kind:       ev.Kind,
		Action:     ev.Action,
		EntityID:   ev.ID,
		Version:    ev.Version,
		OccurredAt: ev.Timestamp,
	})
	if err != nil {
		log.LogError(ctx, w.logger, "Failed to record activity", err, log.ComponentWorker, log.OpConsume,
			log.NewFields().WithEntity(ev.Kind, ev.ID, ev.Version))
		return fmt.Errorf("record %s %s: %w", ev.RoutingKey(), ev.ID, err)
	}
	w.seen.Set(key, struct{}{})
	w.recorded.Add(1)

	w.logger.InfoContext(ctx, "Activity recorded",
		"activity_id", id,
		log.FieldEntity, ev.Kind,
		log.FieldEntityID, ev.ID,
		log.FieldOperation, ev.Action,
		log.FieldVersion, ev.Version)
	return nil
}

// Cache exposes the dedupe window for periodic sweeping.
func (w *ActivityWorker) Cache() cache.Cleaner {
	return w.seen
}

// Stats returns how many events were recorded and skipped as duplicates.
func (w *ActivityWorker) Stats() (recorded, duplicates int64) {
	return w.recorded.Load(), w.duplicates.Load()
}

func eventKey(ev amqp.EntityEvent) string {
	return ev.RoutingKey() + "|" + ev.ID + "|" + strconv.FormatUint(ev.Version, 10) + "|" +
		strconv.FormatInt(ev.Timestamp.UnixNano(), 10)
}
