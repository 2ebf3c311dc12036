package queue

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/videotube/account-service/internal/api/metrics"
	"github.com/videotube/account-service/internal/core/domain"
	"github.com/videotube/account-service/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 256
	publishTimeout = 5 * time.Second
)

// Dispatcher hands account events to a fixed set of workers, sharded on the
// user id so that events of one account are published in order.
type Dispatcher struct {
	workers   []chan domain.ActivityEvent
	publisher ports.ActivityPublisher
	log       zerolog.Logger
	wg        sync.WaitGroup
}

// NewDispatcher creates a Dispatcher with numWorkers shards.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, publisher ports.ActivityPublisher, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers:   make([]chan domain.ActivityEvent, numWorkers),
		publisher: publisher,
		log:       log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan domain.ActivityEvent, channelBuffer)
	}
	return d
}

// Start launches the worker goroutines. Workers drain their buffer and exit
// when ctx is cancelled; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		d.wg.Add(1)
		go d.runWorker(ctx, i, ch)
	}
}

// Wait blocks until every worker has returned.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Record queues the event for its shard. It never blocks: when the shard is
// full the event is dropped and counted.
func (d *Dispatcher) Record(event domain.ActivityEvent) {
	idx := d.shardIndex(event.UserID)
	select {
	case d.workers[idx] <- event:
		metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(idx)).Set(float64(len(d.workers[idx])))
	default:
		metrics.ActivityEventsTotal.WithLabelValues(string(event.Type), "dropped").Inc()
		d.log.Warn().
			Str("user_id", event.UserID).
			Str("type", string(event.Type)).
			Int("worker_id", idx).
			Msg("activity buffer full, event dropped")
	}
}

// shardIndex maps a user id deterministically to a worker index.
func (d *Dispatcher) shardIndex(userID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	return int(h.Sum32() % uint32(len(d.workers)))
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan domain.ActivityEvent) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(id, ch)
			return
		case event := <-ch:
			d.publish(context.Background(), id, event)
		}
	}
}

// drain publishes whatever is still buffered after shutdown was requested.
func (d *Dispatcher) drain(id int, ch <-chan domain.ActivityEvent) {
	for {
		select {
		case event := <-ch:
			d.publish(context.Background(), id, event)
		default:
			return
		}
	}
}

func (d *Dispatcher) publish(parent context.Context, id int, event domain.ActivityEvent) {
	ctx, cancel := context.WithTimeout(parent, publishTimeout)
	defer cancel()

	metrics.ActivityQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(d.workers[id])))

	if err := d.publisher.Publish(ctx, event); err != nil {
		metrics.ActivityEventsTotal.WithLabelValues(string(event.Type), "failed").Inc()
		d.log.Error().Err(err).
			Str("user_id", event.UserID).
			Str("type", string(event.Type)).
			Int("worker_id", id).
			Msg("activity publish failed")
		return
	}
	metrics.ActivityEventsTotal.WithLabelValues(string(event.Type), "published").Inc()
}
