package worker

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	QueueAuditoria = "jobs:auditoria"
	QueueEmail     = "jobs:email"
	QueueRemito    = "jobs:remito"
)

// Job is the generic envelope for all async tasks.
type Job struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Dispatcher enqueues async jobs into Redis lists; the worker pool dequeues
// them via BRPOP. Enqueueing is best-effort from the caller's point of view:
// services fire and forget, and a redis failure is logged, never propagated
// into the business transaction that produced the job.
type Dispatcher struct {
	rdb *redis.Client
}

func NewDispatcher(rdb *redis.Client) *Dispatcher {
	return &Dispatcher{rdb: rdb}
}

// EnqueueAuditoria pushes an audit-log entry job. Nil-safe for unit tests.
func (d *Dispatcher) EnqueueAuditoria(ctx context.Context, payload interface{}) {
	d.enqueue(ctx, QueueAuditoria, "auditoria", payload)
}

// EnqueueAlertaStock pushes a low-stock alert email job.
func (d *Dispatcher) EnqueueAlertaStock(ctx context.Context, payload interface{}) {
	d.enqueue(ctx, QueueEmail, "alerta_stock", payload)
}

// EnqueueRemito pushes a delivery-note render job.
func (d *Dispatcher) EnqueueRemito(ctx context.Context, payload interface{}) {
	d.enqueue(ctx, QueueRemito, "remito", payload)
}

func (d *Dispatcher) enqueue(ctx context.Context, queue, jobType string, payload interface{}) {
	if d == nil || d.rdb == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dispatcher: marshal payload")
		return
	}
	encoded, err := json.Marshal(Job{Type: jobType, Payload: data})
	if err != nil {
		log.Error().Err(err).Str("queue", queue).Msg("dispatcher: marshal job")
		return
	}
	if err := d.rdb.LPush(ctx, queue, encoded).Err(); err != nil {
		log.Warn().Err(err).Str("queue", queue).Msg("dispatcher: enqueue failed, job dropped")
	}
}

// Handlers holds the per-queue processors, wired at the composition root.
type Handlers struct {
	Auditoria *AuditWorker
	Email     *EmailWorker
	Remito    *RemitoWorker
}

// StartWorkerPool launches numWorkers goroutines consuming all queues.
// Each goroutine blocks on BRPOP — zero CPU when idle.
func StartWorkerPool(ctx context.Context, rdb *redis.Client, handlers *Handlers, numWorkers int) {
	for i := 0; i < numWorkers; i++ {
		go runWorker(ctx, rdb, handlers, i)
	}
	log.Info().Msgf("worker pool started with %d workers", numWorkers)
}

func runWorker(ctx context.Context, rdb *redis.Client, handlers *Handlers, id int) {
	queues := []string{QueueAuditoria, QueueEmail, QueueRemito}
	for {
		select {
		case <-ctx.Done():
			log.Info().Msgf("worker %d shutting down", id)
			return
		default:
			// Blocking pop — waits up to 5s then loops to check ctx
			result, err := rdb.BRPop(ctx, 5*time.Second, queues...).Result()
			if err != nil {
				continue // timeout or context cancelled
			}
			if len(result) < 2 {
				continue
			}
			processJob(ctx, rdb, handlers, result[0], result[1])
		}
	}
}

func processJob(ctx context.Context, rdb *redis.Client, handlers *Handlers, queue, raw string) {
	var job Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		log.Error().Str("queue", queue).Err(err).Msg("failed to unmarshal job")
		return
	}

	var procErr error
	switch queue {
	case QueueAuditoria:
		procErr = handlers.Auditoria.Process(ctx, job.Payload)
	case QueueEmail:
		procErr = handlers.Email.Process(ctx, job.Payload)
	case QueueRemito:
		procErr = handlers.Remito.Process(ctx, job.Payload)
	default:
		log.Warn().Str("queue", queue).Msg("job from unknown queue dropped")
		return
	}

	if procErr != nil {
		// Side channels are best-effort: one failed attempt goes straight to
		// the DLQ for manual inspection, never back into the write path.
		SendToDLQ(ctx, rdb, queue, job.Type, job.Payload, procErr.Error(), 1)
	}
}
