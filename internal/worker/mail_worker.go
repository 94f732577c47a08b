package worker

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/mailer"
	"github.com/istun/mezunlar-backend/internal/metrics"
	"github.com/istun/mezunlar-backend/internal/notify"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const maxMailAttempts = 5

// MailWorker consumes mail_queue and hands jobs to the mailer.
type MailWorker struct {
	rdb        *redis.Client
	mailer     mailer.Mailer
	log        zerolog.Logger
	queue      string
	retryDelay time.Duration
}

// NewMailWorker creates a new MailWorker.
func NewMailWorker(rdb *redis.Client, m mailer.Mailer, log zerolog.Logger) *MailWorker {
	return &MailWorker{
		rdb:        rdb,
		mailer:     m,
		log:        log.With().Str("component", "mail_worker").Logger(),
		queue:      config.WorkerKey.MailQueue,
		retryDelay: 5 * time.Second,
	}
}

// Start begins the infinite worker loop. Call in a goroutine.
func (w *MailWorker) Start(ctx context.Context) {
	w.log.Info().Msg("Worker started")

	for {
		select {
		case <-ctx.Done():
			w.log.Info().Msg("Worker stopped")
			return
		default:
			w.processNext(ctx)
		}
	}
}

func (w *MailWorker) processNext(ctx context.Context) {
	// BLPop blocks until an item is available or timeout (1 second).
	result, err := w.rdb.BLPop(ctx, time.Second, w.queue).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.log.Error().Err(err).Msg("BLPop error")
			time.Sleep(time.Second)
		}
		return
	}
	if len(result) < 2 {
		return
	}

	w.handle(ctx, result[1])
}

func (w *MailWorker) handle(ctx context.Context, raw string) {
	var job notify.Job
	if err := json.Unmarshal([]byte(raw), &job); err != nil {
		w.log.Error().Err(err).Msg("Unmarshal error, dropping job")
		return
	}

	err := w.mailer.Send(ctx, mailer.Message{To: job.To, Subject: job.Subject, HTML: job.HTML})
	if err == nil {
		metrics.MailsSent.WithLabelValues(string(job.Template), "sent").Inc()
		w.log.Debug().Str("template", string(job.Template)).Str("to", job.To).Msg("Mail sent")
		return
	}

	job.Attempt++
	if job.Attempt >= maxMailAttempts {
		metrics.MailsSent.WithLabelValues(string(job.Template), "dropped").Inc()
		w.log.Error().Err(err).Str("to", job.To).Int("attempt", job.Attempt).Msg("Send failed, giving up")
		return
	}

	metrics.MailsSent.WithLabelValues(string(job.Template), "retry").Inc()
	w.log.Warn().Err(err).Str("to", job.To).Int("attempt", job.Attempt).Msg("Send failed, requeueing")

	payload, err := json.Marshal(job)
	if err != nil {
		w.log.Error().Err(err).Str("to", job.To).Int("attempt", job.Attempt).Msg("Marshal error, mail lost")
		return
	}
	// Requeue with a fresh context so a shutdown does not lose the job.
	if err := w.rdb.RPush(context.Background(), w.queue, payload).Err(); err != nil {
		metrics.MailsSent.WithLabelValues(string(job.Template), "lost").Inc()
		w.log.Error().Err(err).Str("to", job.To).Int("attempt", job.Attempt).Msg("Requeue failed, mail lost")
		return
	}

	select {
	case <-ctx.Done():
	case <-time.After(w.retryDelay):
	}
}
