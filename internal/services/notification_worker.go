package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/ushuru-digital/app-tsp/internal/config"
	"github.com/ushuru-digital/app-tsp/internal/logging"
	"github.com/ushuru-digital/app-tsp/internal/observability"
	"github.com/ushuru-digital/app-tsp/internal/redisclient"
	"github.com/ushuru-digital/app-tsp/internal/utils"
	"go.uber.org/zap"
)

// WhatsAppSender dispatches one templated message. utils.SendWhatsAppMessage
// in production; tests substitute a fake.
type WhatsAppSender func(ctx context.Context, phones []string, hsmID string, varsList []map[string]interface{}) error

// NotificationWorker drains the notification queue and dispatches WhatsApp
// messages. Failed sends are requeued with a retry count; a job that
// exhausts its retries is dropped with an error log.
type NotificationWorker struct {
	id       int
	redis    *redisclient.Client
	sender   WhatsAppSender
	hsmID    string
	logger   *logging.SafeLogger
	stopChan chan struct{}
}

// NewNotificationWorker creates a new notification worker
func NewNotificationWorker(redis *redisclient.Client, sender WhatsAppSender, hsmID string, id int, logger *logging.SafeLogger) *NotificationWorker {
	return &NotificationWorker{
		id:       id,
		redis:    redis,
		sender:   sender,
		hsmID:    hsmID,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// NewDefaultNotificationWorker wires the worker to the real WhatsApp sender
func NewDefaultNotificationWorker(id int) *NotificationWorker {
	return NewNotificationWorker(
		config.Redis,
		utils.SendWhatsAppMessage,
		config.AppConfig.WhatsAppHSMID,
		id,
		logging.Logger.Named("notification_worker"),
	)
}

// Start runs the dispatch loop until Stop is called
func (w *NotificationWorker) Start() {
	w.logger.Info("notification worker started", zap.Int("worker_id", w.id))

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopChan:
			w.logger.Info("notification worker stopped", zap.Int("worker_id", w.id))
			return
		case <-ticker.C:
			w.drainQueue()
		}
	}
}

// Stop stops the worker
func (w *NotificationWorker) Stop() {
	close(w.stopChan)
}

// drainQueue processes jobs until the queue is empty
func (w *NotificationWorker) drainQueue() {
	ctx := context.Background()
	for {
		data, err := w.redis.RPop(ctx, NotificationQueue).Result()
		if err == redis.Nil {
			return
		}
		if err != nil {
			w.logger.Error("failed to pop notification job", zap.Error(err))
			return
		}

		var job NotificationJob
		if err := json.Unmarshal([]byte(data), &job); err != nil {
			w.logger.Error("dropping malformed notification job", zap.Error(err))
			observability.NotificationsSent.WithLabelValues("malformed").Inc()
			continue
		}

		w.processJob(ctx, &job)
	}
}

// ProcessJob dispatches one notification, requeueing on failure
func (w *NotificationWorker) processJob(ctx context.Context, job *NotificationJob) {
	err := w.sender(ctx, []string{job.Msisdn}, w.hsmID, []map[string]interface{}{
		{"1": job.Message},
	})
	if err == nil {
		observability.NotificationsSent.WithLabelValues("sent").Inc()
		w.logger.Info("notification dispatched",
			zap.String("attempt_id", job.AttemptID),
			zap.String("msisdn", observability.MaskMSISDN(job.Msisdn)))
		return
	}

	job.RetryCount++
	if job.RetryCount > job.MaxRetries {
		observability.NotificationsSent.WithLabelValues("dropped").Inc()
		w.logger.Error("notification dropped after max retries",
			zap.String("attempt_id", job.AttemptID),
			zap.Int("retries", job.RetryCount-1),
			zap.Error(err))
		return
	}

	w.logger.Warn("notification send failed, requeueing",
		zap.String("attempt_id", job.AttemptID),
		zap.Int("retry_count", job.RetryCount),
		zap.Error(err))

	data, marshalErr := json.Marshal(job)
	if marshalErr != nil {
		w.logger.Error("failed to re-encode notification job", zap.Error(marshalErr))
		return
	}
	if pushErr := w.redis.LPush(ctx, NotificationQueue, data).Err(); pushErr != nil {
		w.logger.Error("failed to requeue notification job", zap.Error(pushErr))
	}
	observability.NotificationsSent.WithLabelValues("retried").Inc()
}
