package queue

import (
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal/mail"
	"context"
	"errors"
	"fmt"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Handler renders and delivers mail jobs
type Handler struct {
	renderer *mail.Renderer
	sender   mail.Sender
}

func NewHandler(r *mail.Renderer, s mail.Sender) *Handler {
	return &Handler{renderer: r, sender: s}
}

// ProcessTask sends the mail described by t. Only a refused connection to
// the mail server is worth retrying, every other failure skips retries.
func (h *Handler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	err := h.process(ctx, t)

	switch {
	case err == nil:
		jobsProcessed.WithLabelValues(t.Type(), "ok").Inc()
		return nil
	case Retryable(err):
		jobsProcessed.WithLabelValues(t.Type(), "retry").Inc()
		return err
	default:
		jobsProcessed.WithLabelValues(t.Type(), "failed").Inc()
		return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
	}
}

func (h *Handler) process(ctx context.Context, t *asynq.Task) error {
	p, err := DecodePayload(t.Payload())
	if err != nil {
		return err
	}

	m, err := h.renderer.Compose(p.SubjectTemplate, p.TextTemplate, p.HTMLTemplate, p.Context, p.From, p.To)
	if err != nil {
		return err
	}

	return h.sender.Send(ctx, m)
}

// Retryable reports whether a delivery error is a refused connection
func Retryable(err error) bool {
	return errors.Is(err, syscall.ECONNREFUSED)
}

// Worker is the asynq server consuming mail jobs
type Worker struct {
	srv *asynq.Server
	mux *asynq.ServeMux
}

func NewWorker(cfg config.Queue, h *Handler) *Worker {
	queues := map[string]int{"default": 1}
	if cfg.Name != "" {
		queues = map[string]int{cfg.Name: 1}
	}

	srv := asynq.NewServer(RedisOpt(cfg.Redis), asynq.Config{
		Concurrency:    cfg.Concurrency,
		Queues:         queues,
		RetryDelayFunc: FixedDelay(cfg.RetryDelay),
		ErrorHandler:   asynq.ErrorHandlerFunc(reportError),
		Logger:         zap.S(),
	})

	mux := asynq.NewServeMux()
	mux.Handle(TypeActivationEmail, h)
	mux.Handle(TypeWelcomeEmail, h)
	mux.Handle(TypePasswordResetEmail, h)

	return &Worker{srv: srv, mux: mux}
}

// FixedDelay waits the same amount of time before every retry
func FixedDelay(d time.Duration) asynq.RetryDelayFunc {
	return func(int, error, *asynq.Task) time.Duration {
		return d
	}
}

func reportError(ctx context.Context, t *asynq.Task, err error) {
	retried, _ := asynq.GetRetryCount(ctx)
	maxRetry, _ := asynq.GetMaxRetry(ctx)
	id, _ := asynq.GetTaskID(ctx)

	zap.L().Error("Mail job failed",
		zap.String("type", t.Type()),
		zap.String("jobID", id),
		zap.Int("retried", retried),
		zap.Int("maxRetry", maxRetry),
		zap.Error(err))
}

// Run blocks until the process receives a termination signal
func (w *Worker) Run() error {
	return w.srv.Run(w.mux)
}

func (w *Worker) Shutdown() {
	w.srv.Shutdown()
}
