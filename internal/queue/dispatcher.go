package queue

import (
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal/mail"
	"context"
	"fmt"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// Dispatcher is what the web tier uses to send mail. Every method returns
// once the job is queued.
type Dispatcher interface {
	SendActivation(ctx context.Context, to, link string) error
	SendWelcome(ctx context.Context, to, tourLink string) error
	SendPasswordReset(ctx context.Context, to string, data map[string]any) error
}

// Enqueuer is satisfied by *asynq.Client
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

type AsynqDispatcher struct {
	enq  Enqueuer
	cfg  config.Queue
	from string
}

func NewDispatcher(enq Enqueuer, cfg config.Queue, from string) *AsynqDispatcher {
	return &AsynqDispatcher{enq: enq, cfg: cfg, from: from}
}

func (d *AsynqDispatcher) SendActivation(ctx context.Context, to, link string) error {
	return d.enqueue(ctx, TypeActivationEmail, &Payload{
		SubjectTemplate: mail.ActivationSubject,
		TextTemplate:    mail.ActivationText,
		HTMLTemplate:    mail.ActivationHTML,
		Context:         map[string]any{"url_link": link},
		From:            d.from,
		To:              to,
	}, d.cfg.MaxRetry)
}

// SendWelcome is never retried
func (d *AsynqDispatcher) SendWelcome(ctx context.Context, to, tourLink string) error {
	return d.enqueue(ctx, TypeWelcomeEmail, &Payload{
		SubjectTemplate: mail.WelcomeSubject,
		TextTemplate:    mail.WelcomeText,
		HTMLTemplate:    mail.WelcomeHTML,
		Context:         map[string]any{"tour_link": tourLink},
		From:            d.from,
		To:              to,
	}, 0)
}

func (d *AsynqDispatcher) SendPasswordReset(ctx context.Context, to string, data map[string]any) error {
	return d.enqueue(ctx, TypePasswordResetEmail, &Payload{
		SubjectTemplate: mail.PasswordResetSubject,
		TextTemplate:    mail.PasswordResetText,
		HTMLTemplate:    mail.PasswordResetHTML,
		Context:         data,
		From:            d.from,
		To:              to,
	}, d.cfg.MaxRetry)
}

func (d *AsynqDispatcher) enqueue(ctx context.Context, typename string, p *Payload, maxRetry int) error {
	body, err := p.Encode()
	if err != nil {
		jobsEnqueued.WithLabelValues(typename, "rejected").Inc()
		return err
	}

	opts := []asynq.Option{asynq.MaxRetry(maxRetry)}
	if d.cfg.Name != "" {
		opts = append(opts, asynq.Queue(d.cfg.Name))
	}

	info, err := d.enq.EnqueueContext(ctx, asynq.NewTask(typename, body), opts...)
	if err != nil {
		jobsEnqueued.WithLabelValues(typename, "error").Inc()
		return fmt.Errorf("failed to enqueue %s, %w", typename, err)
	}

	jobsEnqueued.WithLabelValues(typename, "ok").Inc()

	if info != nil {
		zap.L().Debug("Mail job queued", zap.String("type", typename), zap.String("jobID", info.ID))
	}

	return nil
}
