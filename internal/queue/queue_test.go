package queue

import (
	"bitwise74/taskcamp/config"
	"bitwise74/taskcamp/internal/mail"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	task *asynq.Task
	opts []asynq.Option
}

type fakeEnqueuer struct {
	jobs []enqueued
	err  error
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, t *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error) {
	if f.err != nil {
		return nil, f.err
	}

	f.jobs = append(f.jobs, enqueued{task: t, opts: opts})

	return &asynq.TaskInfo{ID: fmt.Sprint(len(f.jobs))}, nil
}

func maxRetry(opts []asynq.Option) (int, bool) {
	for _, o := range opts {
		if o.Type() == asynq.MaxRetryOpt {
			return o.Value().(int), true
		}
	}

	return 0, false
}

type fakeSender struct {
	sent []*mail.Message
	err  error
}

func (f *fakeSender) Send(_ context.Context, m *mail.Message) error {
	if f.err != nil {
		return f.err
	}

	f.sent = append(f.sent, m)

	return nil
}

var queueCfg = config.Queue{Name: "mail", MaxRetry: 5, RetryDelay: time.Minute}

func TestDispatcherRetryPolicy(t *testing.T) {
	enq := &fakeEnqueuer{}
	d := NewDispatcher(enq, queueCfg, "noreply@example.com")
	ctx := context.Background()

	require.NoError(t, d.SendActivation(ctx, "a@example.com", "http://x/accounts/activate/h/t/"))
	require.NoError(t, d.SendWelcome(ctx, "a@example.com", "http://x/"))
	require.NoError(t, d.SendPasswordReset(ctx, "a@example.com", map[string]any{"reset_link": "http://x/r"}))
	require.Len(t, enq.jobs, 3)

	want := []struct {
		typename string
		retries  int
	}{
		{TypeActivationEmail, 5},
		{TypeWelcomeEmail, 0},
		{TypePasswordResetEmail, 5},
	}

	for i, w := range want {
		assert.Equal(t, w.typename, enq.jobs[i].task.Type())

		n, ok := maxRetry(enq.jobs[i].opts)
		require.True(t, ok)
		assert.Equal(t, w.retries, n, w.typename)
	}

	p, err := DecodePayload(enq.jobs[0].task.Payload())
	require.NoError(t, err)
	assert.Equal(t, mail.ActivationSubject, p.SubjectTemplate)
	assert.Equal(t, "noreply@example.com", p.From)
	assert.Equal(t, "a@example.com", p.To)
	assert.Equal(t, "http://x/accounts/activate/h/t/", p.Context["url_link"])
}

func TestDispatcherRejectsUnserializableContext(t *testing.T) {
	enq := &fakeEnqueuer{}
	d := NewDispatcher(enq, queueCfg, "noreply@example.com")

	err := d.SendPasswordReset(context.Background(), "a@example.com", map[string]any{"ch": make(chan int)})
	assert.ErrorIs(t, err, ErrUnserializableContext)
	assert.Empty(t, enq.jobs)
}

func TestDispatcherEnqueueError(t *testing.T) {
	d := NewDispatcher(&fakeEnqueuer{err: errors.New("broker down")}, queueCfg, "noreply@example.com")
	assert.Error(t, d.SendWelcome(context.Background(), "a@example.com", "/"))
}

func newTask(t *testing.T, typename string, p *Payload) *asynq.Task {
	t.Helper()

	b, err := p.Encode()
	require.NoError(t, err)

	return asynq.NewTask(typename, b)
}

func TestHandlerDelivers(t *testing.T) {
	r, err := mail.NewRenderer()
	require.NoError(t, err)

	s := &fakeSender{}
	h := NewHandler(r, s)

	task := newTask(t, TypeWelcomeEmail, &Payload{
		SubjectTemplate: mail.WelcomeSubject,
		TextTemplate:    mail.WelcomeText,
		HTMLTemplate:    mail.WelcomeHTML,
		Context:         map[string]any{"tour_link": "http://x/"},
		From:            "noreply@example.com",
		To:              "a@example.com",
	})

	require.NoError(t, h.ProcessTask(context.Background(), task))
	require.Len(t, s.sent, 1)
	assert.Equal(t, "Taskcamp welcomes you", s.sent[0].Subject)
	assert.NotEmpty(t, s.sent[0].HTML)
}

func TestHandlerRetryClassification(t *testing.T) {
	r, err := mail.NewRenderer()
	require.NoError(t, err)

	task := newTask(t, TypeActivationEmail, &Payload{
		SubjectTemplate: mail.ActivationSubject,
		TextTemplate:    mail.ActivationText,
		Context:         map[string]any{"url_link": "http://x/"},
		From:            "noreply@example.com",
		To:              "a@example.com",
	})

	refused := &net.OpError{Op: "dial", Net: "tcp", Err: os.NewSyscallError("connect", syscall.ECONNREFUSED)}

	err = NewHandler(r, &fakeSender{err: refused}).ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.False(t, errors.Is(err, asynq.SkipRetry))
	assert.True(t, Retryable(err))

	err = NewHandler(r, &fakeSender{err: errors.New("535 auth failed")}).ProcessTask(context.Background(), task)
	require.Error(t, err)
	assert.True(t, errors.Is(err, asynq.SkipRetry))

	bad := asynq.NewTask(TypeActivationEmail, []byte("{"))
	err = NewHandler(r, &fakeSender{}).ProcessTask(context.Background(), bad)
	assert.True(t, errors.Is(err, asynq.SkipRetry))
}

func TestFixedDelay(t *testing.T) {
	f := FixedDelay(time.Minute)
	for n := 0; n < 5; n++ {
		assert.Equal(t, time.Minute, f(n, errors.New("x"), nil))
	}
}
