// Package queue moves outgoing mail through an asynq broker. The web tier
// enqueues jobs with a Dispatcher and a separate Worker delivers them.
package queue

import (
	"bitwise74/taskcamp/config"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hibiken/asynq"
)

const (
	TypeActivationEmail    = "email:activation"
	TypeWelcomeEmail       = "email:welcome"
	TypePasswordResetEmail = "email:password_reset"
)

var ErrUnserializableContext = errors.New("mail context contains a value that can't be serialized")

// Payload is the body of every mail job
type Payload struct {
	SubjectTemplate string         `json:"subject_template"`
	TextTemplate    string         `json:"text_template"`
	HTMLTemplate    string         `json:"html_template,omitempty"`
	Context         map[string]any `json:"context"`
	From            string         `json:"from"`
	To              string         `json:"to"`
}

// Encode serializes p. A context value JSON can't represent is rejected
// here so the job never reaches the broker.
func (p *Payload) Encode() ([]byte, error) {
	for k, v := range p.Context {
		if _, err := json.Marshal(v); err != nil {
			return nil, fmt.Errorf("%w: %q, %v", ErrUnserializableContext, k, err)
		}
	}

	return json.Marshal(p)
}

func DecodePayload(b []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("failed to decode mail payload, %w", err)
	}

	if p.To == "" || p.SubjectTemplate == "" || p.TextTemplate == "" {
		return nil, errors.New("mail payload is missing required fields")
	}

	return &p, nil
}

// RedisOpt converts the redis settings into asynq connection options
func RedisOpt(cfg config.Redis) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
}
