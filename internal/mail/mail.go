// Package mail renders and delivers the emails the worker sends
package mail

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"io/fs"
	"path"
	"strings"
	texttemplate "text/template"
)

// Template names the dispatcher refers to in job payloads
const (
	ActivationSubject    = "activation_subject.txt"
	ActivationText       = "activation.txt"
	ActivationHTML       = "activation.html"
	WelcomeSubject       = "welcome_subject.txt"
	WelcomeText          = "welcome.txt"
	WelcomeHTML          = "welcome.html"
	PasswordResetSubject = "password_reset_subject.txt"
	PasswordResetText    = "password_reset.txt"
	PasswordResetHTML    = "password_reset.html"
)

var ErrUnknownTemplate = errors.New("unknown mail template")

//go:embed templates/*
var templateFS embed.FS

type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string // Optional alternative body
}

// Sender delivers a rendered message
type Sender interface {
	Send(ctx context.Context, m *Message) error
}

// Renderer executes the embedded templates. Plain text templates escape
// nothing while .html templates are rendered with contextual escaping.
type Renderer struct {
	text *texttemplate.Template
	html *htmltemplate.Template
}

func NewRenderer() (*Renderer, error) {
	r := &Renderer{
		text: texttemplate.New("").Option("missingkey=error"),
		html: htmltemplate.New("").Option("missingkey=error"),
	}

	entries, err := fs.ReadDir(templateFS, "templates")
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		b, err := templateFS.ReadFile(path.Join("templates", e.Name()))
		if err != nil {
			return nil, err
		}

		switch path.Ext(e.Name()) {
		case ".html":
			_, err = r.html.New(e.Name()).Parse(string(b))
		default:
			_, err = r.text.New(e.Name()).Parse(string(b))
		}
		if err != nil {
			return nil, fmt.Errorf("failed to parse mail template %s, %w", e.Name(), err)
		}
	}

	return r, nil
}

// Has reports whether name is a known template
func (r *Renderer) Has(name string) bool {
	if path.Ext(name) == ".html" {
		return r.html.Lookup(name) != nil
	}

	return r.text.Lookup(name) != nil
}

func (r *Renderer) Render(name string, data map[string]any) (string, error) {
	if !r.Has(name) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTemplate, name)
	}

	var buf bytes.Buffer

	var err error
	if path.Ext(name) == ".html" {
		err = r.html.ExecuteTemplate(&buf, name, data)
	} else {
		err = r.text.ExecuteTemplate(&buf, name, data)
	}
	if err != nil {
		return "", fmt.Errorf("failed to render %s, %w", name, err)
	}

	return buf.String(), nil
}

// Compose renders a full message. The subject is flattened to one line and
// the HTML body is only rendered when htmlName is set.
func (r *Renderer) Compose(subjectName, textName, htmlName string, data map[string]any, from, to string) (*Message, error) {
	subject, err := r.Render(subjectName, data)
	if err != nil {
		return nil, err
	}

	text, err := r.Render(textName, data)
	if err != nil {
		return nil, err
	}

	m := &Message{
		From:    from,
		To:      to,
		Subject: strings.Join(strings.Fields(subject), " "),
		Text:    text,
	}

	if htmlName != "" {
		if m.HTML, err = r.Render(htmlName, data); err != nil {
			return nil, err
		}
	}

	return m, nil
}
