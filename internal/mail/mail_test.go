package mail

import (
	"bitwise74/taskcamp/config"
	"context"
	"errors"
	"net"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposeActivation(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	link := "http://localhost/accounts/activate/abc/def/"
	m, err := r.Compose(ActivationSubject, ActivationText, ActivationHTML,
		map[string]any{"url_link": link}, "noreply@example.com", "user@example.com")
	require.NoError(t, err)

	assert.Equal(t, "Your taskcamp account activation", m.Subject)
	assert.Contains(t, m.Text, link)
	assert.Contains(t, m.HTML, `href="`+link+`"`)
	assert.Equal(t, "user@example.com", m.To)
}

func TestComposeSubjectsAreSingleLine(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	for subject, want := range map[string]string{
		WelcomeSubject:       "Taskcamp welcomes you",
		PasswordResetSubject: "Reset password",
	} {
		got, err := r.Render(subject, nil)
		require.NoError(t, err)
		assert.Equal(t, want+"\n", got)

		m, err := r.Compose(subject, WelcomeText, "", map[string]any{"tour_link": "/"}, "a@b.c", "d@e.f")
		require.NoError(t, err)
		assert.Equal(t, want, m.Subject)
		assert.Empty(t, m.HTML)
	}
}

func TestRenderEscapesHTMLOnly(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	data := map[string]any{"tour_link": "/?a=<b>"}

	text, err := r.Render(WelcomeText, data)
	require.NoError(t, err)
	assert.Contains(t, text, "/?a=<b>")

	html, err := r.Render(WelcomeHTML, data)
	require.NoError(t, err)
	assert.NotContains(t, html, "<b>")
}

func TestRenderErrors(t *testing.T) {
	r, err := NewRenderer()
	require.NoError(t, err)

	_, err = r.Render("nope.txt", nil)
	assert.ErrorIs(t, err, ErrUnknownTemplate)

	_, err = r.Render(ActivationText, map[string]any{})
	assert.Error(t, err, "missing keys fail the render")
}

func TestSMTPConnectionRefused(t *testing.T) {
	// Grab a free port and close it again so nothing is listening
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := l.Addr().(*net.TCPAddr).Port
	require.NoError(t, l.Close())

	s := NewSMTP(config.Mail{Host: "127.0.0.1", Port: port})
	err = s.Send(context.Background(), &Message{From: "a@b.c", To: "d@e.f", Subject: "s", Text: "t"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, syscall.ECONNREFUSED))
}
