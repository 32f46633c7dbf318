package email

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"avd/internal/platform/config"
)

func TestBuildMessageEncodesSubject(t *testing.T) {
	msg := string(buildMessage("avd@uisa.com.br", "gestor@uisa.com.br", "Lembrete de consenso", "<p>olá</p>"))

	assert.True(t, strings.HasPrefix(msg, "From: avd@uisa.com.br\r\n"))
	assert.Contains(t, msg, "Content-Type: text/html; charset=\"UTF-8\"")
	assert.Contains(t, msg, "Subject: Lembrete de consenso")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\n<p>olá</p>"))

	encoded := string(buildMessage("a", "b", "Avaliação", ""))
	assert.Contains(t, encoded, "Subject: =?utf-8?q?")
}

func TestDisabledMailerDropsMessages(t *testing.T) {
	m := New(config.Config{EmailEnabled: false}, nil)
	assert.NoError(t, m.Send(context.Background(), "a", "b", "s", "body"))
}
