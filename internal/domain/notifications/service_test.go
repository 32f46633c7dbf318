package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	created []Intent
	emails  map[string]string
	failAdd bool
}

func (m *memStore) CreateNotification(_ context.Context, employeeID, ntype, title, body string) error {
	if m.failAdd {
		return errors.New("insert failed")
	}
	m.created = append(m.created, Intent{EmployeeID: employeeID, Type: ntype, Title: title, Body: body})
	return nil
}

func (m *memStore) EmployeeEmail(_ context.Context, employeeID string) (string, error) {
	email, ok := m.emails[employeeID]
	if !ok {
		return "", errors.New("no rows")
	}
	return email, nil
}

func (m *memStore) ListNotifications(context.Context, string, int, int) ([]Notification, error) {
	return nil, nil
}

func (m *memStore) CountUnread(context.Context, string) (int, error) { return len(m.created), nil }

func (m *memStore) MarkRead(_ context.Context, _, id string) (bool, error) { return id == "n1", nil }

type sentMail struct{ from, to, subject, body string }

type recordingMailer struct {
	sent []sentMail
	err  error
}

func (r *recordingMailer) Send(_ context.Context, from, to, subject, body string) error {
	r.sent = append(r.sent, sentMail{from, to, subject, body})
	return r.err
}

func TestNotifyStoresAndEmails(t *testing.T) {
	store := &memStore{emails: map[string]string{"m1": "gestor@uisa.com.br"}}
	mailer := &recordingMailer{}
	svc := New(store, mailer, "avd@uisa.com.br", nil)

	intent := ConsensusReminder("m1", "Maria", 4, "https://avd/evaluations/1")
	require.NoError(t, svc.Notify(context.Background(), intent))

	require.Len(t, store.created, 1)
	assert.Equal(t, TypeConsensusReminder, store.created[0].Type)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "gestor@uisa.com.br", mailer.sent[0].to)
	assert.Contains(t, mailer.sent[0].body, "aguarda consenso há 4 dias")
}

func TestNotifySwallowsEmailFailure(t *testing.T) {
	store := &memStore{emails: map[string]string{"e1": "x@uisa.com.br"}}
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc := New(store, mailer, "avd@uisa.com.br", nil)

	assert.NoError(t, svc.Notify(context.Background(), EvaluationFinalized("e1", 81.1, "supera_expectativas", "")))
	assert.Error(t, svc.NotifyEmail(context.Background(), EvaluationFinalized("e1", 81.1, "supera_expectativas", "")))
	assert.Len(t, store.created, 1, "failed delivery leaves no in-app row")
}

func TestNotifyEmailRetryDoesNotDuplicate(t *testing.T) {
	store := &memStore{emails: map[string]string{"m1": "gestor@uisa.com.br", "m2": ""}}
	mailer := &recordingMailer{err: errors.New("smtp down")}
	svc := New(store, mailer, "avd@uisa.com.br", nil)
	ctx := context.Background()
	intent := ConsensusReminder("m1", "Maria", 4, "")

	require.Error(t, svc.NotifyEmail(ctx, intent))
	assert.Empty(t, store.created)

	mailer.err = nil
	require.NoError(t, svc.NotifyEmail(ctx, intent))
	assert.Len(t, store.created, 1)
	assert.Len(t, mailer.sent, 2)

	assert.ErrorIs(t, svc.NotifyEmail(ctx, Intent{Type: TypeConsensusReminder}), ErrMissingRecipient)
	assert.ErrorIs(t, svc.NotifyEmail(ctx, ConsensusReminder("m2", "Maria", 4, "")), ErrMissingEmail)
	assert.Len(t, store.created, 1)
}

func TestConsensusRejectedTemplate(t *testing.T) {
	intent := ConsensusRejected("e1", "Ana", "notas sem evidência", "https://avd/avaliacoes/1")
	assert.Equal(t, "e1", intent.EmployeeID)
	assert.Equal(t, TypeConsensusRejected, intent.Type)
	assert.Contains(t, intent.Body, "Motivo: notas sem evidência")
	assert.Contains(t, intent.Body, "https://avd/avaliacoes/1")
}

func TestNotifyFailsWhenStoreFails(t *testing.T) {
	svc := New(&memStore{failAdd: true}, nil, "", nil)
	assert.Error(t, svc.Notify(context.Background(), Intent{EmployeeID: "e1", Type: "x"}))
	assert.Error(t, svc.Notify(context.Background(), Intent{}))
}

func TestTemplatesEscapeNames(t *testing.T) {
	intent := ConsensusRequired("m1", "<script>x</script>", 50, 85, "")
	assert.NotContains(t, intent.Body, "<script>")
	assert.Contains(t, intent.Body, "50.0")
	assert.Contains(t, intent.Body, "85.0")
}

func TestMarkReadNotFound(t *testing.T) {
	svc := New(&memStore{}, nil, "", nil)
	assert.NoError(t, svc.MarkRead(context.Background(), "e1", "n1"))
	assert.ErrorIs(t, svc.MarkRead(context.Background(), "e1", "n2"), ErrNotificationNotFound)
}
