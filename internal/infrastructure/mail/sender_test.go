package mail

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/gomail.v2"

	"github.com/carbonwallet/leads-service/internal/core/ports"
)

type fakeDialer struct {
	sent []*gomail.Message
	err  error
}

func (d *fakeDialer) DialAndSend(m ...*gomail.Message) error {
	d.sent = append(d.sent, m...)
	return d.err
}

var event = ports.LeadCreatedEvent{
	LeadID:    "lead-7",
	Name:      "Grace Hopper",
	Email:     "grace@example.com",
	Company:   "Navy",
	Interests: []string{"scope-3", "reporting"},
	CreatedAt: time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC),
}

func TestNotifier_Notify(t *testing.T) {
	d := &fakeDialer{}
	n := newNotifier(d, Config{From: "noreply@example.com", To: []string{"sales@example.com"}})

	require.NoError(t, n.Notify(context.Background(), event))
	require.Len(t, d.sent, 1)

	m := d.sent[0]
	assert.Equal(t, []string{"New lead: Grace Hopper"}, m.GetHeader("Subject"))
	assert.Equal(t, []string{"sales@example.com"}, m.GetHeader("To"))
	assert.Equal(t, []string{"grace@example.com"}, m.GetHeader("Reply-To"))
	assert.Equal(t, "email", n.Name())
}

func TestNotifier_NotifyError(t *testing.T) {
	d := &fakeDialer{err: errors.New("connection refused")}
	n := newNotifier(d, Config{From: "a@example.com", To: []string{"b@example.com"}})

	err := n.Notify(context.Background(), event)
	assert.ErrorContains(t, err, "send lead email")
}

func TestNotifier_CancelledContext(t *testing.T) {
	d := &fakeDialer{}
	n := newNotifier(d, Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.ErrorIs(t, n.Notify(ctx, event), context.Canceled)
	assert.Empty(t, d.sent)
}

func TestRenderBody(t *testing.T) {
	body, err := renderBody(event)
	require.NoError(t, err)

	assert.Contains(t, body, "Name:      Grace Hopper")
	assert.Contains(t, body, "Company:   Navy")
	assert.Contains(t, body, "Interests: scope-3, reporting")
	assert.Contains(t, body, "Received:  2025-02-03 04:05:06 UTC")
	assert.NotContains(t, body, "Source:")
}
