package notification

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ppe-monitor-go/internal/models"
)

type fakeMailer struct {
	release chan struct{}
	sent    chan string
	err     error
	panics  bool
}

func (m *fakeMailer) SendAlert(ctx context.Context, imagePath string) error {
	if m.release != nil {
		<-m.release
	}
	if m.panics {
		panic("smtp exploded")
	}
	if m.sent != nil {
		m.sent <- imagePath
	}
	return m.err
}

type fakeBeeper struct {
	calls chan struct{}
}

func (b *fakeBeeper) Beep() error {
	b.calls <- struct{}{}
	return nil
}

type fakePublisher struct {
	events chan models.AlertEvent
	err    error
}

func (p *fakePublisher) PublishAlert(event models.AlertEvent) error {
	p.events <- event
	return p.err
}

func TestNotifyAsyncDoesNotBlockOnSlowMail(t *testing.T) {
	mailer := &fakeMailer{release: make(chan struct{}), sent: make(chan string, 1)}
	n := NewNotifier(mailer, nil, nil)

	returned := make(chan struct{})
	go func() {
		n.NotifyAsync("no_hardhat.jpg", models.FrameCounts{People: 1})
		close(returned)
	}()

	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("NotifyAsync blocked on the mail transport")
	}

	close(mailer.release)
	select {
	case path := <-mailer.sent:
		assert.Equal(t, "no_hardhat.jpg", path)
	case <-time.After(time.Second):
		t.Fatal("mail was never attempted")
	}
}

func TestNotifyAsyncSwallowsFailures(t *testing.T) {
	mailer := &fakeMailer{sent: make(chan string, 1), err: errors.New("auth failed")}
	beeper := &fakeBeeper{calls: make(chan struct{}, 1)}
	n := NewNotifier(mailer, beeper, nil)

	assert.NotPanics(t, func() { n.NotifyAsync("snap.jpg", models.FrameCounts{}) })

	<-mailer.sent
	<-beeper.calls
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, n.Wait(ctx))
}

func TestNotifyAsyncRecoversPanics(t *testing.T) {
	n := NewNotifier(&fakeMailer{panics: true}, nil, nil)

	n.NotifyAsync("snap.jpg", models.FrameCounts{})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, n.Wait(ctx))
}

func TestNotifyAsyncPublishesEvent(t *testing.T) {
	publisher := &fakePublisher{events: make(chan models.AlertEvent, 1)}
	n := NewNotifier(nil, nil, publisher)

	n.NotifyAsync("snap.jpg", models.FrameCounts{People: 2, Vests: 1})

	select {
	case event := <-publisher.events:
		assert.NotEmpty(t, event.ID)
		assert.Equal(t, "snap.jpg", event.SnapshotPath)
		assert.Equal(t, models.FrameCounts{People: 2, Vests: 1}, event.Counts)
		assert.False(t, event.Timestamp.IsZero())
	case <-time.After(time.Second):
		t.Fatal("event was never published")
	}
}

func TestWaitHonoursContext(t *testing.T) {
	mailer := &fakeMailer{release: make(chan struct{})}
	defer close(mailer.release)
	n := NewNotifier(mailer, nil, nil)
	n.NotifyAsync("snap.jpg", models.FrameCounts{})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, n.Wait(ctx), context.DeadlineExceeded)
}

func TestSoundBeeperFallsBackToBell(t *testing.T) {
	var out bytes.Buffer
	b := NewSoundBeeper(0, 0)
	b.tone = func(freq float64, durationMs int) error {
		assert.Equal(t, DefaultBeepFrequency, freq)
		assert.Equal(t, 3000, durationMs)
		return errors.New("no audio device")
	}
	b.bell = &out
	b.pause = 0

	require.NoError(t, b.Beep())
	assert.Equal(t, "\a\a\a", out.String())
}

func TestSoundBeeperUsesTone(t *testing.T) {
	var out bytes.Buffer
	b := NewSoundBeeper(440, 200*time.Millisecond)
	b.tone = func(freq float64, durationMs int) error {
		assert.Equal(t, 440.0, freq)
		assert.Equal(t, 200, durationMs)
		return nil
	}
	b.bell = &out

	require.NoError(t, b.Beep())
	assert.Empty(t, out.String())
}

func TestSMTPMailerRequiresSettings(t *testing.T) {
	m := &SMTPMailer{host: "smtp.example.com", port: 587, from: "cam@example.com"}

	err := m.SendAlert(context.Background(), "snap.jpg")
	assert.ErrorIs(t, err, ErrMailNotConfigured)
}

func TestSMTPMailerBuildsAlertMessage(t *testing.T) {
	m := &SMTPMailer{from: "cam@example.com", password: "x", to: "safety@example.com"}

	msg, err := m.newMessage(AlertSubject, AlertBody, "")
	require.NoError(t, err)
	require.Len(t, msg.GetFromString(), 1)
	assert.Contains(t, msg.GetFromString()[0], "cam@example.com")
	require.Len(t, msg.GetToString(), 1)
	assert.Contains(t, msg.GetToString()[0], "safety@example.com")
}

func TestSMTPMailerAttachesSnapshot(t *testing.T) {
	m := &SMTPMailer{from: "cam@example.com", password: "x", to: "safety@example.com"}
	snapshot := filepath.Join(t.TempDir(), "no_hardhat.jpg")
	require.NoError(t, os.WriteFile(snapshot, []byte{0xFF, 0xD8, 0xFF, 0xD9}, 0o644))

	msg, err := m.newMessage(AlertSubject, AlertBody, snapshot)
	require.NoError(t, err)
	assert.Len(t, msg.GetAttachments(), 1)
}

func TestSMTPMailerRejectsMissingSnapshot(t *testing.T) {
	m := &SMTPMailer{host: "smtp.invalid", port: 587, from: "cam@example.com", password: "x", to: "safety@example.com"}
	missing := filepath.Join(t.TempDir(), "no_hardhat.jpg")

	_, err := m.newMessage(AlertSubject, AlertBody, missing)
	assert.ErrorIs(t, err, ErrAttachmentMissing)

	err = m.SendAlert(context.Background(), missing)
	assert.ErrorIs(t, err, ErrAttachmentMissing)
}
