package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"taskapp/internal/core/port"
)

// Mailer pushes account emails to an HTTP delivery endpoint through a
// buffered queue. Delivery is decoupled from the request that triggered
// it: enqueueing never blocks, and a failed send is logged and dropped,
// never surfaced to the caller.
type Mailer struct {
	url        string
	httpClient *http.Client
	logger     *zap.Logger
	queue      chan message
	done       chan struct{}
}

type message struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Text    string `json:"text"`
}

func NewMailer(url string, logger *zap.Logger) *Mailer {
	m := &Mailer{
		url:    url,
		logger: logger,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		queue: make(chan message, 64),
		done:  make(chan struct{}),
	}

	go m.deliverLoop()

	return m
}

func (m *Mailer) SendWelcome(ctx context.Context, email, name string) {
	m.enqueue(message{
		To:      email,
		Subject: "You have been registered to Task App!",
		Text:    fmt.Sprintf("Hello, %s! Thank you for joining in!", name),
	})
}

func (m *Mailer) SendGoodbye(ctx context.Context, email, name string) {
	m.enqueue(message{
		To:      email,
		Subject: "We are sorry to see you leaving Task App",
		Text: fmt.Sprintf("Hello, %s! Your Task App account has been removed by your request. "+
			"Feel free to tell us why, so we can make our application better in the future!", name),
	})
}

func (m *Mailer) enqueue(msg message) {
	select {
	case m.queue <- msg:
	default:
		m.logger.Warn("Notification queue full, dropping message",
			zap.String("subject", msg.Subject))
	}
}

func (m *Mailer) deliverLoop() {
	for msg := range m.queue {
		m.deliver(msg)
	}

	close(m.done)
}

func (m *Mailer) deliver(msg message) {
	body, err := json.Marshal(msg)

	if err != nil {
		m.logger.Error("Failed to encode notification", zap.Error(err))
		return
	}

	req, err := http.NewRequest(http.MethodPost, m.url, bytes.NewReader(body))

	if err != nil {
		m.logger.Error("Failed to build notification request", zap.Error(err))
		return
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := m.httpClient.Do(req)

	if err != nil {
		m.logger.Warn("Notification delivery failed", zap.Error(err))
		return
	}

	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		m.logger.Warn("Notification delivery rejected",
			zap.Int("status", resp.StatusCode),
			zap.String("subject", msg.Subject))
	}
}

// Close drains the queue and stops the delivery worker.
func (m *Mailer) Close() {
	close(m.queue)
	<-m.done
}

var _ port.Notifier = (*Mailer)(nil)

// NoopNotifier is used when no delivery endpoint is configured and in
// tests.
type NoopNotifier struct{}

func NewNoopNotifier() port.Notifier {
	return &NoopNotifier{}
}

func (NoopNotifier) SendWelcome(ctx context.Context, email, name string) {}
func (NoopNotifier) SendGoodbye(ctx context.Context, email, name string) {}
