// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Webhook delivery settings.
const (
	WebhookTimeout     = 30 * time.Second
	WebhookMaxAttempts = 3
	// WebhookDrainTimeout bounds how long Close waits for queued deliveries.
	WebhookDrainTimeout = 10 * time.Second
	WebhookUserAgent    = "paralympics/1.0"
	webhookQueueSize    = 100
)

// Webhook request headers.
const (
	HeaderSignature = "X-Webhook-Signature"
	HeaderEvent     = "X-Webhook-Event"
)

// ErrQueueFull is returned when the delivery queue cannot take another event.
var ErrQueueFull = errors.New("webhook queue full")

// WebhookConfig configures a WebhookPublisher.
type WebhookConfig struct {
	URL     string
	Secret  string // signs payloads when set
	Workers int
	// InitialBackoff is the delay before the first retry; it doubles after
	// each failure. Zero means one second.
	InitialBackoff time.Duration
	// DrainTimeout bounds Close. In-flight requests are cancelled and the
	// rest of the queue is dropped once it passes. Zero means
	// WebhookDrainTimeout.
	DrainTimeout time.Duration
	Client       *http.Client
}

// WebhookPublisher POSTs each event as JSON to one URL from a pool of
// workers. Failed deliveries are retried with exponential backoff until Close
// is called.
type WebhookPublisher struct {
	cfg    WebhookConfig
	logger *slog.Logger
	queue  chan delivery
	done   chan struct{}
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
	once   sync.Once
}

type delivery struct {
	event   string
	payload []byte
}

// NewWebhookPublisher starts the delivery workers.
func NewWebhookPublisher(cfg WebhookConfig, logger *slog.Logger) *WebhookPublisher {
	if cfg.Workers <= 0 {
		cfg.Workers = 2
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.DrainTimeout <= 0 {
		cfg.DrainTimeout = WebhookDrainTimeout
	}
	if cfg.Client == nil {
		cfg.Client = &http.Client{Timeout: WebhookTimeout}
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &WebhookPublisher{
		cfg:    cfg,
		logger: logger,
		queue:  make(chan delivery, webhookQueueSize),
		done:   make(chan struct{}),
		ctx:    ctx,
		cancel: cancel,
	}
	for range cfg.Workers {
		p.wg.Add(1)
		go p.worker()
	}
	logger.Info("webhook publisher started", "url", cfg.URL, "workers", cfg.Workers)
	return p
}

// Publish implements Publisher. Delivery happens in the background.
func (p *WebhookPublisher) Publish(_ context.Context, event *Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encoding %s event: %w", event.Type, err)
	}
	select {
	case <-p.done:
		return errors.New("webhook publisher closed")
	default:
	}
	select {
	case p.queue <- delivery{event: event.Type, payload: payload}:
		return nil
	default:
		return ErrQueueFull
	}
}

// Close stops accepting events and gives the workers DrainTimeout to send what
// is queued, one attempt each. Whatever is left after that is dropped.
func (p *WebhookPublisher) Close() {
	p.once.Do(func() {
		close(p.done)

		finished := make(chan struct{})
		go func() {
			p.wg.Wait()
			close(finished)
		}()

		select {
		case <-finished:
		case <-time.After(p.cfg.DrainTimeout):
			p.cancel()
			<-finished
		}
		p.cancel()
	})
}

func (p *WebhookPublisher) worker() {
	defer p.wg.Done()
	for {
		select {
		case d := <-p.queue:
			p.deliver(d)
		case <-p.done:
			for {
				select {
				case d := <-p.queue:
					p.deliver(d)
				default:
					return
				}
			}
		}
	}
}

func (p *WebhookPublisher) deliver(d delivery) {
	if p.ctx.Err() != nil {
		p.logger.Warn("webhook delivery dropped on shutdown", "category", "notify", "event", d.event)
		return
	}
	backoff := p.cfg.InitialBackoff
	for attempt := 1; ; attempt++ {
		retry, err := p.send(d)
		if err == nil {
			p.logger.Debug("webhook delivered", "event", d.event, "attempt", attempt)
			return
		}
		if retry && attempt < WebhookMaxAttempts && !p.closing() {
			select {
			case <-time.After(backoff):
				backoff *= 2
				continue
			case <-p.done:
			}
		}
		p.logger.Warn("webhook delivery failed", "category", "notify",
			"event", d.event, "attempts", attempt, "error", err)
		return
	}
}

func (p *WebhookPublisher) closing() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// send makes one delivery attempt and reports whether a failure is worth
// retrying.
func (p *WebhookPublisher) send(d delivery) (bool, error) {
	req, err := http.NewRequestWithContext(p.ctx, http.MethodPost, p.cfg.URL, bytes.NewReader(d.payload))
	if err != nil {
		return false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", WebhookUserAgent)
	req.Header.Set(HeaderEvent, d.event)
	if p.cfg.Secret != "" {
		req.Header.Set(HeaderSignature, Sign(d.payload, p.cfg.Secret))
	}

	resp, err := p.cfg.Client.Do(req)
	if err != nil {
		return true, err
	}
	_ = resp.Body.Close()

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return false, nil
	case resp.StatusCode == http.StatusRequestTimeout, resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode >= 500:
		return true, fmt.Errorf("webhook answered %d", resp.StatusCode)
	default:
		return false, fmt.Errorf("webhook answered %d", resp.StatusCode)
	}
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifySignature reports whether signature matches payload under secret.
func VerifySignature(payload []byte, signature, secret string) bool {
	return hmac.Equal([]byte(signature), []byte(Sign(payload, secret)))
}

// Multi publishes every event to each of its publishers.
type Multi []Publisher

// Publish implements Publisher. All publishers are tried; their errors are
// joined.
func (m Multi) Publish(ctx context.Context, event *Event) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close implements Publisher.
func (m Multi) Close() {
	for _, p := range m {
		p.Close()
	}
}
