// Package notify delivers user-facing notifications. Every notification carries
// a tag; sending the same tag again replaces the earlier notification.
package notify

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

type Notification struct {
	Tag    string    `json:"tag"`
	Title  string    `json:"title"`
	Body   string    `json:"body"`
	Link   string    `json:"link,omitempty"`
	SentAt time.Time `json:"sent_at"`
}

// Sink is one delivery channel.
type Sink interface {
	Name() string
	Send(ctx context.Context, n Notification) error
}

// Multi fans notifications out to every sink. Its switch stands in for the
// platform notification permission: while off, Enabled reports false and
// background work that needs notifications stops.
type Multi struct {
	linkBase string
	logger   *zap.Logger
	enabled  atomic.Bool

	mu    sync.RWMutex
	sinks []Sink
}

func NewMulti(linkBase string, logger *zap.Logger, sinks ...Sink) *Multi {
	m := &Multi{linkBase: linkBase, logger: logger, sinks: sinks}
	m.enabled.Store(true)
	return m
}

func (m *Multi) AddSink(sink Sink) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sinks = append(m.sinks, sink)
}

func (m *Multi) SetEnabled(enabled bool) {
	m.enabled.Store(enabled)
	m.logger.Info("notifications toggled", zap.Bool("enabled", enabled))
}

func (m *Multi) Enabled() bool {
	if !m.enabled.Load() {
		return false
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sinks) > 0
}

func (m *Multi) link(tag string) string {
	if m.linkBase == "" {
		return ""
	}
	return strings.TrimRight(m.linkBase, "/") + "/notifications/" + url.PathEscape(tag)
}

// Notify sends to all sinks. One failing sink does not stop the others; the
// failures are joined into the returned error.
func (m *Multi) Notify(ctx context.Context, tag, title, body string) error {
	n := Notification{
		Tag:    tag,
		Title:  title,
		Body:   body,
		Link:   m.link(tag),
		SentAt: time.Now().UTC(),
	}

	m.mu.RLock()
	sinks := append([]Sink(nil), m.sinks...)
	m.mu.RUnlock()

	var errs []error
	for _, sink := range sinks {
		if err := sink.Send(ctx, n); err != nil {
			m.logger.Warn("notification sink failed", zap.String("sink", sink.Name()), zap.String("tag", tag), zap.Error(err))
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
