package telegram

import (
	"context"
	"errors"
	"testing"

	"github.com/NasaVasa/reservewatch/internal/notify"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSender struct {
	sent    []tgbotapi.Chattable
	nextID  int
	editErr error
}

func (s *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	s.sent = append(s.sent, c)
	if _, ok := c.(tgbotapi.EditMessageTextConfig); ok && s.editErr != nil {
		return tgbotapi.Message{}, s.editErr
	}
	s.nextID++
	return tgbotapi.Message{MessageID: s.nextID}, nil
}

func TestNotifierEditsMessageForRepeatedTag(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, n.Send(ctx, notify.Notification{Tag: "reserve_trigger:a", Title: "BTC reserve alert", Body: "first"}))
	require.NoError(t, n.Send(ctx, notify.Notification{Tag: "reserve_trigger:a", Title: "BTC reserve alert", Body: "second"}))
	require.NoError(t, n.Send(ctx, notify.Notification{Tag: "reserve_trigger:b", Title: "ETH reserve alert"}))

	require.Len(t, sender.sent, 3)
	first, ok := sender.sent[0].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, int64(42), first.ChatID)
	assert.Equal(t, "BTC reserve alert\nfirst", first.Text)

	edit, ok := sender.sent[1].(tgbotapi.EditMessageTextConfig)
	require.True(t, ok)
	assert.Equal(t, 1, edit.MessageID)
	assert.Equal(t, "BTC reserve alert\nsecond", edit.Text)

	_, ok = sender.sent[2].(tgbotapi.MessageConfig)
	assert.True(t, ok)
}

func TestNotifierFallsBackWhenEditFails(t *testing.T) {
	sender := &fakeSender{}
	n := NewNotifier(sender, 42, zap.NewNop())
	ctx := context.Background()

	require.NoError(t, n.Send(ctx, notify.Notification{Tag: "order:o1", Title: "Order o1"}))
	sender.editErr = errors.New("Bad Request: message to edit not found")
	require.NoError(t, n.Send(ctx, notify.Notification{Tag: "order:o1", Title: "Order o1", Link: "reservewatch://app/notifications/order:o1"}))

	require.Len(t, sender.sent, 3)
	resent, ok := sender.sent[2].(tgbotapi.MessageConfig)
	require.True(t, ok)
	assert.Equal(t, "Order o1\nreservewatch://app/notifications/order:o1", resent.Text)
}
