package notify

import (
	"fmt"
	"sync"

	"github.com/gabe/rcbt/internal/logger"
	"gopkg.in/telebot.v3"
)

// telegramBacklog bounds the messages waiting for the bot
const telegramBacklog = 64

// TelegramNotifier forwards success, warning and error entries to a chat.
// Info entries stay local; they are progress chatter. Sends happen on a
// worker so a slow API never holds up the caller.
type TelegramNotifier struct {
	send  func(text string) error
	queue chan string
	done  chan struct{}

	mu     sync.Mutex
	closed bool
}

// NewTelegramNotifier builds an offline bot: no getMe round trip at startup
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := telebot.NewBot(telebot.Settings{
		Token:   token,
		Offline: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	chat := &telebot.Chat{ID: chatID}
	return newTelegramNotifier(func(text string) error {
		_, err := bot.Send(chat, text)
		return err
	}), nil
}

func newTelegramNotifier(send func(string) error) *TelegramNotifier {
	t := &TelegramNotifier{
		send:  send,
		queue: make(chan string, telegramBacklog),
		done:  make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *TelegramNotifier) run() {
	defer close(t.done)
	for text := range t.queue {
		if err := t.send(text); err != nil {
			logger.Log.WithError(err).Warn("failed to send telegram notification")
		}
	}
}

// Notify queues the entry; it is dropped when the backlog is full
func (t *TelegramNotifier) Notify(notification Notification) error {
	if notification.Level == LevelInfo {
		return nil
	}
	text := fmt.Sprintf("%s %s", notification.Level.Icon(), notification.Message)

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return nil
	}
	select {
	case t.queue <- text:
	default:
		logger.Log.WithField("message", notification.Message).Warn("telegram backlog full, notification dropped")
	}
	return nil
}

// Close delivers what is queued, then stops the worker
func (t *TelegramNotifier) Close() error {
	t.mu.Lock()
	if !t.closed {
		t.closed = true
		close(t.queue)
	}
	t.mu.Unlock()
	<-t.done
	return nil
}
