package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Notifier delivers a short message to a recipient (an email address or a
// phone number, depending on the channel).
type Notifier interface {
	Send(ctx context.Context, message, to string) error
}

// EmailNotifier logs the email it would send.
type EmailNotifier struct {
	log *zap.Logger
}

func NewEmailNotifier(log *zap.Logger) *EmailNotifier {
	return &EmailNotifier{log: log.Named("email")}
}

func (n *EmailNotifier) Send(ctx context.Context, message, to string) error {
	n.log.Info("Sending email notification", zap.String("to", to), zap.String("message", message))
	return nil
}

// SMSNotifier logs the text message it would send.
type SMSNotifier struct {
	log *zap.Logger
}

func NewSMSNotifier(log *zap.Logger) *SMSNotifier {
	return &SMSNotifier{log: log.Named("sms")}
}

func (n *SMSNotifier) Send(ctx context.Context, message, to string) error {
	n.log.Info("Sending sms notification", zap.String("to", to), zap.String("message", message))
	return nil
}

// Manager routes notifications to the notifier chosen by channel name.
type Manager struct {
	notifier Notifier
	channel  string
}

func NewManager(channel string, log *zap.Logger) (*Manager, error) {
	var n Notifier
	switch channel {
	case "email", "":
		channel = "email"
		n = NewEmailNotifier(log)
	case "sms":
		n = NewSMSNotifier(log)
	default:
		return nil, fmt.Errorf("unknown notification channel %q", channel)
	}
	return &Manager{notifier: n, channel: channel}, nil
}

func (m *Manager) Channel() string {
	return m.channel
}

func (m *Manager) Send(ctx context.Context, message, to string) error {
	return m.notifier.Send(ctx, message, to)
}
