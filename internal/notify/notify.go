package notify

import (
	"context"
	"time"

	"tiffin-app-go/pkg/logger"
)

const publishTimeout = 3 * time.Second

// Notifier delivers a user-facing message. Delivery is fire-and-forget: callers
// invoke it after their transaction has committed and never see a failure.
type Notifier interface {
	Notify(ctx context.Context, userID, title, message string)
}

// Event is the payload published for every notification.
type Event struct {
	UserID  string    `json:"user_id"`
	Title   string    `json:"title"`
	Message string    `json:"message"`
	SentAt  time.Time `json:"sent_at"`
}

type nop struct{}

func (nop) Notify(context.Context, string, string, string) {}

// Nop drops every notification.
func Nop() Notifier {
	return nop{}
}

// LogNotifier writes notifications to the log. Used when no broker is configured.
type LogNotifier struct {
	log logger.Logger
}

func NewLogNotifier(log logger.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Notify(_ context.Context, userID, title, message string) {
	n.log.Info("notify: message", "user_id", userID, "title", title, "message", message)
}

// Publisher is the subset of the AMQP producer the notifier needs.
type Publisher interface {
	Publish(ctx context.Context, exchange, routingKey string, body interface{}) error
}

// AMQPNotifier publishes notifications as JSON events to a topic exchange.
type AMQPNotifier struct {
	publisher Publisher
	exchange  string
	log       logger.Logger
	now       func() time.Time
}

func NewAMQPNotifier(publisher Publisher, exchange string, log logger.Logger) *AMQPNotifier {
	return &AMQPNotifier{
		publisher: publisher,
		exchange:  exchange,
		log:       log,
		now:       time.Now,
	}
}

func (n *AMQPNotifier) Notify(ctx context.Context, userID, title, message string) {
	event := Event{
		UserID:  userID,
		Title:   title,
		Message: message,
		SentAt:  n.now().UTC(),
	}

	// The request may already be finishing; publishing must not be cut short by it.
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := n.publisher.Publish(publishCtx, n.exchange, routingKey(userID), event); err != nil {
		n.log.InternalError("notify: publish failed", err, "user_id", userID, "title", title)
	}
}

func routingKey(userID string) string {
	return "notification.user." + userID
}
