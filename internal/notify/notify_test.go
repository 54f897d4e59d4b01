package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	"tiffin-app-go/pkg/logger"
)

type fakePublisher struct {
	exchange   string
	routingKey string
	body       interface{}
	err        error
	ctxErr     error
}

func (p *fakePublisher) Publish(ctx context.Context, exchange, routingKey string, body interface{}) error {
	p.exchange = exchange
	p.routingKey = routingKey
	p.body = body
	p.ctxErr = ctx.Err()
	return p.err
}

func TestAMQPNotifierPublishesEvent(t *testing.T) {
	publisher := &fakePublisher{}
	notifier := NewAMQPNotifier(publisher, "tiffin.notifications", logger.Nop())
	notifier.now = func() time.Time { return time.Date(2025, 1, 20, 10, 0, 0, 0, time.UTC) }

	notifier.Notify(context.Background(), "user-1", "Meal paused", "Lunch on 2025-01-20 paused")

	if publisher.exchange != "tiffin.notifications" {
		t.Fatalf("expected exchange tiffin.notifications, got %q", publisher.exchange)
	}
	if publisher.routingKey != "notification.user.user-1" {
		t.Fatalf("unexpected routing key %q", publisher.routingKey)
	}
	event, ok := publisher.body.(Event)
	if !ok {
		t.Fatalf("expected Event body, got %T", publisher.body)
	}
	if event.UserID != "user-1" || event.Title != "Meal paused" {
		t.Fatalf("unexpected event %+v", event)
	}
}

func TestAMQPNotifierSurvivesCancelledRequest(t *testing.T) {
	publisher := &fakePublisher{err: errors.New("broker down")}
	notifier := NewAMQPNotifier(publisher, "x", logger.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier.Notify(ctx, "user-1", "title", "message")

	if publisher.ctxErr != nil {
		t.Fatalf("expected publish context detached from request, got %v", publisher.ctxErr)
	}
}
