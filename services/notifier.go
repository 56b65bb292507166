package services

import (
	"context"
	"log"
	"time"

	"talentlink_server/models"
	"talentlink_server/mq"
)

// notifyTimeout bounds each fire-and-forget dispatch so a slow broker can
// never delay the commit it follows.
const notifyTimeout = 5 * time.Second

// Notifier is the external collaborator that opens conversations and
// delivers first messages. At-least-once; it must tolerate duplicate
// invocation, this core does not guarantee exactly-once delivery.
type Notifier interface {
	NotifyMatch(ctx context.Context, match models.Match) error
	NotifyBookingRequest(ctx context.Context, booking models.Booking) error
}

// notifyAsync runs one best-effort dispatch on its own goroutine with its
// own timeout. Failures are logged, never propagated into the commit.
func notifyAsync(name string, fn func(ctx context.Context) error) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			log.Printf("⚠️ %s notification failed: %v", name, err)
		}
	}()
}

// MQNotifier publishes notifier events to the message broker.
type MQNotifier struct {
	Publisher *mq.Publisher
}

func (n *MQNotifier) NotifyMatch(ctx context.Context, match models.Match) error {
	return n.Publisher.PublishJSON(ctx, mq.RKMatchCreated, mq.MatchCreated{
		ConversationID: match.ConversationID,
		UserA:          match.UserA,
		UserB:          match.UserB,
	})
}

func (n *MQNotifier) NotifyBookingRequest(ctx context.Context, booking models.Booking) error {
	return n.Publisher.PublishJSON(ctx, mq.RKBookingRequested, mq.BookingRequested{
		BookingID: booking.BookingID,
		ExpertID:  booking.ExpertID,
		UserID:    booking.UserID,
		Start:     booking.Start,
		End:       booking.End,
	})
}

// LogNotifier is the fallback when no broker is configured.
type LogNotifier struct{}

func (LogNotifier) NotifyMatch(_ context.Context, match models.Match) error {
	log.Printf("[notify] match %s between %s and %s", match.ConversationID, match.UserA, match.UserB)
	return nil
}

func (LogNotifier) NotifyBookingRequest(_ context.Context, booking models.Booking) error {
	log.Printf("[notify] booking request %s for expert %s", booking.BookingID, booking.ExpertID)
	return nil
}
