package services

import (
	"context"
	"testing"
	"time"

	"talentlink_server/models"
)

// captureNotifier records dispatched notifications on channels so tests
// can wait for the async delivery.
type captureNotifier struct {
	matches  chan models.Match
	bookings chan models.Booking
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{
		matches:  make(chan models.Match, 16),
		bookings: make(chan models.Booking, 16),
	}
}

func (n *captureNotifier) NotifyMatch(_ context.Context, match models.Match) error {
	n.matches <- match
	return nil
}

func (n *captureNotifier) NotifyBookingRequest(_ context.Context, booking models.Booking) error {
	n.bookings <- booking
	return nil
}

func (n *captureNotifier) waitMatch(t *testing.T) models.Match {
	t.Helper()
	select {
	case m := <-n.matches:
		return m
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for match notification")
		return models.Match{}
	}
}

func (n *captureNotifier) waitBooking(t *testing.T) models.Booking {
	t.Helper()
	select {
	case b := <-n.bookings:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for booking notification")
		return models.Booking{}
	}
}

func (n *captureNotifier) expectNoMatch(t *testing.T) {
	t.Helper()
	select {
	case m := <-n.matches:
		t.Fatalf("unexpected match notification for conversation %s", m.ConversationID)
	case <-time.After(100 * time.Millisecond):
	}
}

type testEnv struct {
	db           *fakeDynamo
	dynamo       *DynamoService
	notifier     *captureNotifier
	availability *AvailabilityService
	offerings    *OfferingService
	slots        *SlotService
	bookings     *BookingService
	swipes       *SwipeService
	feed         *FeedService
}

func newTestEnv() *testEnv {
	db := newFakeDynamo()
	dynamo := &DynamoService{Client: db}
	notifier := newCaptureNotifier()
	swipes := NewSwipeService(dynamo, notifier, 15*24*time.Hour)
	return &testEnv{
		db:           db,
		dynamo:       dynamo,
		notifier:     notifier,
		availability: &AvailabilityService{Dynamo: dynamo},
		offerings:    &OfferingService{Dynamo: dynamo},
		slots:        &SlotService{Dynamo: dynamo},
		bookings:     &BookingService{Dynamo: dynamo, Notifier: notifier},
		swipes:       swipes,
		feed:         NewFeedService(dynamo, swipes, 10),
	}
}

// ts builds an RFC3339 instant on the fixture day.
func ts(hhmm string) string {
	return "2026-09-01T" + hhmm + ":00Z"
}

const fixtureDate = "2026-09-01"

func mustOffering(t *testing.T, env *testEnv, ownerID string, durationMinutes int) *models.ServiceOffering {
	t.Helper()
	offering, err := env.offerings.Create(context.Background(), models.ServiceOffering{
		OwnerID:         ownerID,
		Title:           "consultation",
		DurationMinutes: durationMinutes,
		Price:           50,
	})
	if err != nil {
		t.Fatalf("Create offering: %v", err)
	}
	return offering
}

func mustWindow(t *testing.T, env *testEnv, ownerID, start, end string) *models.AvailabilityWindow {
	t.Helper()
	window, err := env.availability.CreateWindow(context.Background(), ownerID, start, end)
	if err != nil {
		t.Fatalf("CreateWindow %s-%s: %v", start, end, err)
	}
	return window
}

func mustCandidates(t *testing.T, env *testEnv, expertID, offeringID string) []models.CandidateSlot {
	t.Helper()
	candidates, err := env.slots.CandidatesForDate(context.Background(), expertID, fixtureDate, offeringID)
	if err != nil {
		t.Fatalf("CandidatesForDate: %v", err)
	}
	return candidates
}

func bookReq(expertID, serviceID, bookerID string, candidate models.CandidateSlot) BookSlotRequest {
	return BookSlotRequest{
		ExpertID:  expertID,
		WindowID:  candidate.WindowID,
		Date:      candidate.Date,
		ServiceID: serviceID,
		BookerID:  bookerID,
		Chunks:    candidate.Chunks,
	}
}
