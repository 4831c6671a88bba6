package stripewebhook

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/printmade/printshop-backend/pkg/db/models"
)

type stubConfirmer struct {
	orderID  uuid.UUID
	intentID string
	calls    int
	err      error
}

func (s *stubConfirmer) Confirm(_ context.Context, orderID uuid.UUID, paymentIntentID string) (*models.Order, error) {
	s.calls++
	s.orderID = orderID
	s.intentID = paymentIntentID
	if s.err != nil {
		return nil, s.err
	}
	return &models.Order{ID: orderID}, nil
}

type stubLookup struct {
	payment *models.Payment
}

func (s *stubLookup) FindPaymentByIntentID(_ context.Context, _ string) (*models.Payment, error) {
	if s.payment == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return s.payment, nil
}

func intentEvent(t *testing.T, eventType stripe.EventType, intent stripe.PaymentIntent) *stripe.Event {
	t.Helper()
	raw, err := json.Marshal(intent)
	if err != nil {
		t.Fatalf("marshal intent: %v", err)
	}
	return &stripe.Event{
		ID:   "evt_test",
		Type: eventType,
		Data: &stripe.EventData{Raw: raw},
	}
}

func TestHandleEventConfirmsFromMetadata(t *testing.T) {
	orderID := uuid.New()
	confirmer := &stubConfirmer{}
	service, err := NewService(ServiceParams{Payments: confirmer, Lookup: &stubLookup{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, stripe.PaymentIntent{
		ID:       "pi_123",
		Metadata: map[string]string{"order_id": orderID.String()},
	})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if confirmer.calls != 1 || confirmer.orderID != orderID || confirmer.intentID != "pi_123" {
		t.Fatalf("unexpected confirm call: %+v", confirmer)
	}
}

func TestHandleEventResolvesThroughPaymentRow(t *testing.T) {
	orderID := uuid.New()
	confirmer := &stubConfirmer{}
	lookup := &stubLookup{payment: &models.Payment{OrderID: orderID}}
	service, err := NewService(ServiceParams{Payments: confirmer, Lookup: lookup})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, stripe.PaymentIntent{ID: "pi_456"})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if confirmer.calls != 1 || confirmer.orderID != orderID {
		t.Fatalf("unexpected confirm call: %+v", confirmer)
	}
}

func TestHandleEventUnknownIntentAcknowledged(t *testing.T) {
	confirmer := &stubConfirmer{}
	service, err := NewService(ServiceParams{Payments: confirmer, Lookup: &stubLookup{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := intentEvent(t, stripe.EventTypePaymentIntentSucceeded, stripe.PaymentIntent{ID: "pi_789"})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if confirmer.calls != 0 {
		t.Fatalf("confirm must not run for unknown intents")
	}
}

func TestHandleEventIgnoresOtherTypes(t *testing.T) {
	confirmer := &stubConfirmer{}
	service, err := NewService(ServiceParams{Payments: confirmer, Lookup: &stubLookup{}})
	if err != nil {
		t.Fatalf("setup service: %v", err)
	}

	event := intentEvent(t, stripe.EventTypePaymentIntentCreated, stripe.PaymentIntent{ID: "pi_123"})
	if err := service.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("handle event: %v", err)
	}
	if confirmer.calls != 0 {
		t.Fatalf("only payment_intent.succeeded settles orders")
	}
}

type fakeIdempotencyStore struct {
	keys map[string]string
}

func (f *fakeIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	return f.keys[key], nil
}

func (f *fakeIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if f.keys == nil {
		f.keys = map[string]string{}
	}
	if _, exists := f.keys[key]; exists {
		return false, nil
	}
	f.keys[key] = "1"
	_ = value
	return true, nil
}

func (f *fakeIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "test:" + scope + ":" + id
}

func (f *fakeIdempotencyStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.keys, key)
	}
	return nil
}

func TestIdempotencyGuardMarksAndReleases(t *testing.T) {
	guard, err := NewIdempotencyGuard(&fakeIdempotencyStore{}, time.Hour, "stripe-webhook")
	if err != nil {
		t.Fatalf("setup guard: %v", err)
	}

	seen, err := guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("first mark: seen=%v err=%v", seen, err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || !seen {
		t.Fatalf("second mark: seen=%v err=%v", seen, err)
	}

	if err := guard.Delete(context.Background(), "evt_1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	seen, err = guard.CheckAndMark(context.Background(), "evt_1")
	if err != nil || seen {
		t.Fatalf("mark after delete: seen=%v err=%v", seen, err)
	}
}
