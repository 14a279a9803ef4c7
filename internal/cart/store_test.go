package cart

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fileit-code/burg-ecom/internal/api"
	"github.com/fileit-code/burg-ecom/internal/domain"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testProduct(id int, name string, price float64) domain.Product {
	return domain.Product{
		ID:        id,
		Name:      name,
		Price:     price,
		CreatedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		CreatedBy: 2,
	}
}

// fakeBackend records order-creation and preference-creation requests and
// answers with configurable statuses.
type fakeBackend struct {
	preferenceStatus int
	orderStatus      int

	preferenceBody map[string]any
	orderBody      map[string]any
	orderCalls     int
}

func (f *fakeBackend) handler(t *testing.T) http.Handler {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /payments/createPreference", func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&f.preferenceBody); err != nil {
			t.Errorf("failed to decode preference body: %v", err)
		}
		if f.preferenceStatus != http.StatusOK {
			w.WriteHeader(f.preferenceStatus)
			return
		}
		_, _ = w.Write([]byte(`{"preference":{"id":"pref-77","init_point":"https://pay.example/checkout/pref-77"}}`))
	})
	mux.HandleFunc("POST /orders/create", func(w http.ResponseWriter, r *http.Request) {
		f.orderCalls++
		if err := json.NewDecoder(r.Body).Decode(&f.orderBody); err != nil {
			t.Errorf("failed to decode order body: %v", err)
		}
		w.WriteHeader(f.orderStatus)
	})
	return mux
}

func newTestStore(t *testing.T, backend *fakeBackend) *Store {
	t.Helper()
	server := httptest.NewServer(backend.handler(t))
	t.Cleanup(server.Close)

	client := api.NewClient(server.URL, server.Client())
	return NewStore(client, 2, "ARS", testLogger())
}

func TestStore_AddRemove(t *testing.T) {
	store := NewStore(nil, 2, "ARS", testLogger())

	t.Run("total equals sum of current lines", func(t *testing.T) {
		store.AddLine(testProduct(1, "Burger", 1500), "no onions")
		store.AddLine(testProduct(2, "Fries", 800), "")
		assert.Equal(t, 2300.0, store.Total())

		lines := store.Lines()
		require.Len(t, lines, 2)
		assert.Equal(t, "no onions", lines[0].Comment)
		assert.Equal(t, 2, lines[0].AddedBy)
		assert.False(t, lines[0].AddedAt.IsZero())
	})

	t.Run("identical products get distinct sequence numbers", func(t *testing.T) {
		first := store.AddLine(testProduct(1, "Burger", 1500), "extra cheese")
		second := store.AddLine(testProduct(1, "Burger", 1500), "extra cheese")
		require.NotEqual(t, first.Seq, second.Seq)

		store.RemoveLine(first.Seq)
		seqs := make(map[uint64]bool)
		for _, line := range store.Lines() {
			seqs[line.Seq] = true
		}
		assert.False(t, seqs[first.Seq])
		assert.True(t, seqs[second.Seq])

		store.RemoveLine(second.Seq)
		assert.Equal(t, 2300.0, store.Total())
	})

	t.Run("removing unknown sequence number is a no-op", func(t *testing.T) {
		before := store.Lines()
		total := store.Total()

		store.RemoveLine(9999)

		assert.Equal(t, before, store.Lines())
		assert.Equal(t, total, store.Total())
	})

	t.Run("sequence numbers are never reused", func(t *testing.T) {
		line := store.AddLine(testProduct(3, "Soda", 500), "")
		store.RemoveLine(line.Seq)
		next := store.AddLine(testProduct(3, "Soda", 500), "")
		assert.Greater(t, next.Seq, line.Seq)
		store.RemoveLine(next.Seq)
	})
}

func TestStore_SubmitCash(t *testing.T) {
	t.Run("2xx clears cart and returns accepted", func(t *testing.T) {
		backend := &fakeBackend{orderStatus: http.StatusCreated}
		store := newTestStore(t, backend)

		store.AddLine(testProduct(1, "Burger", 1500), "no onions")
		store.AddLine(testProduct(2, "Fries", 800), "")

		result := store.Submit(context.Background(), domain.Checkout{
			PhoneNumber:   "112345678",
			Address:       "Av. Siempreviva 742",
			DeliveryType:  domain.DeliveryTypeDelivery,
			PaymentMethod: domain.PaymentMethodCash,
		})

		assert.Equal(t, Result{Outcome: OutcomeAccepted}, result)
		assert.Empty(t, store.Lines())
		assert.Equal(t, 0.0, store.Total())

		body := backend.orderBody
		assert.Equal(t, 2300.0, body["price"])
		assert.Equal(t, "112345678", body["phone_number"])
		assert.Equal(t, "Av. Siempreviva 742", body["address"])
		assert.Equal(t, "cash", body["paymentMethod"])
		assert.Equal(t, "delivery", body["deliveryType"])
		assert.Equal(t, 2.0, body["userId"])
		assert.NotContains(t, body, "preferenceId")

		lines, ok := body["order"].([]any)
		require.True(t, ok)
		require.Len(t, lines, 2)
		first, ok := lines[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, 1.0, first["id"])
		assert.Equal(t, "no onions", first["comment"])
	})

	t.Run("non-2xx leaves cart untouched and returns rejected", func(t *testing.T) {
		backend := &fakeBackend{orderStatus: http.StatusInternalServerError}
		store := newTestStore(t, backend)

		store.AddLine(testProduct(1, "Burger", 1500), "")

		result := store.Submit(context.Background(), domain.Checkout{
			PhoneNumber:   "112345678",
			Address:       "Av. Siempreviva 742",
			DeliveryType:  domain.DeliveryTypeDelivery,
			PaymentMethod: domain.PaymentMethodCash,
		})

		assert.Equal(t, Result{Outcome: OutcomeFailed, Reason: FailureRejected}, result)
		assert.Len(t, store.Lines(), 1)
		assert.Equal(t, 1500.0, store.Total())
	})

	t.Run("network failure returns transport reason", func(t *testing.T) {
		client := api.NewClient("http://127.0.0.1:1", &http.Client{Timeout: time.Second})
		store := NewStore(client, 2, "ARS", testLogger())
		store.AddLine(testProduct(1, "Burger", 1500), "")

		result := store.Submit(context.Background(), domain.Checkout{
			PhoneNumber:   "112345678",
			Address:       "Av. Siempreviva 742",
			DeliveryType:  domain.DeliveryTypeDelivery,
			PaymentMethod: domain.PaymentMethodCash,
		})

		assert.Equal(t, Result{Outcome: OutcomeFailed, Reason: FailureTransport}, result)
		assert.Len(t, store.Lines(), 1)
	})

	t.Run("pickup substitutes the sentinel address", func(t *testing.T) {
		backend := &fakeBackend{orderStatus: http.StatusOK}
		store := newTestStore(t, backend)
		store.AddLine(testProduct(1, "Burger", 1500), "")

		result := store.Submit(context.Background(), domain.Checkout{
			PhoneNumber:   "112345678",
			DeliveryType:  domain.DeliveryTypePickup,
			PaymentMethod: domain.PaymentMethodCash,
		})

		assert.Equal(t, OutcomeAccepted, result.Outcome)
		assert.Equal(t, domain.PickupAddress, backend.orderBody["address"])
		assert.Equal(t, "pickup", backend.orderBody["deliveryType"])
	})
}

func TestStore_SubmitHosted(t *testing.T) {
	checkout := domain.Checkout{
		PhoneNumber:   "112345678",
		Address:       "Av. Siempreviva 742",
		DeliveryType:  domain.DeliveryTypeDelivery,
		PaymentMethod: domain.PaymentMethodHosted,
	}

	t.Run("both calls succeed: redirect URL and cleared cart", func(t *testing.T) {
		backend := &fakeBackend{preferenceStatus: http.StatusOK, orderStatus: http.StatusCreated}
		store := newTestStore(t, backend)

		store.AddLine(testProduct(1, "Burger", 1500), "no onions")
		store.AddLine(testProduct(5, "Free sticker", 0), "")

		result := store.Submit(context.Background(), checkout)

		assert.Equal(t, Result{
			Outcome:     OutcomeRedirect,
			RedirectURL: "https://pay.example/checkout/pref-77",
		}, result)
		assert.Empty(t, store.Lines())

		// zero-priced lines are excluded from the preference but kept in the order
		items, ok := backend.preferenceBody["items"].([]any)
		require.True(t, ok)
		require.Len(t, items, 1)
		item, ok := items[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "1", item["id"])
		assert.Equal(t, "Burger", item["title"])
		assert.Equal(t, "ARS", item["currency_id"])
		assert.Equal(t, 1500.0, item["unit_price"])
		assert.Equal(t, 1.0, item["quantity"])

		assert.Equal(t, "pref-77", backend.orderBody["preferenceId"])
		orderLines, ok := backend.orderBody["order"].([]any)
		require.True(t, ok)
		assert.Len(t, orderLines, 2)
	})

	t.Run("preference failure: failed outcome, cart untouched, no order call", func(t *testing.T) {
		backend := &fakeBackend{preferenceStatus: http.StatusBadGateway, orderStatus: http.StatusCreated}
		store := newTestStore(t, backend)

		store.AddLine(testProduct(1, "Burger", 1500), "")

		result := store.Submit(context.Background(), checkout)

		assert.Equal(t, Result{Outcome: OutcomeFailed, Reason: FailureRejected}, result)
		assert.Len(t, store.Lines(), 1)
		assert.Zero(t, backend.orderCalls)
	})

	t.Run("order failure after preference success: orphaned preference reason", func(t *testing.T) {
		backend := &fakeBackend{preferenceStatus: http.StatusOK, orderStatus: http.StatusInternalServerError}
		store := newTestStore(t, backend)

		store.AddLine(testProduct(1, "Burger", 1500), "")

		result := store.Submit(context.Background(), checkout)

		assert.Equal(t, Result{Outcome: OutcomeFailed, Reason: FailureOrphanedPreference}, result)
		assert.Len(t, store.Lines(), 1)
		assert.Equal(t, 1500.0, store.Total())
	})
}
