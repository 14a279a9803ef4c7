package cart

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/fileit-code/burg-ecom/internal/api"
	"github.com/fileit-code/burg-ecom/internal/domain"
)

var (
	tracer = otel.Tracer("cart")
	meter  = otel.Meter("cart")
)

// Outcome is the tri-state result of an order submission.
type Outcome string

const (
	OutcomeAccepted Outcome = "accepted"
	OutcomeFailed   Outcome = "failed"
	OutcomeRedirect Outcome = "redirect"
)

// FailureReason qualifies a failed outcome.
type FailureReason string

const (
	// FailureTransport covers network errors and malformed responses.
	FailureTransport FailureReason = "transport"
	// FailureRejected means the backend answered with a non-2xx status.
	FailureRejected FailureReason = "rejected"
	// FailureOrphanedPreference means the hosted-payment preference was
	// created but the subsequent order creation failed, leaving the
	// preference with no corresponding order on the provider side.
	FailureOrphanedPreference FailureReason = "orphaned_preference"
)

// Result is the outcome token returned by Submit. RedirectURL is set only
// for OutcomeRedirect, Reason only for OutcomeFailed.
type Result struct {
	Outcome     Outcome       `json:"outcome"`
	RedirectURL string        `json:"redirectUrl,omitempty"`
	Reason      FailureReason `json:"reason,omitempty"`
}

// Store owns the in-progress order: the cart lines and the submission
// protocol. The total is always derived from the current lines, so it
// cannot drift from the list contents.
type Store struct {
	client    *api.Client
	creatorID int
	currency  string
	logger    *slog.Logger

	submissions metric.Int64Counter

	mu      sync.Mutex
	lines   []domain.Line
	nextSeq uint64
}

func NewStore(client *api.Client, creatorID int, currency string, logger *slog.Logger) *Store {
	submissions, _ := meter.Int64Counter("order_submissions_total",
		metric.WithDescription("Order submissions by outcome"),
	)

	return &Store{
		client:      client,
		creatorID:   creatorID,
		currency:    currency,
		logger:      logger,
		submissions: submissions,
	}
}

// AddLine appends a line built from product with a fresh sequence number.
// Always succeeds; sequence numbers are never reused within a session.
func (s *Store) AddLine(product domain.Product, comment string) domain.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	line := domain.Line{
		Product: product,
		Comment: comment,
		AddedAt: time.Now().UTC(),
		AddedBy: s.creatorID,
		Seq:     s.nextSeq,
	}
	s.nextSeq++
	s.lines = append(s.lines, line)

	return line
}

// RemoveLine removes the line with the given sequence number. A sequence
// number with no matching line is a no-op.
func (s *Store) RemoveLine(seq uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, line := range s.lines {
		if line.Seq == seq {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			return
		}
	}
}

// Lines returns a snapshot copy of the current cart lines.
func (s *Store) Lines() []domain.Line {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines := make([]domain.Line, len(s.lines))
	copy(lines, s.lines)
	return lines
}

// Total is the running total, recomputed from the current lines.
func (s *Store) Total() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sum(s.lines)
}

func sum(lines []domain.Line) float64 {
	var total float64
	for _, line := range lines {
		total += line.Price
	}
	return total
}

// Submit executes the order submission protocol against a snapshot of the
// cart. On confirmed success the cart is cleared in a single transition;
// on any failure it is left untouched so the user can retry. Errors never
// propagate: every failure maps to a failed Result.
func (s *Store) Submit(ctx context.Context, checkout domain.Checkout) Result {
	ctx, span := tracer.Start(ctx, "submit order",
		trace.WithAttributes(
			attribute.String("order.payment_method", string(checkout.PaymentMethod)),
			attribute.String("order.delivery_type", string(checkout.DeliveryType)),
		),
	)
	defer span.End()

	s.mu.Lock()
	lines := make([]domain.Line, len(s.lines))
	copy(lines, s.lines)
	s.mu.Unlock()

	address := checkout.Address
	if checkout.DeliveryType == domain.DeliveryTypePickup {
		address = domain.PickupAddress
	}

	orderLines := make([]domain.OrderLine, 0, len(lines))
	for _, line := range lines {
		orderLines = append(orderLines, domain.OrderLine{ID: line.ID, Comment: line.Comment})
	}

	req := domain.OrderRequest{
		Order:         orderLines,
		Price:         sum(lines),
		PhoneNumber:   checkout.PhoneNumber,
		Address:       address,
		PaymentMethod: checkout.PaymentMethod,
		DeliveryType:  checkout.DeliveryType,
		UserID:        s.creatorID,
	}

	var result Result
	if checkout.PaymentMethod == domain.PaymentMethodHosted {
		result = s.submitHosted(ctx, lines, req)
	} else {
		result = s.submitDirect(ctx, req)
	}

	s.submissions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("outcome", string(result.Outcome)),
	))
	if result.Outcome == OutcomeFailed {
		span.SetStatus(codes.Error, string(result.Reason))
	}

	return result
}

func (s *Store) submitDirect(ctx context.Context, req domain.OrderRequest) Result {
	if err := s.client.CreateOrder(ctx, req); err != nil {
		reason := failureReason(err)
		s.logger.Error("order submission failed", "error", err, "reason", reason)
		return Result{Outcome: OutcomeFailed, Reason: reason}
	}

	s.clear()
	s.logger.Info("order submitted", "payment_method", req.PaymentMethod, "price", req.Price)
	return Result{Outcome: OutcomeAccepted}
}

func (s *Store) submitHosted(ctx context.Context, lines []domain.Line, req domain.OrderRequest) Result {
	items := make([]domain.PreferenceItem, 0, len(lines))
	for _, line := range lines {
		if line.Price <= 0 {
			continue
		}
		items = append(items, domain.PreferenceItem{
			ID:         strconv.Itoa(line.ID),
			Title:      line.Name,
			CurrencyID: s.currency,
			PictureURL: line.ImageURL,
			UnitPrice:  line.Price,
			Quantity:   1,
		})
	}

	preference, err := s.client.CreatePreference(ctx, items)
	if err != nil {
		reason := failureReason(err)
		s.logger.Error("preference creation failed", "error", err, "reason", reason)
		return Result{Outcome: OutcomeFailed, Reason: reason}
	}

	req.PreferenceID = preference.ID
	if err := s.client.CreateOrder(ctx, req); err != nil {
		// The preference now exists on the provider side with no order
		// behind it. The backend exposes no void call, so the orphan is
		// surfaced rather than compensated.
		s.logger.Warn("payment preference orphaned", "error", err, "preference_id", preference.ID)
		return Result{Outcome: OutcomeFailed, Reason: FailureOrphanedPreference}
	}

	s.clear()
	s.logger.Info("order submitted", "payment_method", req.PaymentMethod, "price", req.Price,
		"preference_id", preference.ID)
	return Result{Outcome: OutcomeRedirect, RedirectURL: preference.InitPoint}
}

func (s *Store) clear() {
	s.mu.Lock()
	s.lines = nil
	s.mu.Unlock()
}

func failureReason(err error) FailureReason {
	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return FailureRejected
	}
	return FailureTransport
}
