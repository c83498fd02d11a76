// Package observability decorates a cart service port with tracing,
// logging, and metrics.
package observability

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/sugarloaf/cakecart/internal/domains/cart/domain"
	"github.com/sugarloaf/cakecart/internal/domains/cart/ports"
)

const tracerName = "github.com/sugarloaf/cakecart/internal/domains/cart/adapters/observability/service"

// Service decorates a cart service with instrumentation.
type Service struct {
	inner   ports.Service
	userID  string
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

// WithLogger injects a slog logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

// WithTracer injects a tracer implementation.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// WithMeter injects the meter used to create service metrics instruments.
func WithMeter(m metric.Meter) Option {
	return func(s *Service) { s.metrics = newServiceMetrics(m) }
}

// New wires a decorator around the core store for one user's session.
func New(inner ports.Service, userID string, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		userID:  userID,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  defaultLogger(),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if s.logger == nil {
		s.logger = defaultLogger()
	}
	return s
}

func (s *Service) Snapshot(ctx context.Context) ports.Snapshot {
	return s.inner.Snapshot(ctx)
}

// AddItem records the add attempt and whether it hit the bakery boundary.
func (s *Service) AddItem(ctx context.Context, candidate domain.CartItem) (ports.AddOutcome, error) {
	ctx, span := s.startSpan(ctx, "Service.AddItem",
		attribute.String("cart.bakery_id", candidate.BakeryID),
		attribute.String("cake.kind", string(candidate.Ref.Kind)))
	defer span.End()

	outcome, err := s.inner.AddItem(ctx, candidate)
	if err != nil {
		return outcome, s.handleError(ctx, span, err, "failed to add cart item")
	}
	switch outcome.Status {
	case ports.AddAccepted:
		s.metrics.recordMutation(ctx, "add")
		s.logInfo(ctx, "cart item added", slog.String("bakery", candidate.BakeryID))
	case ports.AddNeedsConfirmation:
		s.metrics.recordSwitchRequested(ctx)
		span.SetAttributes(attribute.Bool("cart.switch_requested", true))
		s.logInfo(ctx, "bakery switch requested",
			slog.String("from", outcome.Switch.FromBakeryID),
			slog.String("to", outcome.Switch.ToBakeryID))
	}
	return outcome, nil
}

func (s *Service) EditItem(ctx context.Context, itemID string, cfg domain.ItemConfig) (domain.CartItem, error) {
	ctx, span := s.startSpan(ctx, "Service.EditItem", attribute.String("cart.item_id", itemID))
	defer span.End()

	item, err := s.inner.EditItem(ctx, itemID, cfg)
	if err != nil {
		return item, s.handleError(ctx, span, err, "failed to edit cart item")
	}
	s.metrics.recordMutation(ctx, "edit")
	s.logInfo(ctx, "cart item edited", slog.String("item", itemID))
	return item, nil
}

func (s *Service) UpdateQuantity(ctx context.Context, itemID string, quantity int32) error {
	ctx, span := s.startSpan(ctx, "Service.UpdateQuantity",
		attribute.String("cart.item_id", itemID), attribute.Int("cart.quantity", int(quantity)))
	defer span.End()

	if err := s.inner.UpdateQuantity(ctx, itemID, quantity); err != nil {
		return s.handleError(ctx, span, err, "failed to update quantity")
	}
	s.metrics.recordMutation(ctx, "quantity")
	return nil
}

func (s *Service) RemoveItem(ctx context.Context, itemID string) error {
	ctx, span := s.startSpan(ctx, "Service.RemoveItem", attribute.String("cart.item_id", itemID))
	defer span.End()

	if err := s.inner.RemoveItem(ctx, itemID); err != nil {
		return s.handleError(ctx, span, err, "failed to remove cart item")
	}
	s.metrics.recordMutation(ctx, "remove")
	return nil
}

func (s *Service) ClearCart(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Service.ClearCart")
	defer span.End()

	if err := s.inner.ClearCart(ctx); err != nil {
		return s.handleError(ctx, span, err, "failed to clear cart")
	}
	s.metrics.recordMutation(ctx, "clear")
	s.logInfo(ctx, "cart cleared")
	return nil
}

func (s *Service) ConfirmBakerySwitch(ctx context.Context) (ports.AddOutcome, error) {
	ctx, span := s.startSpan(ctx, "Service.ConfirmBakerySwitch")
	defer span.End()

	outcome, err := s.inner.ConfirmBakerySwitch(ctx)
	if err != nil {
		return outcome, s.handleError(ctx, span, err, "failed to confirm bakery switch")
	}
	s.metrics.recordSwitchResolved(ctx, "confirmed")
	s.logInfo(ctx, "bakery switch confirmed")
	return outcome, nil
}

func (s *Service) CancelBakerySwitch(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Service.CancelBakerySwitch")
	defer span.End()

	if err := s.inner.CancelBakerySwitch(ctx); err != nil {
		return s.handleError(ctx, span, err, "failed to cancel bakery switch")
	}
	s.metrics.recordSwitchResolved(ctx, "cancelled")
	return nil
}

func (s *Service) SetCheckoutMeta(ctx context.Context, meta json.RawMessage) error {
	ctx, span := s.startSpan(ctx, "Service.SetCheckoutMeta")
	defer span.End()

	if err := s.inner.SetCheckoutMeta(ctx, meta); err != nil {
		return s.handleError(ctx, span, err, "failed to set checkout metadata")
	}
	return nil
}

func (s *Service) Sync(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Service.Sync")
	defer span.End()

	if err := s.inner.Sync(ctx); err != nil {
		s.metrics.recordSyncFailure(ctx)
		return s.handleError(ctx, span, err, "cart reconciliation failed")
	}
	return nil
}

func (s *Service) CompleteOrder(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Service.CompleteOrder")
	defer span.End()

	if err := s.inner.CompleteOrder(ctx); err != nil {
		return s.handleError(ctx, span, err, "failed to retire cart after order")
	}
	s.logInfo(ctx, "cart retired after order")
	return nil
}

func (s *Service) TearDown(ctx context.Context) error {
	ctx, span := s.startSpan(ctx, "Service.TearDown")
	defer span.End()

	if err := s.inner.TearDown(ctx); err != nil {
		return s.handleError(ctx, span, err, "failed to tear down cart session")
	}
	return nil
}

func (s *Service) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("cart.user", s.userID))
	return s.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	attrs = append(attrs, slog.String("error", err.Error()), slog.String("user", s.userID))
	s.logger.LogAttrs(ctx, slog.LevelWarn, msg, attrs...)
	return err
}

func (s *Service) logInfo(ctx context.Context, msg string, args ...any) {
	args = append(args, slog.String("user", s.userID))
	s.logger.InfoContext(ctx, msg, args...)
}

func defaultLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type serviceMetrics struct {
	mutations       metric.Int64Counter
	switchRequested metric.Int64Counter
	switchResolved  metric.Int64Counter
	syncFailures    metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	var metrics serviceMetrics
	metrics.mutations, _ = m.Int64Counter("cart.mutations",
		metric.WithDescription("Cart mutations by operation"))
	metrics.switchRequested, _ = m.Int64Counter("cart.switch.requested",
		metric.WithDescription("Cross-bakery add attempts awaiting confirmation"))
	metrics.switchResolved, _ = m.Int64Counter("cart.switch.resolved",
		metric.WithDescription("Bakery switch confirmations and cancellations"))
	metrics.syncFailures, _ = m.Int64Counter("cart.sync.failures",
		metric.WithDescription("Failed reconciliation attempts surfaced to callers"))
	return metrics
}

func (m serviceMetrics) recordMutation(ctx context.Context, op string) {
	if m.mutations != nil {
		m.mutations.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
	}
}

func (m serviceMetrics) recordSwitchRequested(ctx context.Context) {
	if m.switchRequested != nil {
		m.switchRequested.Add(ctx, 1)
	}
}

func (m serviceMetrics) recordSwitchResolved(ctx context.Context, resolution string) {
	if m.switchResolved != nil {
		m.switchResolved.Add(ctx, 1, metric.WithAttributes(attribute.String("resolution", resolution)))
	}
}

func (m serviceMetrics) recordSyncFailure(ctx context.Context) {
	if m.syncFailures != nil {
		m.syncFailures.Add(ctx, 1)
	}
}
