// Package payment drives the order/payment state machine: issuing payment
// intents and reconciling asynchronous provider webhooks idempotently.
package payment

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/shopverse/storefront-api/apperr"
	"github.com/shopverse/storefront-api/cache"
	"github.com/shopverse/storefront-api/models"
	"github.com/shopverse/storefront-api/store"
)

const (
	EventPaymentSucceeded = "payment_intent.succeeded"
	EventPaymentFailed    = "payment_intent.payment_failed"

	// dedupeTTL bounds the redis fast path; the payment_events table is the
	// authoritative dedupe and has no expiry.
	dedupeTTL = 24 * time.Hour
)

// Event is the provider's webhook envelope.
type Event struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ID       string            `json:"id"`
			Metadata map[string]string `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

type Config struct {
	WebhookSecret string
	Currency      string
	// SignatureTolerance rejects events whose timestamp is too far from now.
	// Zero disables the freshness check.
	SignatureTolerance time.Duration
}

type Service struct {
	stores   store.Stores
	provider Provider
	cache    cache.Cache
	cfg      Config
}

func NewService(stores store.Stores, provider Provider, c cache.Cache, cfg Config) *Service {
	if cfg.Currency == "" {
		cfg.Currency = "usd"
	}
	return &Service{stores: stores, provider: provider, cache: c, cfg: cfg}
}

// IssueIntent asks the provider for a payment intent covering the order total
// and records the intent reference. The payment status stays pending until the
// provider confirms via webhook.
func (s *Service) IssueIntent(ctx context.Context, orderID uint) (*Intent, error) {
	order, err := s.stores.Orders().Get(ctx, orderID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.New(apperr.CodeNotFound, "order not found")
		}
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to load order", err)
	}
	if order.PaymentStatus != models.PaymentStatusPending {
		return nil, apperr.Newf(apperr.CodeConflict, "order payment is already %s", order.PaymentStatus)
	}

	amountCents := order.TotalAmount.Shift(2).Round(0).IntPart()
	intent, err := s.provider.CreateIntent(ctx, amountCents, s.cfg.Currency, map[string]string{
		"order_id": strconv.FormatUint(uint64(order.ID), 10),
	})
	if err != nil {
		return nil, apperr.Wrap(apperr.CodeProviderUnavailable, "payment provider unavailable", err)
	}

	// Column-scoped write: a webhook may have transitioned the payment status
	// while the provider call was in flight, and that transition must stand.
	if err := s.stores.Orders().SetPaymentIntent(ctx, order.ID, intent.ID); err != nil {
		return nil, apperr.Wrap(apperr.CodeInternal, "failed to record payment intent", err)
	}
	return intent, nil
}

// errReplay marks an event whose id has already been processed. It only exists
// to abort the transaction; the caller reports success.
var errReplay = errors.New("payment event replay")

// ReconcileEvent verifies and applies a provider webhook. Replayed event ids
// and out-of-order deliveries are no-ops; an invalid signature drops the event
// with no side effects; unknown event types are accepted and ignored.
func (s *Service) ReconcileEvent(ctx context.Context, payload []byte, sigHeader string) error {
	if err := verifySignature(payload, sigHeader, s.cfg.WebhookSecret, s.cfg.SignatureTolerance); err != nil {
		return apperr.New(apperr.CodeInvalidSignature, "invalid webhook signature")
	}

	var ev Event
	if err := json.Unmarshal(payload, &ev); err != nil {
		return apperr.New(apperr.CodeInvalidInput, "malformed event payload")
	}
	if ev.ID == "" {
		return apperr.New(apperr.CodeInvalidInput, "event id is missing")
	}

	var target models.PaymentStatus
	switch ev.Type {
	case EventPaymentSucceeded:
		target = models.PaymentStatusPaid
	case EventPaymentFailed:
		target = models.PaymentStatusFailed
	default:
		slog.InfoContext(ctx, "ignoring payment event", "type", ev.Type, "event_id", ev.ID)
		return nil
	}

	if s.seen(ctx, ev.ID) {
		return nil
	}

	orderID, err := strconv.ParseUint(ev.Data.Object.Metadata["order_id"], 10, 64)
	if err != nil {
		return apperr.New(apperr.CodeInvalidInput, "event carries no order reference")
	}

	err = s.stores.Atomic(ctx, func(tx store.Stores) error {
		// The event record and the transition commit or roll back together;
		// the unique event id makes replays collide here.
		record := &models.PaymentEvent{EventID: ev.ID, OrderID: uint(orderID), Type: ev.Type}
		if err := tx.PaymentEvents().Insert(ctx, record); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return errReplay
			}
			return apperr.Wrap(apperr.CodeInternal, "failed to record payment event", err)
		}

		// Row lock: two in-flight events for the same order serialize here, so
		// the transition check below never runs against a stale status.
		order, err := tx.Orders().GetForUpdate(ctx, uint(orderID))
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeNotFound, "order not found")
			}
			return apperr.Wrap(apperr.CodeInternal, "failed to load order", err)
		}

		if order.PaymentStatus == target {
			return nil
		}
		if !models.CanTransitionPayment(order.PaymentStatus, target) {
			// Out-of-order delivery, e.g. "failed" arriving after "paid".
			// The event is recorded and dropped; the settled status stands.
			slog.WarnContext(ctx, "dropping out-of-order payment event",
				"event_id", ev.ID, "order_id", order.ID,
				"current", order.PaymentStatus, "target", target)
			return nil
		}

		order.PaymentStatus = target
		order.PaymentRef = ev.Data.Object.ID
		if err := tx.Orders().Save(ctx, order); err != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to update payment status", err)
		}
		slog.InfoContext(ctx, "payment status reconciled",
			"order_id", order.ID, "status", target, "event_id", ev.ID)
		return nil
	})
	if errors.Is(err, errReplay) {
		return nil
	}
	if err != nil {
		return err
	}

	s.markSeen(ctx, ev.ID)
	return nil
}

// UpdateOrderStatus applies an administrative fulfilment transition through
// the explicit state table. The read-check-write runs under a row lock so a
// webhook landing mid-update is never overwritten with a stale payment status.
func (s *Service) UpdateOrderStatus(ctx context.Context, orderID uint, target models.OrderStatus) (*models.Order, error) {
	var updated *models.Order
	err := s.stores.Atomic(ctx, func(tx store.Stores) error {
		order, err := tx.Orders().GetForUpdate(ctx, orderID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return apperr.New(apperr.CodeNotFound, "order not found")
			}
			return apperr.Wrap(apperr.CodeInternal, "failed to load order", err)
		}
		if !models.CanTransitionOrder(order.Status, target) {
			return apperr.Newf(apperr.CodeInvalidTransition, "cannot move order from %s to %s", order.Status, target)
		}
		order.Status = target
		if err := tx.Orders().Save(ctx, order); err != nil {
			return apperr.Wrap(apperr.CodeInternal, "failed to update order status", err)
		}
		updated = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// seen consults the dedupe fast path; a cache failure just means the
// authoritative unique constraint does the work.
func (s *Service) seen(ctx context.Context, eventID string) bool {
	if s.cache == nil {
		return false
	}
	v, err := s.cache.Get(ctx, s.cache.GenerateKey("payment-event", eventID))
	return err == nil && v != ""
}

func (s *Service) markSeen(ctx context.Context, eventID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.GenerateKey("payment-event", eventID), "1", dedupeTTL); err != nil {
		slog.WarnContext(ctx, "payment event cache write failed", "event_id", eventID, "error", err)
	}
}
