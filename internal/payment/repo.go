package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/logger"
	"github.com/aromas-andinas/storefront/internal/store"
)

// CollectionKey is the record-store key under which every payment lives.
const CollectionKey = "payments"

// Storage is the slice of the record store the repository needs.
type Storage interface {
	Load(ctx context.Context, key string) (store.Collection, store.Version, error)
	CompareAndSave(ctx context.Context, key string, c store.Collection, expect store.Version) error
}

// Repo persists payments as one collection in the record store. Point updates
// load the collection, mutate the matching record and write the whole
// collection back under a version check.
type Repo struct {
	store Storage
	log   *logger.Logger
}

func NewRepo(s Storage, log *logger.Logger) *Repo {
	return &Repo{store: s, log: log}
}

func (r *Repo) load(ctx context.Context) ([]Payment, store.Version, error) {
	c, version, err := r.store.Load(ctx, CollectionKey)
	if err != nil {
		return nil, store.NoVersion, err
	}
	payments, err := store.DecodeAll[Payment](c)
	if err != nil {
		return nil, store.NoVersion, errs.NewPersistence("store", "decode", err)
	}
	return payments, version, nil
}

func (r *Repo) save(ctx context.Context, payments []Payment, expect store.Version) error {
	c, err := store.Encode(payments)
	if err != nil {
		return errs.NewPersistence("store", "encode", err)
	}
	return r.store.CompareAndSave(ctx, CollectionKey, c, expect)
}

// Create appends a new payment record. A record with the same order id is
// rejected with errs.ErrDuplicateOrder; the caller regenerates identifiers
// and retries.
func (r *Repo) Create(ctx context.Context, p *Payment) error {
	for attempt := 0; attempt < 2; attempt++ {
		payments, version, err := r.load(ctx)
		if err != nil {
			return err
		}
		for i := range payments {
			if payments[i].OrderID == p.OrderID {
				return fmt.Errorf("%w: %s", errs.ErrDuplicateOrder, p.OrderID)
			}
		}

		err = r.save(ctx, append(payments, *p), version)
		if err == nil {
			r.log.LogPayment("CREATE", p.OrderID, fmt.Sprintf("payment %s recorded as %s", p.ID, p.Status))
			return nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
	}
	return errs.ErrVersionConflict
}

// UpdateStatus moves the record for orderID to next and, when gatewayRef is
// non-empty, attaches the gateway's reference. Transitions the state machine
// forbids, including any move out of a terminal state, are rejected.
func (r *Repo) UpdateStatus(ctx context.Context, orderID string, next Status, gatewayRef string) (*Payment, error) {
	for attempt := 0; attempt < 2; attempt++ {
		payments, version, err := r.load(ctx)
		if err != nil {
			return nil, err
		}

		idx := -1
		for i := range payments {
			if payments[i].OrderID == orderID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, errs.NewNotFound("payment for order", orderID)
		}

		current := payments[idx].Status
		if !current.CanTransitionTo(next) {
			return nil, errs.NewValidationMsg(
				fmt.Sprintf("cannot move payment for order %s from %s to %s", orderID, current, next))
		}

		payments[idx].Status = next
		if gatewayRef != "" {
			payments[idx].GatewayReference = gatewayRef
		}
		payments[idx].UpdatedAt = time.Now().UTC()

		err = r.save(ctx, payments, version)
		if err == nil {
			r.log.LogPayment("UPDATE", orderID, fmt.Sprintf("status %s -> %s", current, next))
			updated := payments[idx]
			return &updated, nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return nil, err
		}
	}
	return nil, errs.ErrVersionConflict
}

// MarkFailed is the explicit failure path: the record moves to failed and the
// gateway's message is kept for manual reconciliation.
func (r *Repo) MarkFailed(ctx context.Context, orderID, reason string) error {
	for attempt := 0; attempt < 2; attempt++ {
		payments, version, err := r.load(ctx)
		if err != nil {
			return err
		}

		idx := -1
		for i := range payments {
			if payments[i].OrderID == orderID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return errs.NewNotFound("payment for order", orderID)
		}
		if payments[idx].Status.Terminal() {
			return nil
		}

		payments[idx].Status = StatusFailed
		payments[idx].FailureReason = reason
		payments[idx].UpdatedAt = time.Now().UTC()

		err = r.save(ctx, payments, version)
		if err == nil {
			r.log.LogPayment("FAIL", orderID, reason)
			return nil
		}
		if !errors.Is(err, errs.ErrVersionConflict) {
			return err
		}
	}
	return errs.ErrVersionConflict
}

// GetByOrderID returns the payment for orderID.
func (r *Repo) GetByOrderID(ctx context.Context, orderID string) (*Payment, error) {
	payments, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range payments {
		if payments[i].OrderID == orderID {
			p := payments[i]
			return &p, nil
		}
	}
	return nil, errs.NewNotFound("payment for order", orderID)
}

// List returns every payment, oldest first. Empty storage lists as empty.
func (r *Repo) List(ctx context.Context) ([]Payment, error) {
	payments, _, err := r.load(ctx)
	if err != nil {
		return nil, err
	}
	return payments, nil
}
