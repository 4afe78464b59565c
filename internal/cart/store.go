// Package cart holds the client's believed cart state and keeps it
// reconciled with the remote source of truth. Mutating intents apply an
// optimistic local change for responsiveness, then either adopt the
// confirmed server state wholesale or roll back to the pre-mutation
// snapshot.
package cart

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/hiho-nelson/go-shopify-storefront/internal/shopify"
)

// Store is the single owner of the cart object. Consumers read snapshots
// and invoke intents; they never mutate cart state directly. The mutex
// covers state transitions only, never a network round trip, so intents
// against different lines may be in flight concurrently. Two intents
// against the same line are not serialized: last write wins, and the
// pending set is what gates the UI from issuing them.
type Store struct {
	client  *Client
	storage Storage
	logger  *zap.Logger

	mu      sync.Mutex
	cart    *shopify.Cart
	loading bool
	lastErr string
	isOpen  bool
	pending map[string]struct{}
}

func NewStore(client *Client, storage Storage, logger *zap.Logger) *Store {
	return &Store{
		client:  client,
		storage: storage,
		logger:  logger,
		pending: make(map[string]struct{}),
	}
}

// Cart returns a deep copy of the current believed state, or nil.
func (s *Store) Cart() *shopify.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LastError returns the outcome of the most recent failed operation.
// It is a single value overwritten by the next operation, not a log.
func (s *Store) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastErr
}

func (s *Store) IsOpen() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isOpen
}

// IsLineUpdating reports whether a mutation for the line is in flight.
func (s *Store) IsLineUpdating(lineID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.pending[lineID]
	return ok
}

func (s *Store) OpenCart(ctx context.Context) {
	s.setOpen(ctx, true)
}

func (s *Store) CloseCart(ctx context.Context) {
	s.setOpen(ctx, false)
}

func (s *Store) ToggleCart(ctx context.Context) {
	s.mu.Lock()
	s.isOpen = !s.isOpen
	s.persistLocked(ctx)
	s.mu.Unlock()
}

func (s *Store) setOpen(ctx context.Context, open bool) {
	s.mu.Lock()
	s.isOpen = open
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// Load rehydrates from the persisted shell: the identifier is read from
// storage and the cart is revalidated against the remote system before
// being trusted. A missing remote cart is a normal lifecycle outcome and
// resets local state silently; any other failure keeps the previous
// state and defers to the next load attempt. Neither surfaces an error.
func (s *Store) Load(ctx context.Context) {
	shell, err := s.storage.Load(ctx)
	if err != nil {
		if !errors.Is(err, ErrShellNotFound) {
			s.logger.Warn("cart shell load failed", zap.Error(err))
		}
		return
	}

	s.mu.Lock()
	s.isOpen = shell.IsOpen
	s.mu.Unlock()

	if shell.Cart == nil || shell.Cart.ID == "" {
		return
	}

	confirmed, err := s.client.GetCart(ctx, shell.Cart.ID)
	if errors.Is(err, shopify.ErrCartNotFound) {
		s.logger.Info("persisted cart expired remotely, resetting", zap.String("cart_id", shell.Cart.ID))
		s.mu.Lock()
		s.cart = nil
		s.persistLocked(ctx)
		s.mu.Unlock()
		return
	}
	if err != nil {
		// Transient: keep previous state, resolve on the next load.
		s.logger.Warn("cart revalidation failed", zap.String("cart_id", shell.Cart.ID), zap.Error(err))
		return
	}

	s.mu.Lock()
	s.cart = confirmed
	s.persistLocked(ctx)
	s.mu.Unlock()
}

// AddItem adds a variant selection to the cart, creating the cart first
// when no identifier is known yet. A new line has no identifier until
// the remote system acknowledges it, so there is no optimistic line to
// show; the loading flag covers the round trip.
func (s *Store) AddItem(ctx context.Context, item shopify.CartItem) error {
	s.mu.Lock()
	cartID := ""
	if s.cart != nil {
		cartID = s.cart.ID
	}
	s.loading = true
	s.lastErr = ""
	s.mu.Unlock()

	var confirmed *shopify.Cart
	var err error
	if cartID == "" {
		confirmed, err = s.client.CreateCart(ctx, []shopify.CartItem{item})
	} else {
		confirmed, err = s.client.AddLines(ctx, cartID, []shopify.CartItem{item})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if err != nil {
		s.lastErr = err.Error()
		s.logger.Error("add item failed", zap.String("variant_id", item.VariantID), zap.Error(err))
		return err
	}
	s.commitLocked(confirmed)
	s.persistLocked(ctx)
	return nil
}

// UpdateQuantity changes a line's quantity optimistically, then
// reconciles with the confirmed state or rolls back. A target quantity
// of zero is a removal, not an update: the remote update mutation does
// not guarantee deleting a zero-quantity line the way an explicit
// removal does.
func (s *Store) UpdateQuantity(ctx context.Context, lineID string, quantity int) error {
	if quantity <= 0 {
		return s.RemoveItem(ctx, lineID)
	}

	s.mu.Lock()
	if s.cart == nil || s.cart.ID == "" || s.cart.Line(lineID) == nil {
		s.mu.Unlock()
		return nil
	}
	cartID := s.cart.ID
	t := s.beginLocked(func(c *shopify.Cart) {
		c.Line(lineID).Quantity = quantity
	})
	s.pending[lineID] = struct{}{}
	s.lastErr = ""
	s.mu.Unlock()

	confirmed, err := s.client.UpdateLines(ctx, cartID, []shopify.LineUpdate{{ID: lineID, Quantity: quantity}})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, lineID)
	if err != nil {
		s.revertLocked(t)
		s.lastErr = err.Error()
		s.logger.Error("update quantity failed, rolled back", zap.String("line_id", lineID), zap.Error(err))
		return err
	}
	s.commitLocked(confirmed)
	s.persistLocked(ctx)
	return nil
}

// RemoveItem deletes a line optimistically, then reconciles or rolls back.
func (s *Store) RemoveItem(ctx context.Context, lineID string) error {
	s.mu.Lock()
	if s.cart == nil || s.cart.ID == "" || s.cart.Line(lineID) == nil {
		s.mu.Unlock()
		return nil
	}
	cartID := s.cart.ID
	t := s.beginLocked(func(c *shopify.Cart) {
		lines := c.Lines[:0]
		for _, l := range c.Lines {
			if l.ID != lineID {
				lines = append(lines, l)
			}
		}
		c.Lines = lines
	})
	s.pending[lineID] = struct{}{}
	s.lastErr = ""
	s.mu.Unlock()

	confirmed, err := s.client.RemoveLines(ctx, cartID, []string{lineID})

	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, lineID)
	if err != nil {
		s.revertLocked(t)
		s.lastErr = err.Error()
		s.logger.Error("remove item failed, rolled back", zap.String("line_id", lineID), zap.Error(err))
		return err
	}
	s.commitLocked(confirmed)
	s.persistLocked(ctx)
	return nil
}

// ClearCart removes every line, one remove intent per line, each allowed
// to succeed or fail independently. A partial failure leaves a partially
// cleared cart; the next reconciliation reflects remote state.
func (s *Store) ClearCart(ctx context.Context) error {
	s.mu.Lock()
	if s.cart == nil || s.cart.ID == "" {
		s.mu.Unlock()
		return nil
	}
	lineIDs := make([]string, len(s.cart.Lines))
	for i, l := range s.cart.Lines {
		lineIDs[i] = l.ID
	}
	s.mu.Unlock()

	var errs []error
	for _, lineID := range lineIDs {
		if err := s.RemoveItem(ctx, lineID); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// persistLocked writes the shell to durable storage. Caller holds s.mu.
func (s *Store) persistLocked(ctx context.Context) {
	shell := &Shell{IsOpen: s.isOpen}
	if s.cart != nil && s.cart.ID != "" {
		shell.Cart = &ShellCart{ID: s.cart.ID, Cost: s.cart.Cost}
	}
	if err := s.storage.Save(ctx, shell); err != nil {
		s.logger.Warn("cart shell save failed", zap.Error(err))
	}
}
