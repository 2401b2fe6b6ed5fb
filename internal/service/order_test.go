package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

func TestOrderService_Create_Success(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	lamp := store.addItem(seller, "Lamp", 1500)
	desk := store.addItem(seller, "Desk", 9000)
	addr := store.addAddress(buyer)
	store.stock[lamp] = 5
	store.setCart(buyer, lamp, 2)
	store.setCart(buyer, desk, 1) // untracked

	pub := &recordingPublisher{}
	svc := NewOrderService(store, pub)

	conf, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	require.NoError(t, err)
	assert.True(t, conf.OrderID.Valid, "expected a valid order ID")

	// Cart is drained.
	assert.Empty(t, store.cart[buyer], "expected empty cart")
	// Tracked stock is decremented; untracked stays untracked.
	assert.Equal(t, int32(3), store.stock[lamp])
	_, tracked := store.stock[desk]
	assert.False(t, tracked, "expected desk to stay untracked")
	// Order lines recorded.
	lines := store.lines[repository.ToUUID(conf.OrderID)]
	require.Len(t, lines, 2)
	for _, line := range lines {
		assert.False(t, line.Dispatched, "expected new lines undispatched")
	}
	// Event published.
	require.Len(t, pub.created, 1)
	assert.Equal(t, 2, pub.created[0].LineCount)
}

func TestOrderService_Create_PurgesAndReportsConflict(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	lamp := store.addItem(seller, "Lamp", 1500)
	desk := store.addItem(seller, "Desk", 9000)
	addr := store.addAddress(buyer)
	store.stock[lamp] = 1
	store.stock[desk] = 10
	store.setCart(buyer, lamp, 2) // unsatisfiable
	store.setCart(buyer, desk, 1)

	pub := &recordingPublisher{}
	svc := NewOrderService(store, pub)

	_, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	var conflict *domain.StockConflictError
	require.True(t, errors.As(err, &conflict), "expected StockConflictError, got %v", err)
	require.Len(t, conflict.Lines, 1)
	assert.Equal(t, lamp, repository.ToUUID(conflict.Lines[0].ItemID), "expected the lamp line reported")

	// The purge commits: the offending line is gone, the rest stays.
	_, ok := store.cartQty(buyer, lamp)
	assert.False(t, ok, "expected unsatisfiable line purged")
	qty, _ := store.cartQty(buyer, desk)
	assert.Equal(t, int32(1), qty, "expected satisfiable line kept")
	// No order was made and no stock moved.
	assert.Empty(t, store.orders)
	assert.Equal(t, int32(10), store.stock[desk], "expected desk stock unchanged")
	assert.Empty(t, pub.created, "expected no OrderCreated event on conflict")
}

func TestOrderService_Create_DecrementRaceRollsBack(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	lamp := store.addItem(seller, "Lamp", 1500)
	addr := store.addAddress(buyer)
	store.stock[lamp] = 5
	store.setCart(buyer, lamp, 2)
	store.failNextDecrement = true

	svc := NewOrderService(store, &recordingPublisher{})

	_, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	var conflict *domain.StockConflictError
	require.True(t, errors.As(err, &conflict), "expected StockConflictError, got %v", err)

	// Everything rolls back: cart intact, no order, stock untouched.
	qty, _ := store.cartQty(buyer, lamp)
	assert.Equal(t, int32(2), qty, "expected cart intact")
	assert.Empty(t, store.orders, "expected no orders after rollback")
	assert.Equal(t, int32(5), store.stock[lamp], "expected stock unchanged")
}

func TestOrderService_Create_EmptyCart(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	addr := store.addAddress(buyer)

	svc := NewOrderService(store, &recordingPublisher{})

	_, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	require.ErrorIs(t, err, domain.ErrEmptyCart)
}

func TestOrderService_Create_ForeignAddress(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	other := store.addUser("other")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)
	addr := store.addAddress(other)
	store.setCart(buyer, item, 1)

	svc := NewOrderService(store, &recordingPublisher{})

	_, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	require.ErrorIs(t, err, domain.ErrAddressNotFound, "another user's address is not found")
}

func TestOrderService_Create_Idempotent(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	lamp := store.addItem(seller, "Lamp", 1500)
	addr := store.addAddress(buyer)
	store.stock[lamp] = 5
	store.setCart(buyer, lamp, 2)

	svc := NewOrderService(store, &recordingPublisher{})
	ctx := ctxWithUser(buyer)

	_, err := svc.Create(ctx, repository.UUIDFrom(addr))
	require.NoError(t, err)

	// A second checkout without a cart makes no second order.
	_, err = svc.Create(ctx, repository.UUIDFrom(addr))
	require.ErrorIs(t, err, domain.ErrEmptyCart)
	assert.Len(t, store.orders, 1, "expected exactly one order")
}

func TestOrderService_Get(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	other := store.addUser("other")
	seller := store.addUser("seller")
	lamp := store.addItem(seller, "Lamp", 1500)
	addr := store.addAddress(buyer)
	store.setCart(buyer, lamp, 1)

	svc := NewOrderService(store, &recordingPublisher{})
	conf, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	require.NoError(t, err)

	detail, err := svc.Get(ctxWithUser(buyer), conf.OrderID)
	require.NoError(t, err)
	assert.Len(t, detail.Lines, 1)

	// Another user cannot see the order.
	_, err = svc.Get(ctxWithUser(other), conf.OrderID)
	require.ErrorIs(t, err, domain.ErrOrderNotFound)
}

func TestOrderService_MarkDispatched(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	stranger := store.addUser("stranger")
	lamp := store.addItem(seller, "Lamp", 1500)
	addr := store.addAddress(buyer)
	store.setCart(buyer, lamp, 1)

	pub := &recordingPublisher{}
	svc := NewOrderService(store, pub)
	conf, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	require.NoError(t, err)
	lampID := repository.UUIDFrom(lamp)

	// A non-owner (including the buyer) may not dispatch.
	require.ErrorIs(t, svc.MarkDispatched(ctxWithUser(stranger), conf.OrderID, lampID), domain.ErrNotItemOwner)
	require.ErrorIs(t, svc.MarkDispatched(ctxWithUser(buyer), conf.OrderID, lampID), domain.ErrNotItemOwner)

	// The item owner dispatches once.
	require.NoError(t, svc.MarkDispatched(ctxWithUser(seller), conf.OrderID, lampID))
	assert.Len(t, pub.dispatched, 1)

	// The flag is a one-way latch.
	require.ErrorIs(t, svc.MarkDispatched(ctxWithUser(seller), conf.OrderID, lampID), domain.ErrAlreadyDispatched)
}

func TestOrderService_MarkDispatched_LineNotFound(t *testing.T) {
	store := newFakeStore()
	seller := store.addUser("seller")
	lamp := store.addItem(seller, "Lamp", 1500)
	buyer := store.addUser("buyer")
	addr := store.addAddress(buyer)
	store.setCart(buyer, lamp, 1)

	svc := NewOrderService(store, &recordingPublisher{})
	conf, err := svc.Create(ctxWithUser(buyer), repository.UUIDFrom(addr))
	require.NoError(t, err)

	other := store.addItem(seller, "Desk", 9000)
	err = svc.MarkDispatched(ctxWithUser(seller), conf.OrderID, repository.UUIDFrom(other))
	require.ErrorIs(t, err, domain.ErrOrderLineNotFound)
}
