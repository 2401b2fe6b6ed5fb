package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/repository"
)

func TestCartService_AddItem_Merge(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)

	svc := NewCartService(store)
	ctx := ctxWithUser(buyer)

	line, err := svc.AddItem(ctx, repository.UUIDFrom(item), 3)
	require.NoError(t, err)
	assert.Equal(t, int32(3), line.Quantity)

	// Adding again merges additively.
	line, err = svc.AddItem(ctx, repository.UUIDFrom(item), 2)
	require.NoError(t, err)
	assert.Equal(t, int32(5), line.Quantity, "expected merged quantity")
}

func TestCartService_AddItem_SelfPurchase(t *testing.T) {
	store := newFakeStore()
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)

	svc := NewCartService(store)

	_, err := svc.AddItem(ctxWithUser(seller), repository.UUIDFrom(item), 1)
	require.ErrorIs(t, err, domain.ErrSelfPurchase)
	_, ok := store.cartQty(seller, item)
	assert.False(t, ok, "expected no cart line after refused self purchase")
}

func TestCartService_AddItem_ItemNotFound(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	ghost := store.addUser("ghost")
	missing := store.addItem(ghost, "Gone", 100)
	delete(store.items, missing)

	svc := NewCartService(store)

	_, err := svc.AddItem(ctxWithUser(buyer), repository.UUIDFrom(missing), 1)
	require.ErrorIs(t, err, domain.ErrItemNotFound)
}

func TestCartService_AddItem_MergeExceedsStock(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)
	store.stock[item] = 4

	svc := NewCartService(store)
	ctx := ctxWithUser(buyer)

	_, err := svc.AddItem(ctx, repository.UUIDFrom(item), 3)
	require.NoError(t, err)

	// 3 + 2 = 5 exceeds stock of 4: the merge must roll back.
	_, err = svc.AddItem(ctx, repository.UUIDFrom(item), 2)
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	qty, _ := store.cartQty(buyer, item)
	assert.Equal(t, int32(3), qty, "expected line to stay at 3 after rollback")
}

func TestCartService_AddItem_UntrackedStockUnlimited(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Print", 500)

	svc := NewCartService(store)

	line, err := svc.AddItem(ctxWithUser(buyer), repository.UUIDFrom(item), 10000)
	require.NoError(t, err)
	assert.Equal(t, int32(10000), line.Quantity)
}

func TestCartService_AddItem_ZeroStockBlocks(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)
	store.stock[item] = 0

	svc := NewCartService(store)

	_, err := svc.AddItem(ctxWithUser(buyer), repository.UUIDFrom(item), 1)
	require.ErrorIs(t, err, domain.ErrInsufficientStock, "explicit zero stock blocks the add")
}

func TestCartService_AddItem_NonPositiveQuantity(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)

	svc := NewCartService(store)

	_, err := svc.AddItem(ctxWithUser(buyer), repository.UUIDFrom(item), 0)
	assert.True(t, domain.IsCode(err, domain.EINVALID), "expected EINVALID, got %v", err)
}

func TestCartService_AddItem_Unauthenticated(t *testing.T) {
	store := newFakeStore()
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)

	svc := NewCartService(store)

	_, err := svc.AddItem(context.Background(), repository.UUIDFrom(item), 1)
	assert.True(t, domain.IsCode(err, domain.EUNAUTHORIZED), "expected EUNAUTHORIZED, got %v", err)
}

func TestCartService_SetQuantity_Update(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)
	store.setCart(buyer, item, 3)
	store.stock[item] = 10

	svc := NewCartService(store)

	line, err := svc.SetQuantity(ctxWithUser(buyer), repository.UUIDFrom(item), 7)
	require.NoError(t, err)
	assert.Equal(t, int32(7), line.Quantity)
}

func TestCartService_SetQuantity_ZeroDeletes(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)
	store.setCart(buyer, item, 3)
	// Out-of-stock items can still be removed.
	store.stock[item] = 0

	svc := NewCartService(store)

	line, err := svc.SetQuantity(ctxWithUser(buyer), repository.UUIDFrom(item), 0)
	require.NoError(t, err)
	assert.Nil(t, line, "expected nil line after delete")
	_, ok := store.cartQty(buyer, item)
	assert.False(t, ok, "expected line removed")
}

func TestCartService_SetQuantity_ExceedsStock(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)
	store.setCart(buyer, item, 3)
	store.stock[item] = 5

	svc := NewCartService(store)

	_, err := svc.SetQuantity(ctxWithUser(buyer), repository.UUIDFrom(item), 6)
	require.ErrorIs(t, err, domain.ErrCartNotUpdated)
	qty, _ := store.cartQty(buyer, item)
	assert.Equal(t, int32(3), qty, "expected line unchanged")
}

func TestCartService_SetQuantity_LineNotFound(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	item := store.addItem(seller, "Lamp", 1500)

	svc := NewCartService(store)

	_, err := svc.SetQuantity(ctxWithUser(buyer), repository.UUIDFrom(item), 2)
	require.ErrorIs(t, err, domain.ErrCartLineNotFound)
}

func TestCartService_List(t *testing.T) {
	store := newFakeStore()
	buyer := store.addUser("buyer")
	seller := store.addUser("seller")
	a := store.addItem(seller, "Lamp", 1500)
	b := store.addItem(seller, "Desk", 9000)
	store.setCart(buyer, a, 2)
	store.setCart(buyer, b, 1)

	svc := NewCartService(store)

	lines, err := svc.List(ctxWithUser(buyer))
	require.NoError(t, err)
	assert.Len(t, lines, 2)
}
