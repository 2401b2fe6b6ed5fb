package service

import (
	"bytes"
	"context"
	"errors"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/sellorama/sellorama/internal/domain"
	"github.com/sellorama/sellorama/internal/events"
	"github.com/sellorama/sellorama/internal/repository"
)

// fakeStore is an in-memory implementation of repository.Store.
// ExecTx snapshots state before running the closure and restores it on
// error, mirroring the rollback behaviour of a real transaction.
type fakeStore struct {
	users     map[uuid.UUID]domain.User
	passwords map[uuid.UUID]string
	sessions  map[uuid.UUID]domain.Session
	addresses map[uuid.UUID]domain.Address
	items     map[uuid.UUID]domain.Item
	ratings   []repository.CreateRatingParams
	media     map[uuid.UUID]domain.ItemMedia
	stock     map[uuid.UUID]int32
	cart      map[uuid.UUID]map[uuid.UUID]int32
	orders    map[uuid.UUID]domain.Order
	lines     map[uuid.UUID][]domain.OrderLine

	// failNextDecrement makes the next DecrementStock report zero rows
	// while StockTracked still reports true, simulating a lost race.
	failNextDecrement bool

	// failNextPassword makes the next CreatePassword fail, simulating a
	// mid-signup insert error.
	failNextPassword bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:     make(map[uuid.UUID]domain.User),
		passwords: make(map[uuid.UUID]string),
		sessions:  make(map[uuid.UUID]domain.Session),
		addresses: make(map[uuid.UUID]domain.Address),
		items:     make(map[uuid.UUID]domain.Item),
		media:     make(map[uuid.UUID]domain.ItemMedia),
		stock:     make(map[uuid.UUID]int32),
		cart:      make(map[uuid.UUID]map[uuid.UUID]int32),
		orders:    make(map[uuid.UUID]domain.Order),
		lines:     make(map[uuid.UUID][]domain.OrderLine),
	}
}

// Test data helpers.

func (f *fakeStore) addUser(username string) uuid.UUID {
	id := uuid.New()
	f.users[id] = domain.User{
		ID:        repository.UUIDFrom(id),
		Username:  username,
		Email:     username + "@example.com",
		CreatedAt: nowTz(),
	}
	return id
}

func (f *fakeStore) addItem(owner uuid.UUID, title string, priceCents int32) uuid.UUID {
	id := uuid.New()
	f.items[id] = domain.Item{
		ID:         repository.UUIDFrom(id),
		UserID:     repository.UUIDFrom(owner),
		Title:      title,
		Content:    "",
		PriceCents: priceCents,
		CreatedAt:  nowTz(),
	}
	return id
}

func (f *fakeStore) addAddress(owner uuid.UUID) uuid.UUID {
	id := uuid.New()
	f.addresses[id] = domain.Address{
		ID:     repository.UUIDFrom(id),
		UserID: repository.UUIDFrom(owner),
		Line1:  "1 Test Street",
		City:   "Testville",
	}
	return id
}

func (f *fakeStore) setCart(user, item uuid.UUID, qty int32) {
	if f.cart[user] == nil {
		f.cart[user] = make(map[uuid.UUID]int32)
	}
	f.cart[user][item] = qty
}

func (f *fakeStore) cartQty(user, item uuid.UUID) (int32, bool) {
	qty, ok := f.cart[user][item]
	return qty, ok
}

// Store implementation.

func (f *fakeStore) ExecTx(ctx context.Context, fn func(repository.Querier) error) error {
	snapshot := f.clone()
	if err := fn(f); err != nil {
		f.restore(snapshot)
		return err
	}
	return nil
}

func (f *fakeStore) clone() *fakeStore {
	c := newFakeStore()
	for k, v := range f.users {
		c.users[k] = v
	}
	for k, v := range f.passwords {
		c.passwords[k] = v
	}
	for k, v := range f.sessions {
		c.sessions[k] = v
	}
	for k, v := range f.addresses {
		c.addresses[k] = v
	}
	for k, v := range f.items {
		c.items[k] = v
	}
	c.ratings = append(c.ratings, f.ratings...)
	for k, v := range f.media {
		c.media[k] = v
	}
	for k, v := range f.stock {
		c.stock[k] = v
	}
	for k, v := range f.cart {
		inner := make(map[uuid.UUID]int32, len(v))
		for ik, iv := range v {
			inner[ik] = iv
		}
		c.cart[k] = inner
	}
	for k, v := range f.orders {
		c.orders[k] = v
	}
	for k, v := range f.lines {
		c.lines[k] = append([]domain.OrderLine(nil), v...)
	}
	return c
}

func (f *fakeStore) restore(s *fakeStore) {
	f.users = s.users
	f.passwords = s.passwords
	f.sessions = s.sessions
	f.addresses = s.addresses
	f.items = s.items
	f.ratings = s.ratings
	f.media = s.media
	f.stock = s.stock
	f.cart = s.cart
	f.orders = s.orders
	f.lines = s.lines
}

// Users.

func (f *fakeStore) CreateUser(ctx context.Context, username, email string) (domain.User, error) {
	id := uuid.New()
	user := domain.User{
		ID:        repository.UUIDFrom(id),
		Username:  username,
		Email:     email,
		CreatedAt: nowTz(),
	}
	f.users[id] = user
	return user, nil
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID pgtype.UUID) (domain.User, error) {
	user, ok := f.users[repository.ToUUID(userID)]
	if !ok {
		return domain.User{}, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeStore) UserExists(ctx context.Context, username, email string) (bool, error) {
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) CreatePassword(ctx context.Context, userID pgtype.UUID, hashedPass string) error {
	if f.failNextPassword {
		f.failNextPassword = false
		return errors.New("password insert failed")
	}
	f.passwords[repository.ToUUID(userID)] = hashedPass
	return nil
}

func (f *fakeStore) GetUserCredentials(ctx context.Context, username string) (repository.UserCredentials, error) {
	for id, u := range f.users {
		if u.Username == username {
			hash, ok := f.passwords[id]
			if !ok {
				return repository.UserCredentials{}, pgx.ErrNoRows
			}
			return repository.UserCredentials{UserID: u.ID, HashedPass: hash}, nil
		}
	}
	return repository.UserCredentials{}, pgx.ErrNoRows
}

// Sessions.

func (f *fakeStore) CreateSession(ctx context.Context, userID pgtype.UUID, expiresAt time.Time) (domain.Session, error) {
	id := uuid.New()
	session := domain.Session{
		ID:        repository.UUIDFrom(id),
		UserID:    userID,
		ExpiresAt: pgtype.Timestamptz{Time: expiresAt, Valid: true},
	}
	f.sessions[id] = session
	return session, nil
}

func (f *fakeStore) GetValidSession(ctx context.Context, sessionID pgtype.UUID) (repository.SessionWithUser, error) {
	session, ok := f.sessions[repository.ToUUID(sessionID)]
	if !ok || session.ExpiresAt.Time.Before(time.Now()) {
		return repository.SessionWithUser{}, pgx.ErrNoRows
	}
	user := f.users[repository.ToUUID(session.UserID)]
	return repository.SessionWithUser{
		SessionID: session.ID,
		UserID:    session.UserID,
		Username:  user.Username,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

func (f *fakeStore) DeleteSession(ctx context.Context, sessionID pgtype.UUID) error {
	delete(f.sessions, repository.ToUUID(sessionID))
	return nil
}

func (f *fakeStore) DeleteExpiredSessions(ctx context.Context) (int64, error) {
	var swept int64
	for id, s := range f.sessions {
		if s.ExpiresAt.Time.Before(time.Now()) {
			delete(f.sessions, id)
			swept++
		}
	}
	return swept, nil
}

// Addresses.

func (f *fakeStore) CreateAddress(ctx context.Context, arg repository.CreateAddressParams) (domain.Address, error) {
	id := uuid.New()
	address := domain.Address{
		ID:         repository.UUIDFrom(id),
		UserID:     arg.UserID,
		Line1:      arg.Line1,
		Line2:      arg.Line2,
		City:       arg.City,
		PostalCode: arg.PostalCode,
		Country:    arg.Country,
	}
	f.addresses[id] = address
	return address, nil
}

func (f *fakeStore) GetAddress(ctx context.Context, addressID pgtype.UUID) (domain.Address, error) {
	address, ok := f.addresses[repository.ToUUID(addressID)]
	if !ok {
		return domain.Address{}, pgx.ErrNoRows
	}
	return address, nil
}

func (f *fakeStore) ListAddresses(ctx context.Context, userID pgtype.UUID) ([]domain.Address, error) {
	var out []domain.Address
	for _, a := range f.addresses {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	return out, nil
}

// Items.

func (f *fakeStore) CreateItem(ctx context.Context, arg repository.CreateItemParams) (domain.Item, error) {
	id := uuid.New()
	item := domain.Item{
		ID:         repository.UUIDFrom(id),
		UserID:     arg.UserID,
		Title:      arg.Title,
		Content:    arg.Content,
		PriceCents: arg.PriceCents,
		CreatedAt:  nowTz(),
	}
	f.items[id] = item
	return item, nil
}

func (f *fakeStore) GetItem(ctx context.Context, itemID pgtype.UUID) (domain.Item, error) {
	item, ok := f.items[repository.ToUUID(itemID)]
	if !ok {
		return domain.Item{}, pgx.ErrNoRows
	}
	return item, nil
}

func (f *fakeStore) GetItemRating(ctx context.Context, itemID pgtype.UUID) (*float64, error) {
	var sum, n float64
	for _, r := range f.ratings {
		if r.ItemID == itemID {
			sum += float64(r.Rating)
			n++
		}
	}
	if n == 0 {
		return nil, nil
	}
	avg := sum / n
	return &avg, nil
}

func (f *fakeStore) UpdateItem(ctx context.Context, arg repository.UpdateItemParams) (int64, error) {
	item, ok := f.items[repository.ToUUID(arg.ItemID)]
	if !ok || item.UserID != arg.OwnerID {
		return 0, nil
	}
	item.Title = arg.Title
	item.Content = arg.Content
	item.PriceCents = arg.PriceCents
	f.items[repository.ToUUID(arg.ItemID)] = item
	return 1, nil
}

func (f *fakeStore) DeleteItem(ctx context.Context, itemID, ownerID pgtype.UUID) (int64, error) {
	item, ok := f.items[repository.ToUUID(itemID)]
	if !ok || item.UserID != ownerID {
		return 0, nil
	}
	delete(f.items, repository.ToUUID(itemID))
	return 1, nil
}

func (f *fakeStore) CreateRating(ctx context.Context, arg repository.CreateRatingParams) error {
	f.ratings = append(f.ratings, arg)
	return nil
}

func (f *fakeStore) SearchSuggestions(ctx context.Context, prefix string, limit int32) ([]domain.Suggestion, error) {
	var out []domain.Suggestion
	for _, item := range f.items {
		if len(out) >= int(limit) {
			break
		}
		if len(item.Title) >= len(prefix) && item.Title[:len(prefix)] == prefix {
			out = append(out, domain.Suggestion{ItemID: item.ID, Title: item.Title})
		}
	}
	return out, nil
}

func (f *fakeStore) CreateItemMedia(ctx context.Context, arg repository.CreateItemMediaParams) (domain.ItemMedia, error) {
	id := uuid.New()
	media := domain.ItemMedia{
		ID:          repository.UUIDFrom(id),
		ItemID:      arg.ItemID,
		ObjectKey:   arg.ObjectKey,
		ContentType: arg.ContentType,
	}
	f.media[id] = media
	return media, nil
}

func (f *fakeStore) GetItemMedia(ctx context.Context, mediaID pgtype.UUID) (domain.ItemMedia, error) {
	media, ok := f.media[repository.ToUUID(mediaID)]
	if !ok {
		return domain.ItemMedia{}, pgx.ErrNoRows
	}
	return media, nil
}

// Stock.

func (f *fakeStore) GetStock(ctx context.Context, itemID pgtype.UUID) (int32, bool, error) {
	qty, ok := f.stock[repository.ToUUID(itemID)]
	return qty, ok, nil
}

func (f *fakeStore) UpsertStock(ctx context.Context, itemID pgtype.UUID, quantity int32) error {
	f.stock[repository.ToUUID(itemID)] = quantity
	return nil
}

func (f *fakeStore) DecrementStock(ctx context.Context, itemID pgtype.UUID, amount int32) (int64, error) {
	if f.failNextDecrement {
		f.failNextDecrement = false
		return 0, nil
	}
	id := repository.ToUUID(itemID)
	qty, ok := f.stock[id]
	if !ok || qty < amount {
		return 0, nil
	}
	f.stock[id] = qty - amount
	return 1, nil
}

func (f *fakeStore) StockTracked(ctx context.Context, itemID pgtype.UUID) (bool, error) {
	_, ok := f.stock[repository.ToUUID(itemID)]
	return ok, nil
}

func (f *fakeStore) StockSatisfies(ctx context.Context, itemID pgtype.UUID, quantity int32) (bool, error) {
	qty, ok := f.stock[repository.ToUUID(itemID)]
	if !ok {
		return true, nil
	}
	return qty >= quantity, nil
}

// Cart.

func (f *fakeStore) UpsertCartLine(ctx context.Context, line domain.CartLine) (domain.CartLine, error) {
	user := repository.ToUUID(line.UserID)
	item := repository.ToUUID(line.ItemID)
	if f.cart[user] == nil {
		f.cart[user] = make(map[uuid.UUID]int32)
	}
	f.cart[user][item] += line.Quantity
	line.Quantity = f.cart[user][item]
	return line, nil
}

func (f *fakeStore) UpdateCartLineQuantity(ctx context.Context, line domain.CartLine) (domain.CartLine, bool, error) {
	user := repository.ToUUID(line.UserID)
	item := repository.ToUUID(line.ItemID)
	if _, ok := f.cart[user][item]; !ok {
		return domain.CartLine{}, false, nil
	}
	if tracked, ok := f.stock[item]; ok && tracked < line.Quantity {
		return domain.CartLine{}, false, nil
	}
	f.cart[user][item] = line.Quantity
	return line, true, nil
}

func (f *fakeStore) GetCartLine(ctx context.Context, userID, itemID pgtype.UUID) (domain.CartLine, bool, error) {
	qty, ok := f.cart[repository.ToUUID(userID)][repository.ToUUID(itemID)]
	if !ok {
		return domain.CartLine{}, false, nil
	}
	return domain.CartLine{UserID: userID, ItemID: itemID, Quantity: qty}, true, nil
}

func (f *fakeStore) DeleteCartLine(ctx context.Context, userID, itemID pgtype.UUID) (int64, error) {
	user := repository.ToUUID(userID)
	item := repository.ToUUID(itemID)
	if _, ok := f.cart[user][item]; !ok {
		return 0, nil
	}
	delete(f.cart[user], item)
	return 1, nil
}

func (f *fakeStore) ListCartLines(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error) {
	user := repository.ToUUID(userID)
	var out []domain.CartLine
	for item, qty := range f.cart[user] {
		out = append(out, domain.CartLine{
			UserID:   userID,
			ItemID:   repository.UUIDFrom(item),
			Quantity: qty,
		})
	}
	sortCartLines(out)
	return out, nil
}

func (f *fakeStore) PurgeUnsatisfiableCartLines(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error) {
	user := repository.ToUUID(userID)
	var removed []domain.CartLine
	for item, qty := range f.cart[user] {
		if tracked, ok := f.stock[item]; ok && tracked < qty {
			removed = append(removed, domain.CartLine{
				UserID:   userID,
				ItemID:   repository.UUIDFrom(item),
				Quantity: qty,
			})
			delete(f.cart[user], item)
		}
	}
	sortCartLines(removed)
	return removed, nil
}

func (f *fakeStore) DrainCart(ctx context.Context, userID pgtype.UUID) ([]domain.CartLine, error) {
	lines, _ := f.ListCartLines(ctx, userID)
	delete(f.cart, repository.ToUUID(userID))
	return lines, nil
}

// Orders.

func (f *fakeStore) CreateOrder(ctx context.Context, userID, addressID pgtype.UUID) (domain.Order, error) {
	id := uuid.New()
	order := domain.Order{
		ID:        repository.UUIDFrom(id),
		UserID:    userID,
		AddressID: addressID,
		CreatedAt: nowTz(),
	}
	f.orders[id] = order
	return order, nil
}

func (f *fakeStore) CreateOrderLine(ctx context.Context, orderID, itemID pgtype.UUID, quantity int32) error {
	id := repository.ToUUID(orderID)
	f.lines[id] = append(f.lines[id], domain.OrderLine{
		OrderID:  orderID,
		ItemID:   itemID,
		Quantity: quantity,
	})
	return nil
}

func (f *fakeStore) GetOrder(ctx context.Context, orderID, userID pgtype.UUID) (domain.Order, error) {
	order, ok := f.orders[repository.ToUUID(orderID)]
	if !ok || order.UserID != userID {
		return domain.Order{}, pgx.ErrNoRows
	}
	return order, nil
}

func (f *fakeStore) ListOrders(ctx context.Context, userID pgtype.UUID) ([]domain.Order, error) {
	var out []domain.Order
	for _, o := range f.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (f *fakeStore) ListOrderLines(ctx context.Context, orderID pgtype.UUID) ([]domain.OrderLine, error) {
	return f.lines[repository.ToUUID(orderID)], nil
}

func (f *fakeStore) GetOrderLineWithOwner(ctx context.Context, orderID, itemID pgtype.UUID) (repository.OrderLineWithOwner, error) {
	for _, line := range f.lines[repository.ToUUID(orderID)] {
		if line.ItemID == itemID {
			item, ok := f.items[repository.ToUUID(itemID)]
			if !ok {
				return repository.OrderLineWithOwner{}, pgx.ErrNoRows
			}
			return repository.OrderLineWithOwner{
				OrderID:    line.OrderID,
				ItemID:     line.ItemID,
				Quantity:   line.Quantity,
				Dispatched: line.Dispatched,
				OwnerID:    item.UserID,
			}, nil
		}
	}
	return repository.OrderLineWithOwner{}, pgx.ErrNoRows
}

func (f *fakeStore) MarkOrderLineDispatched(ctx context.Context, orderID, itemID, ownerID pgtype.UUID) (int64, error) {
	id := repository.ToUUID(orderID)
	for i, line := range f.lines[id] {
		if line.ItemID != itemID || line.Dispatched {
			continue
		}
		item, ok := f.items[repository.ToUUID(itemID)]
		if !ok || item.UserID != ownerID {
			continue
		}
		f.lines[id][i].Dispatched = true
		return 1, nil
	}
	return 0, nil
}

var _ repository.Store = (*fakeStore)(nil)

func sortCartLines(lines []domain.CartLine) {
	sort.Slice(lines, func(i, j int) bool {
		return bytes.Compare(lines[i].ItemID.Bytes[:], lines[j].ItemID.Bytes[:]) < 0
	})
}

func nowTz() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: time.Now(), Valid: true}
}

// recordingPublisher captures published events for assertions.
type recordingPublisher struct {
	created    []events.OrderCreated
	dispatched []events.OrderLineDispatched
}

func (p *recordingPublisher) OrderCreated(evt events.OrderCreated) {
	p.created = append(p.created, evt)
}

func (p *recordingPublisher) OrderLineDispatched(evt events.OrderLineDispatched) {
	p.dispatched = append(p.dispatched, evt)
}

// ctxWithUser attaches a resolved identity to a context.
func ctxWithUser(userID uuid.UUID) context.Context {
	return domain.NewContextWithIdentity(context.Background(), &domain.Identity{
		UserID:    userID,
		SessionID: uuid.New(),
		Username:  "tester",
	})
}
