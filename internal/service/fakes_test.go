package service

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/store"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeData is the committed state shared by the fake stores. Rows are stored
// by value so that aggregates handed to services never alias stored state.
type fakeData struct {
	users    map[uuid.UUID]domain.User
	products map[uuid.UUID]domain.Product
	baskets  map[uuid.UUID]domain.Basket
	lines    map[uuid.UUID]domain.BasketLine
	orders   map[uuid.UUID]domain.Order

	// errs makes the named method fail once with the given error.
	errs map[string]error
	// hooks run once before the named method does its work.
	hooks map[string]func(d *fakeData) error
	// calls records every store method invoked, in order.
	calls []string
}

func newFakeData() *fakeData {
	return &fakeData{
		users:    map[uuid.UUID]domain.User{},
		products: map[uuid.UUID]domain.Product{},
		baskets:  map[uuid.UUID]domain.Basket{},
		lines:    map[uuid.UUID]domain.BasketLine{},
		orders:   map[uuid.UUID]domain.Order{},
		errs:     map[string]error{},
		hooks:    map[string]func(d *fakeData) error{},
	}
}

func (d *fakeData) enter(method string) error {
	d.calls = append(d.calls, method)
	if h, ok := d.hooks[method]; ok {
		delete(d.hooks, method)
		if err := h(d); err != nil {
			return err
		}
	}
	if err, ok := d.errs[method]; ok {
		delete(d.errs, method)
		return err
	}
	return nil
}

func (d *fakeData) addUser(t *testing.T, email string, role domain.Role) *domain.User {
	t.Helper()
	u, err := domain.NewUser(email, "$2a$10$abcdefghijklmnopqrstuv")
	require.NoError(t, err)
	u.Role = role
	d.users[u.ID] = *u
	return u
}

func (d *fakeData) addProduct(t *testing.T, name, price string, stock int) *domain.Product {
	t.Helper()
	p, err := domain.NewProduct(name, name+" description", money(price), stock, name+".jpg")
	require.NoError(t, err)
	d.products[p.ID] = *p
	return p
}

func (d *fakeData) basketOf(userID uuid.UUID) (domain.Basket, bool) {
	for _, b := range d.baskets {
		if b.UserID == userID {
			return b, true
		}
	}
	return domain.Basket{}, false
}

func (d *fakeData) linesOf(basketID uuid.UUID) []domain.BasketLine {
	var out []domain.BasketLine
	for _, l := range d.lines {
		if l.BasketID == basketID {
			out = append(out, l)
		}
	}
	return out
}

// load assembles a basket aggregate the way the SQL store does: lines carry
// their product and are ordered by product name, then line ID.
func (d *fakeData) load(row domain.Basket) *domain.Basket {
	b := row
	b.Lines = []*domain.BasketLine{}
	for _, l := range d.linesOf(row.ID) {
		line := l
		p := d.products[l.ProductID]
		p.Images = append([]domain.ProductImage(nil), p.Images...)
		line.Product = &p
		b.Lines = append(b.Lines, &line)
	}
	sort.Slice(b.Lines, func(i, j int) bool {
		if b.Lines[i].Product.Name != b.Lines[j].Product.Name {
			return b.Lines[i].Product.Name < b.Lines[j].Product.Name
		}
		return bytes.Compare(b.Lines[i].ID[:], b.Lines[j].ID[:]) < 0
	})
	return &b
}

type fakeUserStore struct{ d *fakeData }

func (s *fakeUserStore) Create(_ context.Context, u *domain.User) error {
	if err := s.d.enter("users.Create"); err != nil {
		return err
	}
	for _, existing := range s.d.users {
		if existing.Email == u.Email {
			return store.ErrEmailExists
		}
	}
	s.d.users[u.ID] = *u
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if err := s.d.enter("users.GetByID"); err != nil {
		return nil, err
	}
	u, ok := s.d.users[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return &u, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if err := s.d.enter("users.GetByEmail"); err != nil {
		return nil, err
	}
	for _, u := range s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, store.ErrUserNotFound
}

func (s *fakeUserStore) WithTx(*sql.Tx) store.UserStore { return s }

type fakeProductStore struct{ d *fakeData }

func (s *fakeProductStore) Create(_ context.Context, p *domain.Product) error {
	if err := s.d.enter("products.Create"); err != nil {
		return err
	}
	s.d.products[p.ID] = *p
	return nil
}

func (s *fakeProductStore) get(method string, id uuid.UUID) (*domain.Product, error) {
	if err := s.d.enter(method); err != nil {
		return nil, err
	}
	p, ok := s.d.products[id]
	if !ok {
		return nil, store.ErrProductNotFound
	}
	return &p, nil
}

func (s *fakeProductStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.get("products.GetByID", id)
}

func (s *fakeProductStore) GetByIDForShare(_ context.Context, id uuid.UUID) (*domain.Product, error) {
	return s.get("products.GetByIDForShare", id)
}

func (s *fakeProductStore) List(_ context.Context, limit, offset int) ([]*domain.Product, error) {
	if err := s.d.enter("products.List"); err != nil {
		return nil, err
	}
	var out []*domain.Product
	for _, p := range s.d.products {
		p := p
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	if offset > len(out) {
		return []*domain.Product{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (s *fakeProductStore) WithTx(*sql.Tx) store.ProductStore { return s }

type fakeBasketStore struct{ d *fakeData }

func (s *fakeBasketStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Basket, error) {
	if err := s.d.enter("baskets.GetByID"); err != nil {
		return nil, err
	}
	row, ok := s.d.baskets[id]
	if !ok {
		return nil, store.ErrBasketNotFound
	}
	return s.d.load(row), nil
}

func (s *fakeBasketStore) byUser(method string, userID uuid.UUID) (*domain.Basket, error) {
	if err := s.d.enter(method); err != nil {
		return nil, err
	}
	row, ok := s.d.basketOf(userID)
	if !ok {
		return nil, store.ErrBasketNotFound
	}
	return s.d.load(row), nil
}

func (s *fakeBasketStore) GetByUserID(_ context.Context, userID uuid.UUID) (*domain.Basket, error) {
	return s.byUser("baskets.GetByUserID", userID)
}

func (s *fakeBasketStore) GetByUserIDForUpdate(_ context.Context, userID uuid.UUID) (*domain.Basket, error) {
	return s.byUser("baskets.GetByUserIDForUpdate", userID)
}

func (s *fakeBasketStore) GetByLineIDForUpdate(_ context.Context, lineID uuid.UUID) (*domain.Basket, error) {
	if err := s.d.enter("baskets.GetByLineIDForUpdate"); err != nil {
		return nil, err
	}
	line, ok := s.d.lines[lineID]
	if !ok {
		return nil, store.ErrBasketLineNotFound
	}
	return s.d.load(s.d.baskets[line.BasketID]), nil
}

func (s *fakeBasketStore) FindLine(_ context.Context, lineID uuid.UUID) (*domain.BasketLine, error) {
	if err := s.d.enter("baskets.FindLine"); err != nil {
		return nil, err
	}
	line, ok := s.d.lines[lineID]
	if !ok {
		return nil, store.ErrBasketLineNotFound
	}
	return &line, nil
}

func (s *fakeBasketStore) Create(_ context.Context, b *domain.Basket) error {
	if err := s.d.enter("baskets.Create"); err != nil {
		return err
	}
	if _, exists := s.d.basketOf(b.UserID); exists {
		return store.ErrBasketExists
	}
	row := *b
	row.Lines = nil
	s.d.baskets[b.ID] = row
	return nil
}

func (s *fakeBasketStore) UpdateTotals(_ context.Context, b *domain.Basket) error {
	if err := s.d.enter("baskets.UpdateTotals"); err != nil {
		return err
	}
	row, ok := s.d.baskets[b.ID]
	if !ok {
		return store.ErrBasketNotFound
	}
	row.TotalAmount = b.TotalAmount
	row.LastModified = b.LastModified
	s.d.baskets[b.ID] = row
	return nil
}

func (s *fakeBasketStore) Delete(_ context.Context, id uuid.UUID) error {
	if err := s.d.enter("baskets.Delete"); err != nil {
		return err
	}
	if _, ok := s.d.baskets[id]; !ok {
		return store.ErrBasketNotFound
	}
	if len(s.d.linesOf(id)) > 0 {
		return errors.New("basket still has lines")
	}
	delete(s.d.baskets, id)
	return nil
}

func (s *fakeBasketStore) InsertLine(_ context.Context, line *domain.BasketLine) error {
	if err := s.d.enter("baskets.InsertLine"); err != nil {
		return err
	}
	if line.Quantity <= 0 {
		return store.ErrInvalidEntity
	}
	for _, l := range s.d.linesOf(line.BasketID) {
		if l.ProductID == line.ProductID {
			return store.ErrBasketLineExists
		}
	}
	row := *line
	row.Product = nil
	s.d.lines[line.ID] = row
	return nil
}

func (s *fakeBasketStore) UpdateLineQuantity(_ context.Context, line *domain.BasketLine) error {
	if err := s.d.enter("baskets.UpdateLineQuantity"); err != nil {
		return err
	}
	row, ok := s.d.lines[line.ID]
	if !ok {
		return store.ErrBasketLineNotFound
	}
	if line.Quantity <= 0 {
		return store.ErrInvalidEntity
	}
	row.Quantity = line.Quantity
	row.LastModified = line.LastModified
	s.d.lines[line.ID] = row
	return nil
}

func (s *fakeBasketStore) DeleteLine(_ context.Context, lineID uuid.UUID) error {
	if err := s.d.enter("baskets.DeleteLine"); err != nil {
		return err
	}
	if _, ok := s.d.lines[lineID]; !ok {
		return store.ErrBasketLineNotFound
	}
	delete(s.d.lines, lineID)
	return nil
}

func (s *fakeBasketStore) WithTx(*sql.Tx) store.BasketStore { return s }

type fakeOrderStore struct{ d *fakeData }

func (s *fakeOrderStore) Create(_ context.Context, o *domain.Order) error {
	if err := s.d.enter("orders.Create"); err != nil {
		return err
	}
	s.d.orders[o.ID] = *o
	return nil
}

func (s *fakeOrderStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Order, error) {
	if err := s.d.enter("orders.GetByID"); err != nil {
		return nil, err
	}
	o, ok := s.d.orders[id]
	if !ok {
		return nil, store.ErrOrderNotFound
	}
	return &o, nil
}

func (s *fakeOrderStore) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Order, error) {
	if err := s.d.enter("orders.ListByUser"); err != nil {
		return nil, err
	}
	var out []*domain.Order
	for _, o := range s.d.orders {
		if o.UserID == userID {
			o := o
			out = append(out, &o)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderDate.After(out[j].OrderDate) })
	return out, nil
}

func (s *fakeOrderStore) WithTx(*sql.Tx) store.OrderStore { return s }

// newMockDB returns a sqlmock-backed *sql.DB whose expectations are checked
// when the test ends.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return db, mock
}

func expectCommit(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectCommit()
}

func expectRollback(mock sqlmock.Sqlmock) {
	mock.ExpectBegin()
	mock.ExpectRollback()
}

var testRetryPolicy = store.RetryPolicy{MaxRetries: 3, BaseBackoff: time.Millisecond}

func indexOf(calls []string, method string) int {
	for i, c := range calls {
		if c == method {
			return i
		}
	}
	return -1
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertMoney(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.True(t, money(want).Equal(got), "want %s, got %s", want, got.String())
}
