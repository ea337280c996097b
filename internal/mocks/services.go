package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/phrazzld/storefront-api/internal/domain"
	"github.com/phrazzld/storefront-api/internal/service"
	"github.com/stretchr/testify/mock"
)

var (
	_ service.BasketService  = (*MockBasketService)(nil)
	_ service.OrderService   = (*MockOrderService)(nil)
	_ service.ProductService = (*MockProductService)(nil)
	_ service.UserService    = (*MockUserService)(nil)
)

func basketResult(args mock.Arguments) (*domain.Basket, error) {
	basket, _ := args.Get(0).(*domain.Basket)
	return basket, args.Error(1)
}

// MockBasketService is a testify mock of service.BasketService
type MockBasketService struct {
	mock.Mock
}

func (m *MockBasketService) UpsertBasketLine(
	ctx context.Context,
	actor service.Actor,
	cmd service.UpsertBasketLineCommand,
) (*domain.Basket, error) {
	return basketResult(m.Called(ctx, actor, cmd))
}

func (m *MockBasketService) DeleteBasketLine(
	ctx context.Context,
	actor service.Actor,
	lineID uuid.UUID,
) (domain.RemovalOutcome, error) {
	args := m.Called(ctx, actor, lineID)
	outcome, _ := args.Get(0).(domain.RemovalOutcome)
	return outcome, args.Error(1)
}

func (m *MockBasketService) SetBasketLineQuantity(
	ctx context.Context,
	actor service.Actor,
	cmd service.SetBasketLineQuantityCommand,
) (*domain.Basket, error) {
	return basketResult(m.Called(ctx, actor, cmd))
}

func (m *MockBasketService) GetBasket(
	ctx context.Context,
	actor service.Actor,
	basketID uuid.UUID,
) (*domain.Basket, error) {
	return basketResult(m.Called(ctx, actor, basketID))
}

func (m *MockBasketService) GetBasketForUser(
	ctx context.Context,
	actor service.Actor,
	userID uuid.UUID,
) (*domain.Basket, error) {
	return basketResult(m.Called(ctx, actor, userID))
}

// MockOrderService is a testify mock of service.OrderService
type MockOrderService struct {
	mock.Mock
}

func (m *MockOrderService) CreateOrder(
	ctx context.Context,
	actor service.Actor,
	cmd service.CreateOrderCommand,
) (*domain.Order, error) {
	args := m.Called(ctx, actor, cmd)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) GetOrder(ctx context.Context, actor service.Actor, orderID uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, actor, orderID)
	order, _ := args.Get(0).(*domain.Order)
	return order, args.Error(1)
}

func (m *MockOrderService) ListOrders(
	ctx context.Context,
	actor service.Actor,
	userID uuid.UUID,
	limit, offset int,
) ([]*domain.Order, error) {
	args := m.Called(ctx, actor, userID, limit, offset)
	orders, _ := args.Get(0).([]*domain.Order)
	return orders, args.Error(1)
}

// MockProductService is a testify mock of service.ProductService
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) CreateProduct(
	ctx context.Context,
	actor service.Actor,
	cmd service.CreateProductCommand,
) (*domain.Product, error) {
	args := m.Called(ctx, actor, cmd)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

func (m *MockProductService) GetProduct(ctx context.Context, productID uuid.UUID) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	product, _ := args.Get(0).(*domain.Product)
	return product, args.Error(1)
}

func (m *MockProductService) ListProducts(ctx context.Context, limit, offset int) ([]*domain.Product, error) {
	args := m.Called(ctx, limit, offset)
	products, _ := args.Get(0).([]*domain.Product)
	return products, args.Error(1)
}

// MockUserService is a testify mock of service.UserService
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}

func (m *MockUserService) GetUser(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*domain.User)
	return user, args.Error(1)
}
