// Package mocks provides shared test doubles for the service and auth
// interfaces consumed by the HTTP layer.
//
// MockJWTService uses function fields with default return values. The
// service mocks are built on testify/mock:
//
//	baskets := new(mocks.MockBasketService)
//	baskets.On("GetBasket", mock.Anything, actor, basketID).Return(basket, nil)
//	defer baskets.AssertExpectations(t)
package mocks
