// Package service implements the storefront use cases on top of the domain
// model and the store interfaces.
//
// The basket service is the only writer of baskets and basket lines. Each of
// its mutations runs in one transaction that locks the product before the
// basket and is re-run from the start when it loses a race with a concurrent
// request. The order, product and user services are thinner: they validate
// input, check the caller's access and translate store errors.
//
// Callers identify themselves with an Actor. Customers may act only on their
// own baskets and orders; admins may act on any.
package service
