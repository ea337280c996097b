// Package domain holds the storefront entities (users, products, baskets and
// orders) and the rules that keep them consistent, such as incremental basket
// totals and non-negative stock.
package domain
