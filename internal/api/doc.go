// Package api contains the HTTP handlers of the storefront API, their
// request and response models, and the mapping from service errors to
// status codes and client-safe messages.
package api
