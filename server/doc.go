// Package server exposes the code index over HTTP: a JSON API for search,
// lookup, related codes and index status, a small embedded page for trying
// queries from a browser, and optional prometheus metrics.
//
// Handlers hold their dependencies and implement Handle(c *fiber.Ctx) error.
// Repeated searches are served from an in-process ristretto cache keyed by
// the normalized query and requested result count.
package server
