// Package mocks provides in-memory implementations of the store interfaces
// for testing. Every mock supports per-method function overrides; when no
// override is set, a map-backed default implementation is used.
package mocks
