// Package store defines the persistence interfaces and shared errors for
// the application's data layer, decoupling business logic from the
// concrete database implementation.
package store
