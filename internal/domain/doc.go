// Package domain holds the core business entities and invariants of the
// task-management system: tasks with their status lifecycle, and the users
// who own them. It has no knowledge of storage or transport concerns.
package domain
