// Package queries contains read-only operations. Handlers read through the
// repositories of a unit of work without beginning a transaction, so every
// storage backend serves them, and map aggregates to flat response models.
package queries
