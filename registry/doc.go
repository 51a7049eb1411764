// Package registry holds the process-wide in-memory map of open work
// sessions. It is the lifecycle gate: at most one open entry per actor,
// enforced with an atomic check-and-set under a single lock.
//
// Entries are keyed by actor id alone, not (tenant, actor): an actor who is
// clocked in under one tenant cannot clock in under another until they clock
// out. Entries are not durable; a process restart loses every open session
// and no reconciliation is attempted.
package registry
