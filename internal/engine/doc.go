// Package engine implements the desired/confirmed state reconciliation loop
// for a single fan device.
//
// # Model
//
// The engine owns two state records. Desired holds the last value a caller
// requested through SetDesired; confirmed holds the last value the device
// itself reported after a successful round-trip. Confirmed is only ever
// assigned the decoded result of a real device response, never a value taken
// from desired. Callers only see copies of either record.
//
// # Reconciliation
//
// A background timer drives the loop. On each tick the engine diffs desired
// against confirmed in fixed priority order (speed, then swing; power is
// derived from speed and never commanded independently) and, if anything
// differs and no command is outstanding, issues exactly one corrective
// command. Bursts of SetDesired calls between ticks collapse into at most one
// command per field per cycle; there is no request queue.
//
// On success the device's full-state reply overwrites confirmed, and the
// commanded field of desired is pulled to the device's authoritative value
// (echo-back) so a clamped or rejected request cannot be retried forever. On
// failure neither record moves and the next tick retries the same diff; no
// transport or decode failure is ever fatal, so the engine self-heals once
// connectivity returns.
//
// # Single-flight guard
//
// At most one device command is outstanding at any instant. The guard is
// released by a fixed cool-down timer after each command, independent of how
// fast the response arrived, which both rate-limits the device and
// guarantees a timed-out request cannot wedge the loop.
//
// # Concurrency
//
// SetDesired, Confirmed, Desired and RefreshNow may be called from any
// goroutine; all shared state is serialized under one mutex, and none of
// these calls ever block on the network.
package engine
