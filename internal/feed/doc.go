// Package feed serves confirmed fan state to dashboard clients.
//
// The feed is a small WebSocket fan-out: the engine's OnUpdate hook calls
// Broadcast with each confirmed state change, and every connected client
// receives the snapshot as a JSON text message. New clients get the last
// known snapshot immediately on connect, so a dashboard renders without
// waiting for the next change. The current snapshot is also available as
// plain JSON at /status for one-shot consumers.
//
// Slow clients drop intermediate snapshots instead of stalling the
// broadcast; since every state change broadcasts the full state, a client
// that drops messages still converges on the latest snapshot.
package feed
