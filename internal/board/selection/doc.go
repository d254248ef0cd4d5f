// Package selection maintains the UI-facing mirror of one selected board
// shape's mutable sub-state (access, owners, trackers, auras) and keeps it
// synchronized with the authoritative shape store and remote peers.
//
// Every mutation carries an Origin. UI-originated mutations are applied to
// the mirror and forwarded to the mutation gateway exactly once; core- and
// remote-originated mutations are echoes of changes that already happened
// elsewhere and are applied locally only. That single rule is what prevents
// forwarding loops when a gateway call re-enters the engine with a new event.
//
// The engine is event-loop confined: callers must deliver all mutations on
// one goroutine. It holds no locks and never blocks.
package selection
