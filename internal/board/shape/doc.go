// Package shape defines the board shape slice relevant to selection sync:
// default access, per-user ownership grants, numeric trackers, and auras.
//
// The package centralizes the access capability ordering (edit implies
// movement implies vision) so every mutation path applies the same
// propagation instead of re-checking invariants at the edges.
package shape
