package selection

// Origin records where a mutation request started.
type Origin int

const (
	// OriginUnspecified represents an invalid origin value.
	OriginUnspecified Origin = iota
	// OriginUI marks a mutation initiated by the local UI layer.
	OriginUI
	// OriginCore marks an echo of a change the domain core already applied.
	OriginCore
	// OriginRemote marks a mutation received from a remote peer.
	OriginRemote
)

// Forwards reports whether a mutation with this origin must be forwarded to
// the mutation gateway. Only UI-originated mutations forward; core and remote
// mutations already happened elsewhere and re-forwarding them would loop.
func (o Origin) Forwards() bool {
	return o == OriginUI
}

// String returns the origin name for logs and telemetry.
func (o Origin) String() string {
	switch o {
	case OriginUI:
		return "ui"
	case OriginCore:
		return "core"
	case OriginRemote:
		return "remote"
	default:
		return "unspecified"
	}
}
