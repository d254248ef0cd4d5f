package errors

// Code is a machine-readable error code.
type Code string

const (
	// CodeUnknown represents an unknown error.
	CodeUnknown Code = "UNKNOWN"

	// Shape errors
	CodeShapeEmptyID        Code = "SHAPE_EMPTY_ID"
	CodeShapeEmptyOwnerUser Code = "SHAPE_EMPTY_OWNER_USER"
	CodeShapeInvalidTracker Code = "SHAPE_INVALID_TRACKER"
	CodeShapeInvalidAura    Code = "SHAPE_INVALID_AURA"

	// Storage errors
	CodeNotFound           Code = "NOT_FOUND"
	CodeStorageUnavailable Code = "STORAGE_UNAVAILABLE"

	// Catalog errors
	CodeCatalogInvalidPreset   Code = "CATALOG_INVALID_PRESET"
	CodeCatalogDuplicatePreset Code = "CATALOG_DUPLICATE_PRESET"

	// Transport errors
	CodePeerUnknown  Code = "PEER_UNKNOWN"
	CodePeerRejected Code = "PEER_REJECTED"
)
