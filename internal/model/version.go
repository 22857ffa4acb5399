package model

// Version constants recorded alongside persisted runs.
const (
	// EngineVersion is the sigconv engine version.
	EngineVersion = "0.1.0"

	// RequestVersion is the request schema version used for hashing.
	RequestVersion = "1"
)
