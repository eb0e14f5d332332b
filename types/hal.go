package types

// Link is the link/state reported for a capability.
type Link string

const (
	LinkUp       Link = "up"
	LinkDown     Link = "down"
	LinkDegraded Link = "degraded"
)

type CapabilityStatus struct {
	Link  Link   `json:"link"`
	TS    int64  `json:"ts_ns"`           // Unix ns
	Error string `json:"error,omitempty"` // machine-readable short code
}

// ------------------------
// Generic replies
// ------------------------

type OKReply struct {
	OK bool `json:"ok"`
}

type ErrorReply struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
}

// ------------------------
// Info envelope (retained)
// ------------------------

type Info struct {
	SchemaVersion int               `json:"schema_version"`
	Driver        string            `json:"driver"`
	Address       CapabilityAddress `json:"address"`
	Detail        interface{}       `json:"detail,omitempty"` // *RegulatorInfo
}
