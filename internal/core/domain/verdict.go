package domain

import "encoding/json"

// VerdictKind selects which of the two response shapes a verdict encodes to.
type VerdictKind int

const (
	// VerdictOpening answers a stream open with allowed/denied.
	VerdictOpening VerdictKind = iota
	// VerdictClosing acknowledges a stream close. It has no fields on the wire.
	VerdictClosing
)

func (k VerdictKind) String() string {
	if k == VerdictClosing {
		return "closing"
	}
	return "opening"
}

// Verdict is the outcome of one admission decision.
type Verdict struct {
	Kind     VerdictKind
	Allowed  bool
	Reason   string
	NewURL   string
	Lifetime *uint64

	// Cause is the denial behind Reason. It never leaves the process.
	Cause error
}

// ClosingVerdict acknowledges a stream close.
func ClosingVerdict() Verdict {
	return Verdict{Kind: VerdictClosing}
}

func AllowVerdict() Verdict {
	return Verdict{Kind: VerdictOpening, Allowed: true}
}

// DenyVerdict turns a denial into allowed=false with the error text as reason.
func DenyVerdict(err error) Verdict {
	v := Verdict{Kind: VerdictOpening, Cause: err}
	if err != nil {
		v.Reason = err.Error()
	}
	return v
}

type openingResponse struct {
	Allowed  bool    `json:"allowed"`
	NewURL   string  `json:"new_url,omitempty"`
	Lifetime *uint64 `json:"lifetime,omitempty"`
	Reason   string  `json:"reason,omitempty"`
}

type closingResponse struct{}

// MarshalJSON drops the tag and emits only the active shape's fields.
func (v Verdict) MarshalJSON() ([]byte, error) {
	if v.Kind == VerdictClosing {
		return json.Marshal(closingResponse{})
	}
	return json.Marshal(openingResponse{
		Allowed:  v.Allowed,
		NewURL:   v.NewURL,
		Lifetime: v.Lifetime,
		Reason:   v.Reason,
	})
}
