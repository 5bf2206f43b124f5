package model

// FailureClass separates the three ways a bundle entry can fail.
type FailureClass string

const (
	ClassNone          FailureClass = ""
	ClassStructural    FailureClass = "structural"
	ClassCryptographic FailureClass = "cryptographic"
	ClassIdentity      FailureClass = "identity"
)

// EntryResult is the verification outcome of one bundle slot.
//
// ID is the id declared in the bundle header (base64url). Size is the declared
// byte length. Code and Reason are empty when Valid is true.
type EntryResult struct {
	Index  int          `json:"index"`
	ID     string       `json:"id"`
	Size   uint64       `json:"size"`
	Valid  bool         `json:"valid"`
	Class  FailureClass `json:"class,omitempty"`
	Code   ErrorCode    `json:"code,omitempty"`
	Reason string       `json:"reason,omitempty"`
}

// Report is the per-index verification result of a bundle.
//
// Entries are always in header order. HeaderError is set when the header table
// itself could not be read; Entries is then empty.
type Report struct {
	Count       int           `json:"count"`
	Entries     []EntryResult `json:"entries"`
	HeaderError *Error        `json:"headerError,omitempty"`
}

// Valid reports whether the header was readable and every entry verified.
func (r Report) Valid() bool {
	if r.HeaderError != nil {
		return false
	}
	for _, e := range r.Entries {
		if !e.Valid {
			return false
		}
	}
	return true
}

// ValidIDs returns the declared ids of the entries that verified, in order.
func (r Report) ValidIDs() []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		if e.Valid {
			out = append(out, e.ID)
		}
	}
	return out
}

// Failed returns the entries that did not verify, in order.
func (r Report) Failed() []EntryResult {
	var out []EntryResult
	for _, e := range r.Entries {
		if !e.Valid {
			out = append(out, e)
		}
	}
	return out
}
