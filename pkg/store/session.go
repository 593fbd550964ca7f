package store

// Session is the in-memory conversational state kept per chat session.
// It caches the signals the context-shift decider needs without a
// database round trip; the persisted history remains the source of
// truth when the cache has expired.
type Session struct {
	ID string `json:"id"` // ChatSessionID

	// LastQuery is the most recent user query in this session.
	LastQuery string `json:"last_query"`

	// LastProject is the project label cited by the most recent
	// assistant reply, extracted from its [source: X] marker.
	LastProject string `json:"last_project"`

	// Mode is the last answer mode used in this session.
	Mode string `json:"mode"`
}

// Answer modes. The mode controls tone, length and whether the judge
// loop runs at all (recruiter answers are returned unjudged).
const (
	ModeRecruiter = "recruiter"
	ModeEngineer  = "engineer"
	ModeAMA       = "ama"
)

// ValidMode reports whether m is one of the three answer modes.
func ValidMode(m string) bool {
	return m == ModeRecruiter || m == ModeEngineer || m == ModeAMA
}
