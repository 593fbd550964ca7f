package stage

import "fmt"

// Status is the explicit outcome of one pipeline stage. Stages never
// hide a fallback behind a silent success: a stage that substituted a
// safe default reports Degraded with the reason.
type Status int

const (
	OK Status = iota
	Degraded
	Failed
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome records how a named stage concluded for one pipeline run.
type Outcome struct {
	Stage  string `json:"stage"`
	Status Status `json:"status"`
	Reason string `json:"reason,omitempty"`
}

func Ok(name string) Outcome {
	return Outcome{Stage: name, Status: OK}
}

func Degrade(name, reason string) Outcome {
	return Outcome{Stage: name, Status: Degraded, Reason: reason}
}

func Fail(name, reason string) Outcome {
	return Outcome{Stage: name, Status: Failed, Reason: reason}
}

// Recorder accumulates outcomes in stage execution order.
type Recorder struct {
	outcomes []Outcome
}

func (r *Recorder) Record(o Outcome) {
	r.outcomes = append(r.outcomes, o)
}

func (r *Recorder) Outcomes() []Outcome {
	return r.outcomes
}

// Degraded reports whether any recorded stage fell back to a default.
func (r *Recorder) Degraded() bool {
	for _, o := range r.outcomes {
		if o.Status != OK {
			return true
		}
	}
	return false
}
