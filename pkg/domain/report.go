package domain

import (
	"fmt"
	"time"
)

// QueryStage names the attribute query that produced a fault.
type QueryStage string

const (
	StageScalar   QueryStage = "scalar"
	StageIdentity QueryStage = "identity"
)

// QueryFault records an unexpected provider failure during one attribute
// query. Faults are contained at the node boundary: the pass logs them and
// moves on to the next project.
type QueryFault struct {
	Stage QueryStage
	Err   error
}

func (f *QueryFault) Error() string {
	return fmt.Sprintf("%s attribute query faulted: %v", f.Stage, f.Err)
}

func (f *QueryFault) Unwrap() error {
	return f.Err
}

// ProjectReport is everything one survey pass learned about one node.
// Scalars and Identities are parallel to ScalarFields and IdentityFields:
// slot i answers field i, always, even when a query faulted.
type ProjectReport struct {
	ScalarFields   []ScalarField    `json:"scalar_fields"`
	Scalars        []ScalarResult   `json:"scalars"`
	IdentityFields []IdentityField  `json:"identity_fields"`
	Identities     []IdentityResult `json:"identities"`

	// Skipped is true when the handle did not expose the attribute query
	// capability. Skipped reports carry no results.
	Skipped bool `json:"skipped,omitempty"`

	// Faults holds at most one entry per query stage.
	Faults []*QueryFault `json:"-"`
}

// Scalar returns the result slot for the given field, if it was requested.
func (r *ProjectReport) Scalar(field ScalarField) (ScalarResult, bool) {
	for i, f := range r.ScalarFields {
		if f == field && i < len(r.Scalars) {
			return r.Scalars[i], true
		}
	}
	return ScalarResult{}, false
}

// Identity returns the result slot for the given field, if it was requested.
func (r *ProjectReport) Identity(field IdentityField) (IdentityResult, bool) {
	for i, f := range r.IdentityFields {
		if f == field && i < len(r.Identities) {
			return r.Identities[i], true
		}
	}
	return IdentityResult{}, false
}

// Supported reports whether at least one requested field came back FieldOK.
func (r *ProjectReport) Supported() bool {
	for _, s := range r.Scalars {
		if s.Status == FieldOK {
			return true
		}
	}
	for _, id := range r.Identities {
		if id.Status == FieldOK {
			return true
		}
	}
	return false
}

// PassSummary describes one finished survey pass.
type PassSummary struct {
	// Visited counts every handle the cursor yielded.
	Visited int `json:"visited"`
	// Reported counts nodes that produced at least one report line.
	Reported int `json:"reported"`
	// Skipped counts nodes lacking the attribute query capability.
	Skipped int `json:"skipped"`
	// Faulted counts nodes where at least one query stage faulted.
	Faulted int `json:"faulted"`
	// Dropped counts report writes lost to an unavailable sink.
	Dropped int `json:"dropped"`

	Duration time.Duration `json:"duration"`
}
