package lookup

import (
	"github.com/turtacn/KeyIP-Continuity/internal/domain/family"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/proceeding"
)

// Result kinds.
const (
	ResultLookup     = "lookup"
	ResultSearch     = "search"
	ResultProceeding = "proceeding"
	ResultFamily     = "family"
)

// Advisory messages shown when nothing could be found.
const (
	msgRateLimited = "USPTO API rate limit reached. Please try again later."
	msgNoData      = "No USPTO data found for query: %s"
	msgLookupFail  = "USPTO lookup failed: %v"
	msgDocketFail  = "Error loading PTAB data for %s: %v"
	msgNoFamily    = "No continuity data found for application: %s"
)

// Result bundles everything one query produced.  Patent is nil when no
// record could be assembled.  Error is an advisory for the user, set only
// when no source produced data.
type Result struct {
	Kind              string                  `json:"kind"`
	Query             string                  `json:"query"`
	Patent            *patent.PatentRecord    `json:"patent"`
	Events            []patent.Event          `json:"events"`
	Family            []family.FamilyMember   `json:"family"`
	FamilyTree        *family.Tree            `json:"family_tree,omitempty"`
	FamilyTruncated   bool                    `json:"family_truncated,omitempty"`
	Proceedings       []proceeding.Proceeding `json:"proceedings"`
	Documents         []proceeding.Document   `json:"documents"`
	Summaries         []patent.Summary        `json:"summaries"`
	Preview           []patent.Summary        `json:"preview,omitempty"`
	Total             int                     `json:"total"`
	NeedsConfirmation bool                    `json:"needs_confirmation"`
	Error             string                  `json:"error,omitempty"`
}

func (r *Result) empty() bool {
	return r.Patent == nil && len(r.Summaries) == 0 && len(r.Proceedings) == 0 &&
		len(r.Documents) == 0 && len(r.Family) == 0
}

// ResultView is Result with display sentinels applied.
type ResultView struct {
	Kind              string                  `json:"kind"`
	Query             string                  `json:"query"`
	Patent            *patent.RecordView      `json:"patent"`
	Events            []patent.Event          `json:"events"`
	Family            []family.FamilyMember   `json:"family"`
	FamilyOutcomes    map[string]int          `json:"family_outcomes,omitempty"`
	FamilyTruncated   bool                    `json:"family_truncated,omitempty"`
	Proceedings       []proceeding.Proceeding `json:"proceedings"`
	Documents         []proceeding.Document   `json:"documents"`
	Summaries         []patent.Summary        `json:"summaries"`
	Preview           []patent.Summary        `json:"preview,omitempty"`
	Total             int                     `json:"total"`
	NeedsConfirmation bool                    `json:"needs_confirmation"`
	Error             string                  `json:"error,omitempty"`
}

// View renders r for presenters.  Slices are never nil.
func (r *Result) View() ResultView {
	v := ResultView{
		Kind:              r.Kind,
		Query:             r.Query,
		Events:            r.Events,
		Family:            make([]family.FamilyMember, 0, len(r.Family)),
		FamilyTruncated:   r.FamilyTruncated,
		Proceedings:       r.Proceedings,
		Documents:         r.Documents,
		Summaries:         r.Summaries,
		Preview:           r.Preview,
		Total:             r.Total,
		NeedsConfirmation: r.NeedsConfirmation,
		Error:             r.Error,
	}
	if r.Patent != nil {
		pv := r.Patent.View()
		v.Patent = &pv
	}
	for _, m := range r.Family {
		v.Family = append(v.Family, m.View())
	}
	if r.FamilyTree != nil {
		v.FamilyOutcomes = r.FamilyTree.Outcomes()
	}
	if v.Events == nil {
		v.Events = []patent.Event{}
	}
	if v.Proceedings == nil {
		v.Proceedings = []proceeding.Proceeding{}
	}
	if v.Documents == nil {
		v.Documents = []proceeding.Document{}
	}
	if v.Summaries == nil {
		v.Summaries = []patent.Summary{}
	}
	return v
}

// Completed is the payload of the lookup.completed event.
type Completed struct {
	Kind            string `json:"kind"`
	Query           string `json:"query"`
	Total           int    `json:"total"`
	FamilySize      int    `json:"family_size"`
	ProceedingCount int    `json:"proceeding_count"`
	DocumentCount   int    `json:"document_count"`
	Advisory        string `json:"advisory,omitempty"`
	DurationMS      int64  `json:"duration_ms"`
}

//Personal.AI order the ending
