// Package patent defines the canonical application record assembled from the
// search registry and back-filled from the proceedings registry.
package patent

import (
	"strconv"
	"strings"
)

// Display sentinels.  They never appear in a PatentRecord itself; View
// substitutes them for absent values at presentation time.
const (
	NoPatentNumber      = "Patent # not found"
	NoApplicationNumber = "Application # not found"
	NoTitle             = "(No Title)"
	Missing             = "—"
)

// ─────────────────────────────────────────────────────────────────────────────
// Value objects
// ─────────────────────────────────────────────────────────────────────────────

// Assignee is one party on a recorded assignment.
type Assignee struct {
	Name        string `json:"name"`
	DocumentURL string `json:"document_url,omitempty"`
}

// ContinuityRelation links a parent application to a child application.  The
// same relation may be reported from either side; neither side is assumed to
// mirror the other.
type ContinuityRelation struct {
	ParentApplicationNumber string `json:"parent_application_number,omitempty"`
	ChildApplicationNumber  string `json:"child_application_number,omitempty"`
	PatentNumber            string `json:"patent_number,omitempty"`
	FilingDate              string `json:"filing_date,omitempty"`
	Status                  string `json:"status,omitempty"`
	TypeCode                string `json:"type_code,omitempty"`
	TypeDescription         string `json:"type_description,omitempty"`
}

// Event is one prosecution history entry.
type Event struct {
	Code        string `json:"code,omitempty"`
	Description string `json:"description,omitempty"`
	Date        string `json:"date,omitempty"`
}

// ─────────────────────────────────────────────────────────────────────────────
// PatentRecord
// ─────────────────────────────────────────────────────────────────────────────

// PatentRecord is the normalized view of one application.  Absent values are
// empty strings or nil.
type PatentRecord struct {
	PatentNumber      string               `json:"patent_number,omitempty"`
	ApplicationNumber string               `json:"application_number,omitempty"`
	ApplicationType   string               `json:"application_type,omitempty"`
	Title             string               `json:"title,omitempty"`
	FilingDate        string               `json:"filing_date,omitempty"`
	GrantDate         string               `json:"grant_date,omitempty"`
	PTADays           *int                 `json:"pta_days,omitempty"`
	Status            string               `json:"status,omitempty"`
	PublicationNumber string               `json:"publication_number,omitempty"`
	PublicationDate   string               `json:"publication_date,omitempty"`
	Inventors         []string             `json:"inventors,omitempty"`
	Assignees         []Assignee           `json:"assignees,omitempty"`
	Parents           []ContinuityRelation `json:"parents,omitempty"`
	Children          []ContinuityRelation `json:"children,omitempty"`
}

// HasAssignee reports whether an assignee with exactly this name is present.
func (r *PatentRecord) HasAssignee(name string) bool {
	for _, a := range r.Assignees {
		if a.Name == name {
			return true
		}
	}
	return false
}

// BackFill copies identifiers from a secondary source into fields that are
// still empty.  owner is appended as an assignee unless one with that name
// already exists.  Populated fields are never overwritten.
func (r *PatentRecord) BackFill(patentNumber, applicationNumber, owner string) {
	if r.PatentNumber == "" && patentNumber != "" {
		r.PatentNumber = patentNumber
	}
	if r.ApplicationNumber == "" && applicationNumber != "" {
		r.ApplicationNumber = applicationNumber
	}
	if owner != "" && !r.HasAssignee(owner) {
		r.Assignees = append(r.Assignees, Assignee{Name: owner})
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Presentation
// ─────────────────────────────────────────────────────────────────────────────

// RecordView is a PatentRecord with display sentinels applied.
type RecordView struct {
	PatentNumber      string               `json:"patent_number"`
	ApplicationNumber string               `json:"application_number"`
	Title             string               `json:"title"`
	FilingDate        string               `json:"filing_date"`
	GrantDate         string               `json:"grant_date"`
	PTADays           string               `json:"pta_days"`
	Status            string               `json:"status"`
	PublicationNumber string               `json:"publication_number"`
	PublicationDate   string               `json:"publication_date"`
	Inventors         []string             `json:"inventors"`
	Assignees         []Assignee           `json:"assignees"`
	Parents           []ContinuityRelation `json:"parents"`
	Children          []ContinuityRelation `json:"children"`
}

// Or returns v, or fallback when v is empty.
func Or(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

// View renders the record for presenters.
func (r PatentRecord) View() RecordView {
	pta := Missing
	if r.PTADays != nil {
		pta = strconv.Itoa(*r.PTADays)
	}
	v := RecordView{
		PatentNumber:      Or(r.PatentNumber, NoPatentNumber),
		ApplicationNumber: Or(r.ApplicationNumber, NoApplicationNumber),
		Title:             Or(r.Title, NoTitle),
		FilingDate:        Or(r.FilingDate, Missing),
		GrantDate:         Or(r.GrantDate, Missing),
		PTADays:           pta,
		Status:            Or(r.Status, Missing),
		PublicationNumber: Or(r.PublicationNumber, Missing),
		PublicationDate:   Or(r.PublicationDate, Missing),
		Inventors:         r.Inventors,
		Assignees:         r.Assignees,
		Parents:           r.Parents,
		Children:          r.Children,
	}
	if v.Inventors == nil {
		v.Inventors = []string{}
	}
	if v.Assignees == nil {
		v.Assignees = []Assignee{}
	}
	if v.Parents == nil {
		v.Parents = []ContinuityRelation{}
	}
	if v.Children == nil {
		v.Children = []ContinuityRelation{}
	}
	return v
}

// Summary is one row of a multi-hit free-text search.
type Summary struct {
	ApplicationNumber string `json:"application_number"`
	PatentNumber      string `json:"patent_number,omitempty"`
	FilingDate        string `json:"filing_date,omitempty"`
	Status            string `json:"status,omitempty"`
	Title             string `json:"title,omitempty"`
	Assignees         string `json:"assignees,omitempty"`
}

// SummaryOf builds a search row from a record.  Assignee names are joined in
// order; blank names are skipped.
func SummaryOf(r PatentRecord) Summary {
	names := make([]string, 0, len(r.Assignees))
	for _, a := range r.Assignees {
		if a.Name != "" {
			names = append(names, a.Name)
		}
	}
	return Summary{
		ApplicationNumber: r.ApplicationNumber,
		PatentNumber:      r.PatentNumber,
		FilingDate:        r.FilingDate,
		Status:            r.Status,
		Title:             r.Title,
		Assignees:         strings.Join(names, ", "),
	}
}

//Personal.AI order the ending
