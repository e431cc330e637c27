// Package proceeding models trial proceedings and their docket documents and
// resolves an arbitrary identifier to the proceedings it names.
package proceeding

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Proceeding is one trial proceeding.  Number is unique.
type Proceeding struct {
	Number            string `json:"number"`
	Status            string `json:"status,omitempty"`
	Petitioner        string `json:"petitioner,omitempty"`
	FilingDate        string `json:"filing_date,omitempty"`
	PatentNumber      string `json:"patent_number,omitempty"`
	ApplicationNumber string `json:"application_number,omitempty"`
	PatentOwner       string `json:"patent_owner,omitempty"`
}

// Document is one docket entry of a proceeding.
type Document struct {
	FilingDate string `json:"filing_date,omitempty"`
	Type       string `json:"type,omitempty"`
	Number     string `json:"number,omitempty"`
	Identifier string `json:"identifier,omitempty"`
	Name       string `json:"name,omitempty"`
}

// Field names a proceedings-registry query parameter.
type Field string

// Query fields, in lookup order.
const (
	FieldPatentNumber      Field = "patentNumber"
	FieldApplicationNumber Field = "applicationNumberText"
	FieldProceedingNumber  Field = "proceedingNumber"
	FieldPatentOwnerName   Field = "patentOwnerName"
	FieldPartyName         Field = "partyName"
)

// LookupOrder is the order in which an identifier is tried against the
// registry.
var LookupOrder = []Field{
	FieldPatentNumber,
	FieldApplicationNumber,
	FieldProceedingNumber,
	FieldPatentOwnerName,
	FieldPartyName,
}

// Finder queries the proceedings registry for one field.
type Finder interface {
	FindProceedings(ctx context.Context, field Field, value string) ([]Proceeding, error)
}

// DocumentLister lists docket documents of one proceeding.
type DocumentLister interface {
	ListDocuments(ctx context.Context, proceedingNumber string) ([]Document, error)
}

// Merge appends the proceedings of more to base, skipping numbers already
// present and entries without a number.  First-seen order is kept.
func Merge(base []Proceeding, more ...[]Proceeding) []Proceeding {
	seen := make(map[string]struct{}, len(base))
	out := make([]Proceeding, 0, len(base))
	add := func(p Proceeding) {
		if p.Number == "" {
			return
		}
		if _, dup := seen[p.Number]; dup {
			return
		}
		seen[p.Number] = struct{}{}
		out = append(out, p)
	}
	for _, p := range base {
		add(p)
	}
	for _, batch := range more {
		for _, p := range batch {
			add(p)
		}
	}
	return out
}

// ─────────────────────────────────────────────────────────────────────────────
// Document ordering
// ─────────────────────────────────────────────────────────────────────────────

var dateLayouts = []string{
	"2006-01-02",
	"01-02-2006",
	"01/02/2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// farFuture stands in for dates that do not parse, placing them ahead of
// every dated entry in a newest-first ordering.
var farFuture = time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

func parseFilingDate(s string) time.Time {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return farFuture
}

func parseDocumentNumber(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return -1
	}
	return n
}

// SortDocuments orders docs newest filing date first, then by ascending
// document number.  Unparseable dates sort as the newest and unparseable
// numbers as the lowest.  The sort is stable.
func SortDocuments(docs []Document) {
	sort.SliceStable(docs, func(i, j int) bool {
		di, dj := parseFilingDate(docs[i].FilingDate), parseFilingDate(docs[j].FilingDate)
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return parseDocumentNumber(docs[i].Number) < parseDocumentNumber(docs[j].Number)
	})
}

//Personal.AI order the ending
