package family

import (
	"sort"
	"strings"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
)

// FamilyMember is the summary of one related application.
type FamilyMember struct {
	ApplicationNumber string `json:"application_number"`
	PatentNumber      string `json:"patent_number,omitempty"`
	Title             string `json:"title,omitempty"`
	FilingDate        string `json:"filing_date,omitempty"`
	Status            string `json:"status,omitempty"`
}

// MemberOf summarizes a normalized record.  app is used when the record has
// no application number of its own.
func MemberOf(app string, r patent.PatentRecord) FamilyMember {
	if r.ApplicationNumber != "" {
		app = r.ApplicationNumber
	}
	return FamilyMember{
		ApplicationNumber: app,
		PatentNumber:      r.PatentNumber,
		Title:             r.Title,
		FilingDate:        r.FilingDate,
		Status:            r.Status,
	}
}

// View applies display sentinels.
func (m FamilyMember) View() FamilyMember {
	return FamilyMember{
		ApplicationNumber: patent.Or(m.ApplicationNumber, patent.NoApplicationNumber),
		PatentNumber:      patent.Or(m.PatentNumber, patent.NoPatentNumber),
		Title:             patent.Or(m.Title, patent.NoTitle),
		FilingDate:        patent.Or(m.FilingDate, patent.Missing),
		Status:            patent.Or(m.Status, patent.Missing),
	}
}

const (
	rankNumeric = iota
	rankNoDigits
	rankInternational
)

type sortKey struct {
	rank   int
	digits string // leading zeros stripped; "" means zero
}

func keyOf(app string) sortKey {
	upper := strings.ToUpper(strings.TrimSpace(app))
	if strings.HasPrefix(upper, "PCT") || strings.HasPrefix(upper, "WO") {
		return sortKey{rank: rankInternational}
	}
	var b strings.Builder
	for _, r := range app {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return sortKey{rank: rankNoDigits}
	}
	return sortKey{rank: rankNumeric, digits: strings.TrimLeft(b.String(), "0")}
}

func (k sortKey) less(o sortKey) bool {
	if k.rank != o.rank {
		return k.rank < o.rank
	}
	if k.rank != rankNumeric {
		return false
	}
	if len(k.digits) != len(o.digits) {
		return len(k.digits) < len(o.digits)
	}
	return k.digits < o.digits
}

// SortMembers returns members ordered by the integer formed from the digits
// of their application numbers.  Numbers without digits follow, and PCT or
// WO numbers come last.  Ties keep their input order.  The input slice is
// not modified.
func SortMembers(members []FamilyMember) []FamilyMember {
	type keyed struct {
		member FamilyMember
		key    sortKey
	}
	items := make([]keyed, len(members))
	for i, m := range members {
		items[i] = keyed{member: m, key: keyOf(m.ApplicationNumber)}
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].key.less(items[j].key)
	})
	out := make([]FamilyMember, len(items))
	for i, it := range items {
		out[i] = it.member
	}
	return out
}

//Personal.AI order the ending
