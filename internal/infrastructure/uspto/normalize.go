package uspto

import (
	"math"
	"strings"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
)

// SummaryFields is the reduced field set requested for free-text searches.
var SummaryFields = []string{
	"assignmentBag.assigneeBag.assigneeNameText",
	"applicationNumberText",
	"applicationMetaData.filingDate",
	"applicationMetaData.pctPublicationNumber",
	"applicationMetaData.applicationStatusDescriptionText",
	"applicationMetaData.inventionTitle",
	"applicationMetaData.patentNumber",
}

func first(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// Normalize maps a file wrapper onto a PatentRecord.  Missing values stay
// empty; nothing is deduplicated.
func Normalize(fw FileWrapper) patent.PatentRecord {
	meta := fw.ApplicationMetaData
	r := patent.PatentRecord{
		PatentNumber:      first(meta.PatentNumber, meta.PCTPublicationNumber),
		ApplicationNumber: first(fw.ApplicationNumberText),
		ApplicationType:   strings.ToUpper(strings.TrimSpace(meta.TypeCategory)),
		Title:             first(meta.InventionTitle),
		FilingDate:        first(meta.FilingDate, meta.EffectiveFilingDate),
		GrantDate:         first(meta.GrantDate, meta.PCTPublicationDate),
		Status:            first(meta.StatusDescription),
		PublicationNumber: first(meta.EarliestPublicationNumber, meta.PCTPublicationNumber),
		PublicationDate:   first(meta.EarliestPublicationDate, meta.PCTPublicationDate),
	}

	if fw.PatentTermAdjustment != nil && fw.PatentTermAdjustment.AdjustmentTotalQuantity != nil {
		days := int(math.Round(*fw.PatentTermAdjustment.AdjustmentTotalQuantity))
		r.PTADays = &days
	}

	for _, inv := range meta.InventorBag {
		r.Inventors = append(r.Inventors, inv.InventorNameText)
	}
	for _, assignment := range fw.AssignmentBag {
		for _, a := range assignment.AssigneeBag {
			r.Assignees = append(r.Assignees, patent.Assignee{
				Name:        a.AssigneeNameText,
				DocumentURL: assignment.DocumentLocationURI,
			})
		}
	}
	r.Parents = ParentRelations(fw.ParentContinuityBag)
	r.Children = ChildRelations(fw.ChildContinuityBag)
	return r
}

// ParentRelations converts parentContinuityBag entries.
func ParentRelations(links []ParentLink) []patent.ContinuityRelation {
	if len(links) == 0 {
		return nil
	}
	out := make([]patent.ContinuityRelation, 0, len(links))
	for _, p := range links {
		out = append(out, patent.ContinuityRelation{
			ParentApplicationNumber: strings.TrimSpace(p.ParentApplicationNumberText),
			ChildApplicationNumber:  strings.TrimSpace(p.ChildApplicationNumberText),
			PatentNumber:            p.ParentPatentNumber,
			FilingDate:              p.ParentFilingDate,
			Status:                  p.ParentStatusDescription,
			TypeCode:                p.TypeCode,
			TypeDescription:         p.TypeDescription,
		})
	}
	return out
}

// ChildRelations converts childContinuityBag entries.
func ChildRelations(links []ChildLink) []patent.ContinuityRelation {
	if len(links) == 0 {
		return nil
	}
	out := make([]patent.ContinuityRelation, 0, len(links))
	for _, c := range links {
		out = append(out, patent.ContinuityRelation{
			ParentApplicationNumber: strings.TrimSpace(c.ParentApplicationNumberText),
			ChildApplicationNumber:  strings.TrimSpace(c.ChildApplicationNumberText),
			PatentNumber:            c.ChildPatentNumber,
			FilingDate:              c.ChildFilingDate,
			Status:                  c.ChildStatusDescription,
			TypeCode:                c.TypeCode,
			TypeDescription:         c.TypeDescription,
		})
	}
	return out
}

// NormalizeEvents returns the prosecution history in upstream order.
func NormalizeEvents(fw FileWrapper) []patent.Event {
	out := make([]patent.Event, 0, len(fw.EventDataBag))
	for _, e := range fw.EventDataBag {
		out = append(out, patent.Event{
			Code:        e.EventCode,
			Description: e.EventDescriptionText,
			Date:        e.EventDate,
		})
	}
	return out
}

//Personal.AI order the ending
