// Package uspto adapts the patent-prosecution registry: the paginated
// application search, the per-application continuity endpoint and the
// normalization of file wrappers into patent records.
package uspto

import "encoding/json"

// FileWrapper is one entry of patentFileWrapperDataBag.  Only the fields the
// normalizer reads are declared.
type FileWrapper struct {
	ApplicationNumberText string       `json:"applicationNumberText"`
	ApplicationMetaData   MetaData     `json:"applicationMetaData"`
	PatentTermAdjustment  *PTAData     `json:"patentTermAdjustmentData,omitempty"`
	AssignmentBag         []Assignment `json:"assignmentBag,omitempty"`
	ParentContinuityBag   []ParentLink `json:"parentContinuityBag,omitempty"`
	ChildContinuityBag    []ChildLink  `json:"childContinuityBag,omitempty"`
	EventDataBag          []EventData  `json:"eventDataBag,omitempty"`
}

// MetaData is applicationMetaData.
type MetaData struct {
	InventionTitle            string     `json:"inventionTitle,omitempty"`
	FilingDate                string     `json:"filingDate,omitempty"`
	EffectiveFilingDate       string     `json:"effectiveFilingDate,omitempty"`
	GrantDate                 string     `json:"grantDate,omitempty"`
	PatentNumber              string     `json:"patentNumber,omitempty"`
	PCTPublicationNumber      string     `json:"pctPublicationNumber,omitempty"`
	PCTPublicationDate        string     `json:"pctPublicationDate,omitempty"`
	EarliestPublicationNumber string     `json:"earliestPublicationNumber,omitempty"`
	EarliestPublicationDate   string     `json:"earliestPublicationDate,omitempty"`
	StatusDescription         string     `json:"applicationStatusDescriptionText,omitempty"`
	TypeCategory              string     `json:"applicationTypeCategory,omitempty"`
	InventorBag               []Inventor `json:"inventorBag,omitempty"`
}

// Inventor is one inventorBag entry.
type Inventor struct {
	InventorNameText string `json:"inventorNameText"`
}

// PTAData is patentTermAdjustmentData.  The quantity arrives as a JSON number
// that may carry a fractional part.
type PTAData struct {
	AdjustmentTotalQuantity *float64 `json:"adjustmentTotalQuantity,omitempty"`
}

// Assignment is one assignmentBag entry.
type Assignment struct {
	DocumentLocationURI string     `json:"assignmentDocumentLocationURI,omitempty"`
	AssigneeBag         []Assignee `json:"assigneeBag,omitempty"`
}

// Assignee is one assigneeBag entry.
type Assignee struct {
	AssigneeNameText string `json:"assigneeNameText"`
}

// ParentLink is one parentContinuityBag entry.
type ParentLink struct {
	ParentApplicationNumberText string `json:"parentApplicationNumberText,omitempty"`
	ParentPatentNumber          string `json:"parentPatentNumber,omitempty"`
	ParentFilingDate            string `json:"parentApplicationFilingDate,omitempty"`
	ParentStatusDescription     string `json:"parentApplicationStatusDescriptionText,omitempty"`
	ChildApplicationNumberText  string `json:"childApplicationNumberText,omitempty"`
	TypeCode                    string `json:"claimParentageTypeCode,omitempty"`
	TypeDescription             string `json:"claimParentageTypeCodeDescriptionText,omitempty"`
}

// ChildLink is one childContinuityBag entry.
type ChildLink struct {
	ParentApplicationNumberText string `json:"parentApplicationNumberText,omitempty"`
	ChildApplicationNumberText  string `json:"childApplicationNumberText,omitempty"`
	ChildPatentNumber           string `json:"childPatentNumber,omitempty"`
	ChildFilingDate             string `json:"childApplicationFilingDate,omitempty"`
	ChildStatusDescription      string `json:"childApplicationStatusDescriptionText,omitempty"`
	TypeCode                    string `json:"claimParentageTypeCode,omitempty"`
	TypeDescription             string `json:"claimParentageTypeCodeDescriptionText,omitempty"`
}

// EventData is one eventDataBag entry.
type EventData struct {
	EventCode            string `json:"eventCode,omitempty"`
	EventDescriptionText string `json:"eventDescriptionText,omitempty"`
	EventDate            string `json:"eventDate,omitempty"`
}

// searchRequest is the body of POST applications/search.
type searchRequest struct {
	Q          string     `json:"q"`
	Pagination pagination `json:"pagination"`
	Fields     []string   `json:"fields,omitempty"`
}

type pagination struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// searchResponse distinguishes an absent bag (nil) from an empty one.
type searchResponse struct {
	Count int            `json:"count"`
	Bag   *[]FileWrapper `json:"patentFileWrapperDataBag"`
}

type continuityResponse struct {
	Bag *[]json.RawMessage `json:"patentFileWrapperDataBag"`
}

type continuityBag struct {
	ParentContinuityBag []ParentLink `json:"parentContinuityBag"`
	ChildContinuityBag  []ChildLink  `json:"childContinuityBag"`
}

//Personal.AI order the ending
