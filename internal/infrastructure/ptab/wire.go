// Package ptab adapts the trial proceedings registry: proceeding searches by
// field, docket document listings and the raw document download.
package ptab

import (
	"strings"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/proceeding"
)

type proceedingRecord struct {
	ProceedingNumber                string `json:"proceedingNumber"`
	ProceedingStatusCategory        string `json:"proceedingStatusCategory"`
	PetitionerPartyName             string `json:"petitionerPartyName"`
	ProceedingFilingDate            string `json:"proceedingFilingDate"`
	RespondentPatentNumber          string `json:"respondentPatentNumber"`
	RespondentApplicationNumberText string `json:"respondentApplicationNumberText"`
	RespondentPartyName             string `json:"respondentPartyName"`
}

func (r proceedingRecord) toDomain() proceeding.Proceeding {
	return proceeding.Proceeding{
		Number:            strings.TrimSpace(r.ProceedingNumber),
		Status:            r.ProceedingStatusCategory,
		Petitioner:        r.PetitionerPartyName,
		FilingDate:        r.ProceedingFilingDate,
		PatentNumber:      strings.TrimSpace(r.RespondentPatentNumber),
		ApplicationNumber: strings.TrimSpace(r.RespondentApplicationNumberText),
		PatentOwner:       strings.TrimSpace(r.RespondentPartyName),
	}
}

type documentRecord struct {
	DocumentFilingDate string `json:"documentFilingDate"`
	DocumentTypeName   string `json:"documentTypeName"`
	DocumentNumber     string `json:"documentNumber"`
	DocumentIdentifier string `json:"documentIdentifier"`
	DocumentName       string `json:"documentName"`
}

func (r documentRecord) toDomain() proceeding.Document {
	return proceeding.Document{
		FilingDate: r.DocumentFilingDate,
		Type:       r.DocumentTypeName,
		Number:     r.DocumentNumber,
		Identifier: r.DocumentIdentifier,
		Name:       r.DocumentName,
	}
}

// Both listing endpoints wrap their rows in results.  A nil slice means the
// key was absent.
type proceedingsResponse struct {
	Results *[]proceedingRecord `json:"results"`
}

type documentsResponse struct {
	Results *[]documentRecord `json:"results"`
}

//Personal.AI order the ending
