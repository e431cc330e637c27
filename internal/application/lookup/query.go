package lookup

import (
	"regexp"
	"strings"

	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// IdentifierKind names the kind of number a structured lookup starts from.
type IdentifierKind string

const (
	KindApplication IdentifierKind = "application"
	KindPatent      IdentifierKind = "patent"
	KindPublication IdentifierKind = "publication"
)

var (
	pctApplicationPattern = regexp.MustCompile(`(?i)^PCT/[A-Z]{2}\d{4}/\d{6}$`)
	docketPattern         = regexp.MustCompile(`^[A-Za-z]+\d{4}-\d+$`)
	bareNumberPattern     = regexp.MustCompile(`^\d{7,8}$`)
)

// IsDocketNumber reports whether term is shaped like a trial docket number
// such as IPR2020-00123.
func IsDocketNumber(term string) bool {
	return docketPattern.MatchString(strings.TrimSpace(term))
}

// Identifier is one application, patent or publication number.
type Identifier struct {
	Kind  IdentifierKind `json:"kind"`
	Value string         `json:"value"`
}

// Query builds the registry search expression for id.
func (id Identifier) Query() (string, error) {
	v := strings.TrimSpace(id.Value)
	if v == "" {
		return "", errors.InvalidParam("identifier value is required")
	}
	switch id.Kind {
	case KindPublication:
		pub := strings.NewReplacer(" ", "", "/", "").Replace(v)
		if strings.HasPrefix(strings.ToUpper(pub), "WO") {
			return "publicationNumberText:" + pub, nil
		}
		return "applicationMetaData.earliestPublicationNumber:" + pub, nil
	case KindApplication:
		if pctApplicationPattern.MatchString(v) {
			return "applicationMetaData.pctPublicationNumber:" + v, nil
		}
		return "applicationNumberText:" + v, nil
	case KindPatent:
		return "applicationMetaData.patentNumber:" + v, nil
	default:
		return "", errors.InvalidParam("unknown identifier kind " + string(id.Kind))
	}
}

// fallbackID is what the proceedings registry is asked when the search
// registry has nothing.  Publication numbers are not indexed there.
func (id Identifier) fallbackID() string {
	switch id.Kind {
	case KindApplication, KindPatent:
		return strings.TrimSpace(id.Value)
	default:
		return ""
	}
}

func memberQuery(applicationNumber string) string {
	return "applicationNumberText:" + applicationNumber
}

// Request is the union of inputs accepted by Resolve.  Proceeding wins over
// Term, which wins over the structured identifiers.
type Request struct {
	Application  string `form:"application" json:"application,omitempty"`
	Patent       string `form:"patent" json:"patent,omitempty"`
	Publication  string `form:"publication" json:"publication,omitempty"`
	Term         string `form:"q" json:"q,omitempty"`
	Proceeding   string `form:"proceeding" json:"proceeding,omitempty"`
	ConfirmLarge bool   `form:"confirm_large" json:"confirm_large,omitempty"`
}

// Identifier extracts the single structured identifier of r.
func (r Request) Identifier() (Identifier, error) {
	var found []Identifier
	for _, c := range []Identifier{
		{Kind: KindPublication, Value: r.Publication},
		{Kind: KindApplication, Value: r.Application},
		{Kind: KindPatent, Value: r.Patent},
	} {
		if strings.TrimSpace(c.Value) != "" {
			c.Value = strings.TrimSpace(c.Value)
			found = append(found, c)
		}
	}
	switch len(found) {
	case 0:
		return Identifier{}, errors.InvalidParam("one of application, patent or publication is required")
	case 1:
		return found[0], nil
	default:
		return Identifier{}, errors.InvalidParam("only one of application, patent or publication may be given")
	}
}

//Personal.AI order the ending
