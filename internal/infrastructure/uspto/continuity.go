package uspto

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/family"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/upstream"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

const continuityPath = "/api/v1/patent/applications/%s/continuity"

// ContinuityClient reads per-application continuity.  It satisfies
// family.ContinuityFetcher.
type ContinuityClient struct {
	http *upstream.Client
}

// NewContinuityClient wraps an upstream client configured for the search
// registry.
func NewContinuityClient(hc *upstream.Client) *ContinuityClient {
	return &ContinuityClient{http: hc}
}

// FetchContinuity reads the continuity bag of one application.  404 and an
// empty bag list are reported as NotFound.
func (c *ContinuityClient) FetchContinuity(ctx context.Context, applicationNumber string) (*family.Continuity, error) {
	app := strings.TrimSpace(applicationNumber)
	if app == "" {
		return nil, errors.InvalidParam("application number is required")
	}

	var resp continuityResponse
	_, err := c.http.DoJSON(ctx, upstream.Request{
		Path:     fmt.Sprintf(continuityPath, url.PathEscape(app)),
		Endpoint: "continuity",
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Bag == nil || len(*resp.Bag) == 0 {
		return nil, errors.New(errors.ErrCodePatentNotFound, "no continuity data for "+app)
	}

	raw := (*resp.Bag)[0]
	var bag continuityBag
	if err := json.Unmarshal(raw, &bag); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDataSourceParseError, "continuity bag is not an object")
	}
	return &family.Continuity{
		Parents:  ParentRelations(bag.ParentContinuityBag),
		Children: ChildRelations(bag.ChildContinuityBag),
		Raw:      raw,
	}, nil
}

//Personal.AI order the ending
