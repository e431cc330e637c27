package uspto

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/upstream"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

const (
	searchPath = "/api/v1/patent/applications/search"

	// MaxPageSize is the largest page the registry serves.
	MaxPageSize = 100
	// Unlimited disables the result cap in FetchOptions.Limit.
	Unlimited = patent.Unlimited
)

// FetchOptions narrows a search.  Limit 0 selects the client default cap;
// Unlimited fetches every hit.
type FetchOptions struct {
	Fields []string
	Limit  int
}

// Page is the accumulated result of a paginated search.  Total is the count
// the registry reported, which may exceed len(Wrappers) when capped.
type Page struct {
	Total    int
	Wrappers []FileWrapper
}

// SearchClient runs paginated application searches.
type SearchClient struct {
	http         *upstream.Client
	pageSize     int
	defaultLimit int
	logger       logging.Logger
}

// SearchConfig holds the paging parameters.
type SearchConfig struct {
	PageSize     int
	DefaultLimit int
}

// NewSearchClient wraps an upstream client configured for the search
// registry.
func NewSearchClient(hc *upstream.Client, cfg SearchConfig, logger logging.Logger) *SearchClient {
	if cfg.PageSize <= 0 || cfg.PageSize > MaxPageSize {
		cfg.PageSize = MaxPageSize
	}
	if cfg.DefaultLimit == 0 {
		cfg.DefaultLimit = 1000
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &SearchClient{http: hc, pageSize: cfg.PageSize, defaultLimit: cfg.DefaultLimit, logger: logger}
}

// FetchAll runs query and accumulates pages until the reported total or the
// cap is reached.  A 404 yields an empty page with zero total.  Throttling
// and transient failures are retried per page by the upstream client; a body
// without patentFileWrapperDataBag fails as Malformed.
func (c *SearchClient) FetchAll(ctx context.Context, query string, opts FetchOptions) (*Page, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, errors.InvalidParam("search query is required")
	}
	limit := opts.Limit
	if limit == 0 {
		limit = c.defaultLimit
	}
	log := c.logger.WithContext(ctx).With(logging.String("query", query))

	page := &Page{}
	offset := 0
	for {
		size := c.pageSize
		if limit > 0 && limit-len(page.Wrappers) < size {
			size = limit - len(page.Wrappers)
		}

		var resp searchResponse
		_, err := c.http.DoJSON(ctx, upstream.Request{
			Method:   http.MethodPost,
			Path:     searchPath,
			Endpoint: "search",
			Body: searchRequest{
				Q:          query,
				Pagination: pagination{Offset: offset, Limit: size},
				Fields:     opts.Fields,
			},
		}, &resp)
		if err != nil {
			if errors.IsNotFound(err) {
				log.Info("search returned no results")
				return &Page{}, nil
			}
			return nil, err
		}
		if resp.Bag == nil {
			return nil, errors.Malformed("search response is missing patentFileWrapperDataBag").
				WithDetail(fmt.Sprintf("offset=%d", offset))
		}

		page.Total = resp.Count
		page.Wrappers = append(page.Wrappers, *resp.Bag...)
		offset += size

		if len(page.Wrappers) >= page.Total {
			break
		}
		if limit > 0 && len(page.Wrappers) >= limit {
			log.Debug("search capped", logging.Int("limit", limit), logging.Int("total", page.Total))
			break
		}
		if len(*resp.Bag) == 0 {
			log.Warn("search page empty before reported total",
				logging.Int("collected", len(page.Wrappers)),
				logging.Int("total", page.Total))
			break
		}
	}

	log.Debug("search completed",
		logging.Int("collected", len(page.Wrappers)),
		logging.Int("total", page.Total))
	return page, nil
}

// SearchRecords runs query and normalizes every hit.  It satisfies
// patent.Searcher.
func (c *SearchClient) SearchRecords(ctx context.Context, query string, opts patent.SearchOptions) (*patent.SearchPage, error) {
	fetch := FetchOptions{Limit: opts.Limit}
	if opts.Summary {
		fetch.Fields = SummaryFields
	}
	page, err := c.FetchAll(ctx, query, fetch)
	if err != nil {
		return nil, err
	}
	out := &patent.SearchPage{Total: page.Total, Hits: make([]patent.Hit, 0, len(page.Wrappers))}
	for _, fw := range page.Wrappers {
		out.Hits = append(out.Hits, patent.Hit{Record: Normalize(fw), Events: NormalizeEvents(fw)})
	}
	return out, nil
}

//Personal.AI order the ending
