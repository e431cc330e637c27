package patent

import "context"

// Unlimited disables the result cap in SearchOptions.Limit.
const Unlimited = -1

// SearchOptions narrows a registry search.  Limit 0 selects the registry
// default cap.  Summary requests the reduced field set used for result
// tables.
type SearchOptions struct {
	Limit   int
	Summary bool
}

// Hit is one normalized search result with its prosecution history.
type Hit struct {
	Record PatentRecord
	Events []Event
}

// SearchPage is the outcome of a search.  Total is the count the registry
// reported, which may exceed len(Hits) when capped.
type SearchPage struct {
	Total int
	Hits  []Hit
}

// Searcher queries the prosecution registry.  A query with no matches
// returns an empty page and no error.
type Searcher interface {
	SearchRecords(ctx context.Context, query string, opts SearchOptions) (*SearchPage, error)
}

//Personal.AI order the ending
