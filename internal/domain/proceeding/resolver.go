package proceeding

import (
	"context"
	"strings"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
)

// FieldFailure records one field whose registry query failed.
type FieldFailure struct {
	Field Field
	Err   error
}

// Resolution is the outcome of ResolveByIdentifier.
type Resolution struct {
	Proceedings []Proceeding
	// Queried lists the fields actually sent to the registry, in order.
	Queried  []Field
	Failures []FieldFailure
}

// AllFailed reports whether every queried field failed.
func (r Resolution) AllFailed() bool {
	return len(r.Queried) > 0 && len(r.Failures) == len(r.Queried)
}

// Resolver maps an identifier of unknown kind to proceedings by trying each
// registry field in LookupOrder.
type Resolver struct {
	finder Finder
	fields []Field
	logger logging.Logger
}

// NewResolver creates a Resolver over finder.
func NewResolver(finder Finder, logger logging.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Resolver{finder: finder, fields: LookupOrder, logger: logger}
}

// ResolveByIdentifier queries the registry field by field.  Without
// exhaustive it stops at the first field that yields a proceeding.  A field
// that fails is logged and recorded; the remaining fields are still tried.
// Duplicates across fields are dropped, keeping first-seen order.
func (r *Resolver) ResolveByIdentifier(ctx context.Context, id string, exhaustive bool) Resolution {
	var res Resolution
	id = strings.TrimSpace(id)
	if id == "" {
		return res
	}
	log := r.logger.WithContext(ctx)

	for _, field := range r.fields {
		if ctx.Err() != nil {
			res.Failures = append(res.Failures, FieldFailure{Field: field, Err: ctx.Err()})
			res.Queried = append(res.Queried, field)
			break
		}
		res.Queried = append(res.Queried, field)

		hits, err := r.finder.FindProceedings(ctx, field, id)
		if err != nil {
			log.WithError(err).Warn("proceedings lookup failed",
				logging.String("field", string(field)),
				logging.String("identifier", id))
			res.Failures = append(res.Failures, FieldFailure{Field: field, Err: err})
			continue
		}
		res.Proceedings = Merge(res.Proceedings, hits)

		if len(res.Proceedings) > 0 && !exhaustive {
			break
		}
	}

	log.Debug("proceedings resolved",
		logging.String("identifier", id),
		logging.Bool("exhaustive", exhaustive),
		logging.Int("count", len(res.Proceedings)),
		logging.Int("failed_fields", len(res.Failures)))
	return res
}

//Personal.AI order the ending
