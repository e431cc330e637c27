// Package lookup orchestrates the registries into one answer per query: a
// structured lookup by number, a free-text search, or a trial docket view.
package lookup

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/family"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
	"github.com/turtacn/KeyIP-Continuity/internal/domain/proceeding"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

const (
	// DefaultSearchCap bounds free-text searches that were not confirmed.
	DefaultSearchCap = 1000
	// DefaultPreviewSize is the number of rows shown before confirmation.
	DefaultPreviewSize = 100
	// rowProceedingsThreshold is the result count below which every summary
	// row is looked up in the proceedings registry.
	rowProceedingsThreshold = 20

	// EventTypeCompleted is published after every query.
	EventTypeCompleted = "lookup.completed"
	// DefaultEventTimeout bounds one completion event publish.
	DefaultEventTimeout = 5 * time.Second
	// DefaultMaxPendingEvents bounds the publishes in flight at once.
	DefaultMaxPendingEvents = 64
)

// ─────────────────────────────────────────────────────────────────────────────
// Ports
// ─────────────────────────────────────────────────────────────────────────────

// FamilyBuilder walks the continuity graph from one application.
type FamilyBuilder interface {
	Build(ctx context.Context, root string) (*family.Tree, error)
}

// ProceedingResolver maps an identifier to trial proceedings.
type ProceedingResolver interface {
	ResolveByIdentifier(ctx context.Context, id string, exhaustive bool) proceeding.Resolution
}

// EventPublisher announces completed queries.  The service calls it off the
// request path.
type EventPublisher interface {
	PublishEvent(ctx context.Context, eventType, key string, payload interface{}) error
}

// Flusher is implemented by services that publish events in the background.
// Flush blocks until every publish already started has returned.
type Flusher interface {
	Flush()
}

// Service answers user queries.
type Service interface {
	Lookup(ctx context.Context, id Identifier) (*Result, error)
	Search(ctx context.Context, term string, confirmLarge bool) (*Result, error)
	Proceeding(ctx context.Context, number string) (*Result, error)
	Family(ctx context.Context, applicationNumber string) (*Result, error)
	Resolve(ctx context.Context, req Request) (*Result, error)
}

// Dependencies are the collaborators of the service.  Events and Metrics are
// optional.
type Dependencies struct {
	Searcher    patent.Searcher
	Family      FamilyBuilder
	Proceedings ProceedingResolver
	Documents   proceeding.DocumentLister
	Events      EventPublisher
	Metrics     *prometheus.AppMetrics
	Logger      logging.Logger
}

// Options tune the service.  Zero values select the defaults.
type Options struct {
	SearchCap   int
	PreviewSize int
	Concurrency int
	// EventTimeout bounds each completion event publish.  It is detached
	// from the request context.
	EventTimeout time.Duration
	// MaxPendingEvents bounds the publishes in flight; further events are
	// dropped until one finishes.
	MaxPendingEvents int
}

type serviceImpl struct {
	searcher    patent.Searcher
	family      FamilyBuilder
	proceedings ProceedingResolver
	documents   proceeding.DocumentLister
	events      EventPublisher
	metrics     *prometheus.AppMetrics
	logger      logging.Logger
	opts        Options

	pending sync.WaitGroup
	slots   chan struct{}
}

// NewService validates deps and creates a Service.
func NewService(deps Dependencies, opts Options) (Service, error) {
	switch {
	case deps.Searcher == nil:
		return nil, errors.InvalidParam("lookup: searcher is required")
	case deps.Family == nil:
		return nil, errors.InvalidParam("lookup: family builder is required")
	case deps.Proceedings == nil:
		return nil, errors.InvalidParam("lookup: proceedings resolver is required")
	case deps.Documents == nil:
		return nil, errors.InvalidParam("lookup: document lister is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNopLogger()
	}
	if opts.SearchCap <= 0 {
		opts.SearchCap = DefaultSearchCap
	}
	if opts.PreviewSize <= 0 {
		opts.PreviewSize = DefaultPreviewSize
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	if opts.EventTimeout <= 0 {
		opts.EventTimeout = DefaultEventTimeout
	}
	if opts.MaxPendingEvents <= 0 {
		opts.MaxPendingEvents = DefaultMaxPendingEvents
	}
	return &serviceImpl{
		searcher:    deps.Searcher,
		family:      deps.Family,
		proceedings: deps.Proceedings,
		documents:   deps.Documents,
		events:      deps.Events,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
		opts:        opts,
		slots:       make(chan struct{}, opts.MaxPendingEvents),
	}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Entry points
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) Resolve(ctx context.Context, req Request) (*Result, error) {
	switch {
	case strings.TrimSpace(req.Proceeding) != "":
		return s.Proceeding(ctx, req.Proceeding)
	case strings.TrimSpace(req.Term) != "":
		return s.Search(ctx, req.Term, req.ConfirmLarge)
	}
	id, err := req.Identifier()
	if err != nil {
		return nil, err
	}
	return s.Lookup(ctx, id)
}

// Lookup fetches the first record matching id, its family and its
// proceedings.  When the search registry has nothing the proceedings
// registry is asked instead and its first hit seeds the record.
func (s *serviceImpl) Lookup(ctx context.Context, id Identifier) (*Result, error) {
	q, err := id.Query()
	if err != nil {
		return nil, err
	}
	start := time.Now()
	log := s.logger.WithContext(ctx).With(logging.String("query", q))
	res := &Result{Kind: ResultLookup, Query: q}

	page, primaryErr := s.searcher.SearchRecords(ctx, q, patent.SearchOptions{Limit: 1})
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if primaryErr != nil {
		log.WithError(primaryErr).Warn("primary lookup failed, trying proceedings")
	}

	var procs []proceeding.Proceeding
	if primaryErr == nil && len(page.Hits) > 0 {
		hit := page.Hits[0]
		rec := hit.Record
		res.Patent = &rec
		res.Events = hit.Events
		res.Total = page.Total
		procs = s.resolve(ctx, patent.Or(rec.PatentNumber, rec.ApplicationNumber), false)
		if err := s.attachFamily(ctx, res, rec.ApplicationNumber); err != nil {
			return nil, err
		}
	} else {
		procs = s.resolve(ctx, id.fallbackID(), false)
	}
	res.Proceedings = procs
	backFill(res, procs)

	if res.Patent == nil && len(res.Proceedings) == 0 {
		res.Error = advisory(primaryErr, q)
	}
	return s.finish(ctx, res, start), nil
}

// Search runs a free-text query.  Large result sets need confirmation and
// yield a preview; a single hit is expanded like a structured lookup; other
// counts yield summary rows.  Proceedings matching the raw term are always
// merged in.
func (s *serviceImpl) Search(ctx context.Context, term string, confirmLarge bool) (*Result, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, errors.InvalidParam("search term is required")
	}
	if IsDocketNumber(term) {
		return s.Proceeding(ctx, term)
	}
	start := time.Now()
	log := s.logger.WithContext(ctx).With(logging.String("term", term))
	res := &Result{Kind: ResultSearch, Query: term}

	limit := s.opts.SearchCap
	if confirmLarge {
		limit = patent.Unlimited
	}
	page, primaryErr := s.searcher.SearchRecords(ctx, term, patent.SearchOptions{Limit: limit, Summary: true})
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if primaryErr != nil {
		log.WithError(primaryErr).Warn("free-text search failed, trying proceedings")
	} else {
		res.Total = page.Total
		switch {
		case page.Total > s.opts.SearchCap && !confirmLarge:
			res.NeedsConfirmation = true
			res.Preview = summaries(page.Hits, s.opts.PreviewSize)
			log.Info("search needs confirmation", logging.Int("total", page.Total))
			return s.finish(ctx, res, start), nil

		case page.Total < 2:
			if bareNumberPattern.MatchString(term) {
				res.Proceedings = s.resolve(ctx, term, false)
			}
			if page.Total == 1 && len(page.Hits) > 0 {
				hit := page.Hits[0]
				rec := hit.Record
				res.Patent = &rec
				res.Events = hit.Events
				if err := s.attachFamily(ctx, res, rec.ApplicationNumber); err != nil {
					return nil, err
				}
			}
			backFill(res, res.Proceedings)

		default:
			res.Summaries = summaries(page.Hits, len(page.Hits))
			if page.Total < rowProceedingsThreshold {
				res.Proceedings = s.rowProceedings(ctx, page.Hits)
			}
		}
	}

	extra := s.resolve(ctx, term, true)
	res.Proceedings = proceeding.Merge(res.Proceedings, extra)

	if res.empty() {
		res.Error = advisory(primaryErr, term)
	}
	return s.finish(ctx, res, start), nil
}

// Proceeding returns the docket of one trial proceeding, newest filing
// first, together with the proceeding itself.
func (s *serviceImpl) Proceeding(ctx context.Context, number string) (*Result, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return nil, errors.InvalidParam("proceeding number is required")
	}
	start := time.Now()
	res := &Result{Kind: ResultProceeding, Query: number}

	docs, docsErr := s.documents.ListDocuments(ctx, number)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if docsErr != nil {
		if errors.IsNotFound(docsErr) {
			docsErr = nil
		} else {
			s.logger.WithContext(ctx).WithError(docsErr).Warn("document listing failed",
				logging.String("proceeding", number))
		}
	}
	proceeding.SortDocuments(docs)
	res.Documents = docs
	res.Proceedings = s.resolve(ctx, number, false)

	if docsErr != nil && res.empty() {
		res.Error = fmt.Sprintf(msgDocketFail, number, docsErr)
	}
	return s.finish(ctx, res, start), nil
}

// Family returns the sorted family of one application.
func (s *serviceImpl) Family(ctx context.Context, applicationNumber string) (*Result, error) {
	app := strings.TrimSpace(applicationNumber)
	if app == "" {
		return nil, errors.InvalidParam("application number is required")
	}
	start := time.Now()
	res := &Result{Kind: ResultFamily, Query: app}
	if err := s.attachFamily(ctx, res, app); err != nil {
		return nil, err
	}
	if root, ok := res.FamilyTree.Get(app); !ok || root.Outcome != family.OutcomeResolved {
		if len(res.Family) == 0 {
			res.Error = fmt.Sprintf(msgNoFamily, app)
		}
	}
	return s.finish(ctx, res, start), nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Helpers
// ─────────────────────────────────────────────────────────────────────────────

func (s *serviceImpl) resolve(ctx context.Context, id string, exhaustive bool) []proceeding.Proceeding {
	if strings.TrimSpace(id) == "" {
		return nil
	}
	r := s.proceedings.ResolveByIdentifier(ctx, id, exhaustive)
	if r.AllFailed() {
		s.logger.WithContext(ctx).Warn("proceedings registry failed for every field",
			logging.String("identifier", id),
			logging.Int("fields", len(r.Queried)))
	}
	prometheus.RecordProceedings(s.metrics, exhaustive, len(r.Proceedings))
	return r.Proceedings
}

// rowProceedings looks every summary row up by patent number, falling back
// to the application number, and merges the hits in row order.
func (s *serviceImpl) rowProceedings(ctx context.Context, hits []patent.Hit) []proceeding.Proceeding {
	perRow := make([][]proceeding.Proceeding, len(hits))
	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, h := range hits {
		i, rec := i, h.Record
		g.Go(func() error {
			var found []proceeding.Proceeding
			if rec.PatentNumber != "" {
				found = s.resolve(ctx, rec.PatentNumber, false)
			}
			if len(found) == 0 && rec.ApplicationNumber != "" {
				found = s.resolve(ctx, rec.ApplicationNumber, false)
			}
			perRow[i] = found
			return nil
		})
	}
	_ = g.Wait()
	return proceeding.Merge(nil, perRow...)
}

// attachFamily builds the continuity tree of root and fetches a summary of
// every member except root.  Only cancellation is returned as an error; a
// truncated tree is kept and flagged.
func (s *serviceImpl) attachFamily(ctx context.Context, res *Result, root string) error {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil
	}
	log := s.logger.WithContext(ctx).With(logging.String("root", root))

	start := time.Now()
	tree, err := s.family.Build(ctx, root)
	prometheus.RecordTraversal(s.metrics, tree.Len(), tree.Outcomes(), time.Since(start), err)
	if cerr := ctx.Err(); cerr != nil {
		return cerr
	}
	switch {
	case err == nil:
	case errors.IsTraversalDepthExceeded(err):
		log.WithError(err).Warn("family tree truncated")
		res.FamilyTruncated = true
	default:
		log.WithError(err).Warn("family tree unavailable")
	}
	if tree == nil {
		return nil
	}
	res.FamilyTree = tree

	members, err := s.fetchMembers(ctx, tree.Members())
	if err != nil {
		return err
	}
	res.Family = family.SortMembers(members)
	return nil
}

// fetchMembers summarizes each application.  Lookups that fail or find
// nothing are logged and skipped.
func (s *serviceImpl) fetchMembers(ctx context.Context, apps []string) ([]family.FamilyMember, error) {
	log := s.logger.WithContext(ctx)
	found := make([]*family.FamilyMember, len(apps))

	var g errgroup.Group
	g.SetLimit(s.opts.Concurrency)
	for i, app := range apps {
		i, app := i, app
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			page, err := s.searcher.SearchRecords(ctx, memberQuery(app), patent.SearchOptions{Limit: 1})
			if err != nil {
				log.WithError(err).Warn("family member lookup failed", logging.String("application", app))
				return nil
			}
			if len(page.Hits) == 0 {
				log.Warn("family member has no record", logging.String("application", app))
				return nil
			}
			m := family.MemberOf(app, page.Hits[0].Record)
			found[i] = &m
			return nil
		})
	}
	_ = g.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]family.FamilyMember, 0, len(apps))
	for _, m := range found {
		if m != nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

// finish records metrics and publishes the completion event.  A publish
// failure is logged by the publisher and never affects the result.
func (s *serviceImpl) finish(ctx context.Context, res *Result, start time.Time) *Result {
	elapsed := time.Since(start)
	outcome := "hit"
	switch {
	case res.Error != "":
		outcome = "miss"
	case res.NeedsConfirmation:
		outcome = "confirm"
	}
	prometheus.RecordLookup(s.metrics, res.Kind, outcome, elapsed)

	s.logger.WithContext(ctx).Info("query completed",
		logging.String("kind", res.Kind),
		logging.String("query", res.Query),
		logging.String("outcome", outcome),
		logging.Int("total", res.Total),
		logging.Int("family", len(res.Family)),
		logging.Int("proceedings", len(res.Proceedings)),
		logging.Duration("elapsed", elapsed))

	if s.events != nil {
		s.publish(ctx, res.Query, Completed{
			Kind:            res.Kind,
			Query:           res.Query,
			Total:           res.Total,
			FamilySize:      len(res.Family),
			ProceedingCount: len(res.Proceedings),
			DocumentCount:   len(res.Documents),
			Advisory:        res.Error,
			DurationMS:      elapsed.Milliseconds(),
		})
	}
	return res
}

// publish hands ev to the publisher on its own goroutine.  The publish
// context keeps the request's values but not its cancellation, and is
// bounded by EventTimeout.  With MaxPendingEvents already in flight the
// event is dropped.
func (s *serviceImpl) publish(ctx context.Context, key string, ev Completed) {
	select {
	case s.slots <- struct{}{}:
	default:
		s.logger.WithContext(ctx).Warn("completion event dropped",
			logging.String("query", key),
			logging.Int("pending", cap(s.slots)))
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.EventTimeout)
	s.pending.Add(1)
	go func() {
		defer func() {
			cancel()
			<-s.slots
			s.pending.Done()
		}()
		if err := s.events.PublishEvent(pctx, EventTypeCompleted, key, ev); err != nil {
			s.logger.WithContext(pctx).WithError(err).Debug("completion event not published",
				logging.String("query", key))
		}
	}()
}

// Flush waits for in-flight completion events.
func (s *serviceImpl) Flush() {
	s.pending.Wait()
}

// backFill seeds or completes res.Patent from the first proceeding.
func backFill(res *Result, procs []proceeding.Proceeding) {
	if len(procs) == 0 {
		return
	}
	first := procs[0]
	if res.Patent == nil {
		if first.PatentNumber == "" && first.ApplicationNumber == "" && first.PatentOwner == "" {
			return
		}
		res.Patent = &patent.PatentRecord{}
	}
	res.Patent.BackFill(first.PatentNumber, first.ApplicationNumber, first.PatentOwner)
}

func summaries(hits []patent.Hit, n int) []patent.Summary {
	if n > len(hits) {
		n = len(hits)
	}
	out := make([]patent.Summary, 0, n)
	for _, h := range hits[:n] {
		out = append(out, patent.SummaryOf(h.Record))
	}
	return out
}

func advisory(primaryErr error, query string) string {
	switch {
	case primaryErr == nil:
		return fmt.Sprintf(msgNoData, query)
	case errors.IsUpstreamUnavailable(primaryErr), errors.IsThrottled(primaryErr):
		return msgRateLimited
	default:
		return fmt.Sprintf(msgLookupFail, primaryErr)
	}
}

//Personal.AI order the ending
