package family

import (
	"context"
	"encoding/json"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// Defaults for Options fields left at zero.
const (
	DefaultMaxDepth    = 40
	DefaultConcurrency = 1
)

// Continuity is the continuity data reported for one application.
type Continuity struct {
	Parents  []patent.ContinuityRelation
	Children []patent.ContinuityRelation
	Raw      json.RawMessage
}

// ContinuityFetcher retrieves the continuity of one application.  A missing
// application is reported with an error for which errors.IsNotFound is true.
type ContinuityFetcher interface {
	FetchContinuity(ctx context.Context, applicationNumber string) (*Continuity, error)
}

// Options tunes a Builder.
type Options struct {
	// MaxDepth is the number of hops from the root at which discovering a new
	// application fails the traversal.
	MaxDepth int
	// Concurrency bounds the continuity fetches in flight per level.
	Concurrency int
}

// Builder walks continuity links breadth-first from a root application.
type Builder struct {
	fetcher     ContinuityFetcher
	maxDepth    int
	concurrency int
	logger      logging.Logger
}

// NewBuilder creates a Builder.
func NewBuilder(fetcher ContinuityFetcher, opts Options, logger logging.Logger) *Builder {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return &Builder{
		fetcher:     fetcher,
		maxDepth:    opts.MaxDepth,
		concurrency: opts.Concurrency,
		logger:      logger,
	}
}

type fetchResult struct {
	continuity *Continuity
	err        error
}

// Build visits every application reachable from root through parent or child
// links.  Each application is fetched at most once.  A node whose fetch fails
// is kept with empty relations and its outcome; the walk continues.
//
// Only the calling goroutine touches the tree.  Fetches within one level run
// on up to Options.Concurrency goroutines and report back by index.
//
// When the depth ceiling is hit or ctx is done, the partial tree is returned
// together with the error.
func (b *Builder) Build(ctx context.Context, root string) (*Tree, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.InvalidParam("application number is required")
	}
	log := b.logger.WithContext(ctx).With(logging.String("root", root))

	tree := newTree(root)
	queued := map[string]struct{}{root: {}}
	level := []string{root}

	for depth := 0; len(level) > 0; depth++ {
		results := b.fetchLevel(ctx, level)
		if err := ctx.Err(); err != nil {
			return tree, err
		}

		var next []string
		for i, app := range level {
			node := toNode(app, depth, results[i])
			if node.Outcome != OutcomeResolved {
				log.Warn("continuity lookup unresolved",
					logging.String("application", app),
					logging.String("outcome", string(node.Outcome)),
					logging.String("reason", node.Reason))
			}
			tree.add(node)

			for _, linked := range linkedApplications(node) {
				if _, seen := queued[linked]; seen {
					continue
				}
				if depth+1 >= b.maxDepth {
					return tree, errors.Newf(errors.ErrCodeTraversalDepthExceeded,
						"continuity chain from %s exceeds %d hops at %s", root, b.maxDepth, linked)
				}
				queued[linked] = struct{}{}
				next = append(next, linked)
			}
		}
		level = next
	}

	if asym := tree.AsymmetricEdges(); len(asym) > 0 {
		log.Debug("continuity links not mirrored", logging.Int("count", len(asym)))
	}
	log.Info("family tree built", logging.Int("nodes", tree.Len()))
	return tree, nil
}

func (b *Builder) fetchLevel(ctx context.Context, level []string) []fetchResult {
	results := make([]fetchResult, len(level))
	var g errgroup.Group
	g.SetLimit(b.concurrency)
	for i, app := range level {
		i, app := i, app
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = fetchResult{err: err}
				return nil
			}
			c, err := b.fetcher.FetchContinuity(ctx, app)
			results[i] = fetchResult{continuity: c, err: err}
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func toNode(app string, depth int, r fetchResult) *Node {
	node := &Node{ApplicationNumber: app, Depth: depth}
	switch {
	case r.err != nil && errors.IsNotFound(r.err):
		node.Outcome = OutcomeNotFound
		node.Reason = r.err.Error()
	case r.err != nil:
		node.Outcome = OutcomeFailed
		node.Reason = r.err.Error()
	case r.continuity == nil:
		node.Outcome = OutcomeNotFound
		node.Reason = "no continuity data"
	default:
		node.Outcome = OutcomeResolved
		node.Parents = r.continuity.Parents
		node.Children = r.continuity.Children
		node.Raw = r.continuity.Raw
	}
	return node
}

// linkedApplications lists parent numbers then child numbers, skipping blanks
// and self references.
func linkedApplications(n *Node) []string {
	out := make([]string, 0, len(n.Parents)+len(n.Children))
	for _, rel := range n.Parents {
		if app := strings.TrimSpace(rel.ParentApplicationNumber); app != "" && app != n.ApplicationNumber {
			out = append(out, app)
		}
	}
	for _, rel := range n.Children {
		if app := strings.TrimSpace(rel.ChildApplicationNumber); app != "" && app != n.ApplicationNumber {
			out = append(out, app)
		}
	}
	return out
}

//Personal.AI order the ending
