package family

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Continuity/internal/domain/patent"
	"github.com/turtacn/KeyIP-Continuity/internal/testutil"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// ─────────────────────────────────────────────────────────────────────────────
// fake fetcher
// ─────────────────────────────────────────────────────────────────────────────

type graphFetcher struct {
	mu       sync.Mutex
	graph    map[string]*Continuity
	errs     map[string]error
	calls    map[string]int
	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newGraphFetcher() *graphFetcher {
	return &graphFetcher{
		graph: make(map[string]*Continuity),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *graphFetcher) link(parent, child string) {
	f.node(parent).Children = append(f.node(parent).Children,
		patent.ContinuityRelation{ParentApplicationNumber: parent, ChildApplicationNumber: child})
	f.node(child).Parents = append(f.node(child).Parents,
		patent.ContinuityRelation{ParentApplicationNumber: parent, ChildApplicationNumber: child})
}

func (f *graphFetcher) node(app string) *Continuity {
	c, ok := f.graph[app]
	if !ok {
		c = &Continuity{}
		f.graph[app] = c
	}
	return c
}

func (f *graphFetcher) FetchContinuity(ctx context.Context, app string) (*Continuity, error) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		old := f.maxSeen.Load()
		if n <= old || f.maxSeen.CompareAndSwap(old, n) {
			break
		}
	}
	if f.delay > 0 {
		time.Sleep(f.delay)
	}

	f.mu.Lock()
	f.calls[app]++
	err := f.errs[app]
	c, ok := f.graph[app]
	f.mu.Unlock()

	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.NotFound("application " + app + " not found")
	}
	return c, nil
}

func chain(n int) (*graphFetcher, []string) {
	f := newGraphFetcher()
	apps := make([]string, n)
	for i := range apps {
		apps[i] = fmt.Sprintf("16%06d", i)
	}
	f.node(apps[0])
	for i := 1; i < n; i++ {
		f.link(apps[i-1], apps[i])
	}
	return f, apps
}

// ─────────────────────────────────────────────────────────────────────────────
// Build
// ─────────────────────────────────────────────────────────────────────────────

func TestBuild_ChainOfFortySucceeds(t *testing.T) {
	f, apps := chain(40)

	tree, err := NewBuilder(f, Options{}, testutil.NewMockLogger()).Build(context.Background(), apps[0])
	require.NoError(t, err)
	assert.Equal(t, 40, tree.Len())
	assert.Equal(t, apps, tree.Order)
	assert.Equal(t, 39, tree.Nodes[apps[39]].Depth)
	for _, app := range apps {
		assert.Equal(t, 1, f.calls[app], app)
	}
}

func TestBuild_ChainOfFortyOneExceedsDepth(t *testing.T) {
	f, apps := chain(41)

	tree, err := NewBuilder(f, Options{}, nil).Build(context.Background(), apps[0])
	require.Error(t, err)
	assert.True(t, errors.IsTraversalDepthExceeded(err))
	require.NotNil(t, tree)
	assert.Equal(t, 40, tree.Len())
	assert.Zero(t, f.calls[apps[40]])
}

func TestBuild_FromMiddleOfChainWalksBothDirections(t *testing.T) {
	f, apps := chain(7)

	tree, err := NewBuilder(f, Options{}, nil).Build(context.Background(), apps[3])
	require.NoError(t, err)
	assert.Equal(t, 7, tree.Len())
	assert.Equal(t, 3, tree.Nodes[apps[0]].Depth)
	assert.Equal(t, 3, tree.Nodes[apps[6]].Depth)
	assert.Equal(t, []string{apps[3], apps[2], apps[4]}, tree.Order[:3])
}

func TestBuild_CycleIsVisitedOnce(t *testing.T) {
	f := newGraphFetcher()
	f.link("A", "B")
	f.link("B", "C")
	f.link("C", "A")
	f.node("A").Children = append(f.node("A").Children, patent.ContinuityRelation{ChildApplicationNumber: "A"})

	tree, err := NewBuilder(f, Options{}, nil).Build(context.Background(), "A")
	require.NoError(t, err)
	assert.Equal(t, 3, tree.Len())
	for _, app := range []string{"A", "B", "C"} {
		assert.Equal(t, 1, f.calls[app], app)
	}
}

func TestBuild_PerNodeFailuresAreAbsorbed(t *testing.T) {
	f := newGraphFetcher()
	f.link("ROOT", "MISSING")
	f.link("ROOT", "BROKEN")
	f.link("ROOT", "THROTTLED")
	f.link("ROOT", "OK")
	f.link("OK", "GRANDCHILD")
	delete(f.graph, "MISSING")
	f.errs["BROKEN"] = errors.Malformed("invalid JSON")
	f.errs["THROTTLED"] = errors.UpstreamUnavailable("retries exhausted")

	log := testutil.NewMockLogger()
	tree, err := NewBuilder(f, Options{}, log).Build(context.Background(), "ROOT")
	require.NoError(t, err)

	assert.Equal(t, 6, tree.Len())
	assert.Equal(t, OutcomeNotFound, tree.Nodes["MISSING"].Outcome)
	assert.Equal(t, OutcomeFailed, tree.Nodes["BROKEN"].Outcome)
	assert.Equal(t, OutcomeFailed, tree.Nodes["THROTTLED"].Outcome)
	assert.Empty(t, tree.Nodes["BROKEN"].Parents)
	assert.NotEmpty(t, tree.Nodes["BROKEN"].Reason)
	assert.Equal(t, OutcomeResolved, tree.Nodes["GRANDCHILD"].Outcome)

	assert.Equal(t, map[string]int{"resolved": 3, "not_found": 1, "failed": 2}, tree.Outcomes())
	assert.Equal(t, 3, log.CountLevel("warn"))
}

func TestBuild_RootNotFound(t *testing.T) {
	tree, err := NewBuilder(newGraphFetcher(), Options{}, nil).Build(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Equal(t, 1, tree.Len())
	assert.Equal(t, OutcomeNotFound, tree.Nodes["NOPE"].Outcome)
	assert.Empty(t, tree.Members())
}

func TestBuild_BlankRoot(t *testing.T) {
	tree, err := NewBuilder(newGraphFetcher(), Options{}, nil).Build(context.Background(), " ")
	assert.Nil(t, tree)
	assert.True(t, errors.IsCode(err, errors.CodeInvalidParam))
}

func TestBuild_CancelledContext(t *testing.T) {
	f, apps := chain(5)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tree, err := NewBuilder(f, Options{}, nil).Build(ctx, apps[0])
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, tree.Len())
}

func TestBuild_ConcurrentLevelsMatchSequential(t *testing.T) {
	f := newGraphFetcher()
	for i := 0; i < 12; i++ {
		child := fmt.Sprintf("C%02d", i)
		f.link("ROOT", child)
		f.link(child, fmt.Sprintf("G%02d", i))
	}
	f.delay = 2 * time.Millisecond

	seq, err := NewBuilder(f, Options{Concurrency: 1}, nil).Build(context.Background(), "ROOT")
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.maxSeen.Load())

	f.maxSeen.Store(0)
	par, err := NewBuilder(f, Options{Concurrency: 4}, nil).Build(context.Background(), "ROOT")
	require.NoError(t, err)

	assert.Equal(t, seq.Order, par.Order)
	assert.LessOrEqual(t, f.maxSeen.Load(), int32(4))
	assert.Greater(t, f.maxSeen.Load(), int32(1))
}

func TestTree_AsymmetricEdges(t *testing.T) {
	f := newGraphFetcher()
	f.link("A", "B")
	// C claims A as parent; A does not list C.
	f.node("C").Parents = []patent.ContinuityRelation{{ParentApplicationNumber: "A", ChildApplicationNumber: "C"}}
	f.node("B").Children = []patent.ContinuityRelation{{ParentApplicationNumber: "B", ChildApplicationNumber: "C"}}

	tree, err := NewBuilder(f, Options{}, nil).Build(context.Background(), "A")
	require.NoError(t, err)

	assert.ElementsMatch(t, []Edge{{Parent: "B", Child: "C"}, {Parent: "A", Child: "C"}}, tree.AsymmetricEdges())
}

// ─────────────────────────────────────────────────────────────────────────────
// Properties
// ─────────────────────────────────────────────────────────────────────────────

// reachable computes the expected key set with a plain recursive walk.
func reachable(f *graphFetcher, root string) []string {
	seen := map[string]bool{}
	var walk func(string)
	walk = func(app string) {
		if seen[app] {
			return
		}
		seen[app] = true
		c, ok := f.graph[app]
		if !ok {
			return
		}
		for _, rel := range c.Parents {
			walk(rel.ParentApplicationNumber)
		}
		for _, rel := range c.Children {
			walk(rel.ChildApplicationNumber)
		}
	}
	walk(root)
	out := make([]string, 0, len(seen))
	for app := range seen {
		out = append(out, app)
	}
	sort.Strings(out)
	return out
}

func TestBuild_Properties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 50
	properties := gopter.NewProperties(parameters)

	graphOf := func(edges []int) *graphFetcher {
		f := newGraphFetcher()
		f.node("N0")
		for _, e := range edges {
			parent, child := fmt.Sprintf("N%d", e/10), fmt.Sprintf("N%d", e%10)
			if e%3 == 0 {
				// one-sided link
				f.node(parent).Children = append(f.node(parent).Children,
					patent.ContinuityRelation{ParentApplicationNumber: parent, ChildApplicationNumber: child})
				continue
			}
			f.link(parent, child)
		}
		return f
	}

	properties.Property("every reachable application is visited exactly once", prop.ForAll(
		func(edges []int) bool {
			f := graphOf(edges)
			tree, err := NewBuilder(f, Options{Concurrency: 3}, nil).Build(context.Background(), "N0")
			if err != nil {
				return false
			}
			keys := append([]string(nil), tree.Order...)
			sort.Strings(keys)
			if fmt.Sprint(keys) != fmt.Sprint(reachable(f, "N0")) {
				return false
			}
			for _, app := range tree.Order {
				if f.calls[app] != 1 {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.IntRange(0, 99)),
	))

	properties.Property("building twice yields the same tree", prop.ForAll(
		func(edges []int) bool {
			f := graphOf(edges)
			b := NewBuilder(f, Options{}, nil)
			first, err1 := b.Build(context.Background(), "N0")
			second, err2 := b.Build(context.Background(), "N0")
			return err1 == nil && err2 == nil && fmt.Sprint(first.Order) == fmt.Sprint(second.Order)
		},
		gen.SliceOf(gen.IntRange(0, 99)),
	))

	properties.TestingRun(t)
}

//Personal.AI order the ending
