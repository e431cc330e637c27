package proceeding

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turtacn/KeyIP-Continuity/internal/testutil"
)

type fakeFinder struct {
	mu      sync.Mutex
	results map[Field][]Proceeding
	errs    map[Field]error
	calls   []Field
}

func (f *fakeFinder) FindProceedings(_ context.Context, field Field, _ string) ([]Proceeding, error) {
	f.mu.Lock()
	f.calls = append(f.calls, field)
	f.mu.Unlock()
	if err := f.errs[field]; err != nil {
		return nil, err
	}
	return f.results[field], nil
}

func numbers(ps []Proceeding) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.Number)
	}
	return out
}

func TestResolve_StopsAtFirstHit(t *testing.T) {
	f := &fakeFinder{results: map[Field][]Proceeding{
		FieldApplicationNumber: {{Number: "IPR2020-00001"}},
		FieldProceedingNumber:  {{Number: "IPR2020-00002"}},
	}}
	res := NewResolver(f, testutil.NewMockLogger()).ResolveByIdentifier(context.Background(), "16123456", false)

	assert.Equal(t, []string{"IPR2020-00001"}, numbers(res.Proceedings))
	assert.Equal(t, []Field{FieldPatentNumber, FieldApplicationNumber}, f.calls)
	assert.Equal(t, f.calls, res.Queried)
	assert.Empty(t, res.Failures)
}

func TestResolve_ExhaustiveDedupsAcrossFields(t *testing.T) {
	f := &fakeFinder{results: map[Field][]Proceeding{
		FieldPatentNumber:    {{Number: "IPR2020-00001", Status: "first"}, {Number: "IPR2021-00009"}},
		FieldPatentOwnerName: {{Number: "IPR2020-00001", Status: "second"}, {Number: "PGR2022-00003"}},
		FieldPartyName:       {{Number: "PGR2022-00003"}, {Number: ""}},
	}}
	res := NewResolver(f, nil).ResolveByIdentifier(context.Background(), "Acme", true)

	assert.Equal(t, []string{"IPR2020-00001", "IPR2021-00009", "PGR2022-00003"}, numbers(res.Proceedings))
	assert.Equal(t, "first", res.Proceedings[0].Status)
	assert.Equal(t, LookupOrder, f.calls)
}

func TestResolve_FailureDoesNotAbort(t *testing.T) {
	log := testutil.NewMockLogger()
	f := &fakeFinder{
		errs:    map[Field]error{FieldPatentNumber: errors.New("timeout")},
		results: map[Field][]Proceeding{FieldApplicationNumber: {{Number: "IPR2020-00001"}}},
	}
	res := NewResolver(f, log).ResolveByIdentifier(context.Background(), "16123456", false)

	assert.Equal(t, []string{"IPR2020-00001"}, numbers(res.Proceedings))
	require.Len(t, res.Failures, 1)
	assert.Equal(t, FieldPatentNumber, res.Failures[0].Field)
	assert.False(t, res.AllFailed())
	assert.Equal(t, 1, log.CountLevel("warn"))
}

func TestResolve_AllFieldsFail(t *testing.T) {
	boom := errors.New("down")
	errs := map[Field]error{}
	for _, f := range LookupOrder {
		errs[f] = boom
	}
	res := NewResolver(&fakeFinder{errs: errs}, nil).ResolveByIdentifier(context.Background(), "x", false)

	assert.Empty(t, res.Proceedings)
	assert.Len(t, res.Failures, len(LookupOrder))
	assert.True(t, res.AllFailed())
}

func TestResolve_BlankIdentifier(t *testing.T) {
	f := &fakeFinder{}
	res := NewResolver(f, nil).ResolveByIdentifier(context.Background(), "   ", true)
	assert.Empty(t, res.Queried)
	assert.Empty(t, f.calls)
}

func TestResolve_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	f := &fakeFinder{}
	res := NewResolver(f, nil).ResolveByIdentifier(ctx, "16123456", true)

	assert.Empty(t, f.calls)
	require.Len(t, res.Failures, 1)
	assert.ErrorIs(t, res.Failures[0].Err, context.Canceled)
}

func TestMerge(t *testing.T) {
	got := Merge(
		[]Proceeding{{Number: "A"}, {Number: "B"}},
		[]Proceeding{{Number: "B"}, {Number: "C"}},
		[]Proceeding{{Number: "A"}, {Number: ""}, {Number: "D"}},
	)
	assert.Equal(t, []string{"A", "B", "C", "D"}, numbers(got))
}

func TestSortDocuments(t *testing.T) {
	docs := []Document{
		{FilingDate: "2021-01-05", Number: "12"},
		{FilingDate: "2021-03-01", Number: "30"},
		{FilingDate: "2021-03-01", Number: "4"},
		{FilingDate: "03-01-2021", Number: "2"},
		{FilingDate: "—", Number: "99"},
		{FilingDate: "2021-01-05", Number: "n/a"},
	}
	SortDocuments(docs)

	got := make([]string, 0, len(docs))
	for _, d := range docs {
		got = append(got, d.Number)
	}
	assert.Equal(t, []string{"99", "2", "4", "30", "n/a", "12"}, got)
}

//Personal.AI order the ending
