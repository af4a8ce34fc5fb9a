package stream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/mickamy/go-bolt/bolt/stream"
	"github.com/mickamy/go-bolt/packstream"
)

type fakeFetcher struct {
	batches    [][]stream.Record
	terminal   stream.Metadata
	pullCalls  int
	discardAt  int // batch index at which Discard was invoked, -1 if never
	failOnPull int // 1-based batch index to fail on, 0 means never
}

func newFakeFetcher(batches [][]stream.Record, terminal stream.Metadata) *fakeFetcher {
	return &fakeFetcher{batches: batches, terminal: terminal, discardAt: -1}
}

func (f *fakeFetcher) Pull(_ context.Context, _ int64, _ int64) ([]stream.Record, bool, stream.Metadata, error) {
	f.pullCalls++
	if f.failOnPull != 0 && f.pullCalls == f.failOnPull {
		return nil, false, nil, errors.New("server failure")
	}
	if f.pullCalls > len(f.batches) {
		return nil, false, f.terminal, nil
	}
	batch := f.batches[f.pullCalls-1]
	hasMore := f.pullCalls < len(f.batches)
	var meta stream.Metadata
	if !hasMore {
		meta = f.terminal
	}
	return batch, hasMore, meta, nil
}

func (f *fakeFetcher) Discard(_ context.Context, _ int64) (stream.Metadata, error) {
	f.discardAt = f.pullCalls
	return f.terminal, nil
}

func TestResultIteratesAcrossMultiplePulls(t *testing.T) {
	batches := [][]stream.Record{
		{{packstream.Int(1)}, {packstream.Int(2)}},
		{{packstream.Int(3)}},
	}
	f := newFakeFetcher(batches, stream.Metadata{"type": packstream.String("r")})
	r := stream.New(f, 0, []string{"n"}, 2)

	ctx := context.Background()
	var got []int64
	for {
		rec, ok, err := r.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, int64(rec[0].(packstream.Int)))
	}
	if len(got) != 3 || got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Fatalf("got %v, want [1 2 3]", got)
	}
	if f.pullCalls != 2 {
		t.Fatalf("pullCalls = %d, want 2", f.pullCalls)
	}
	if r.Terminal()["type"] != packstream.String("r") {
		t.Fatalf("terminal metadata missing after exhaustion: %+v", r.Terminal())
	}
}

func TestResultCloseIssuesDiscardBeforeExhaustion(t *testing.T) {
	batches := [][]stream.Record{
		{{packstream.Int(1)}, {packstream.Int(2)}, {packstream.Int(3)}},
		{{packstream.Int(4)}},
	}
	f := newFakeFetcher(batches, stream.Metadata{})
	r := stream.New(f, 7, nil, 3)

	ctx := context.Background()
	rec, ok, err := r.Next(ctx)
	if err != nil || !ok {
		t.Fatalf("Next: rec=%v ok=%v err=%v", rec, ok, err)
	}

	if err := r.Close(ctx); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if f.discardAt != 1 {
		t.Fatalf("discard issued after %d pulls, want 1", f.discardAt)
	}

	if _, ok, _ := r.Next(ctx); ok {
		t.Fatal("Next should report exhaustion after Close")
	}

	// Closing twice is a no-op, not a second DISCARD.
	if err := r.Close(ctx); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestResultSurfacesFetchFailure(t *testing.T) {
	f := newFakeFetcher([][]stream.Record{{{packstream.Int(1)}}}, stream.Metadata{})
	f.failOnPull = 1
	r := stream.New(f, 0, nil, 10)

	_, ok, err := r.Next(context.Background())
	if ok || err == nil {
		t.Fatalf("Next: ok=%v err=%v, want failure", ok, err)
	}
	if r.Err() == nil {
		t.Fatal("Err() should be set after a failed pull")
	}

	// A Result in the error state stays ended rather than retrying.
	if _, ok, err := r.Next(context.Background()); ok || err != nil {
		t.Fatalf("Next after error: ok=%v err=%v, want ok=false err=nil", ok, err)
	}
}

func TestMaterializedResultPerformsNoIO(t *testing.T) {
	records := []stream.Record{{packstream.Int(1)}, {packstream.Int(2)}}
	r := stream.NewMaterialized(records, []string{"n"}, stream.Metadata{"type": packstream.String("r")})

	ctx := context.Background()
	var got int
	for {
		_, ok, err := r.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got++
	}
	if got != 2 {
		t.Fatalf("got %d records, want 2", got)
	}
	if err := r.Close(ctx); err != nil {
		t.Fatalf("Close on materialized Result should be a no-op: %v", err)
	}
}
