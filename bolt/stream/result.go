// Package stream implements the result-streaming model: a lazy,
// server-paged sequence of records for one query id, backpressured by
// fetch_size and collapsible at any point into a DISCARD that returns the
// connection to Ready.
package stream

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mickamy/go-bolt/packstream"
)

// Record is one row of a result, in field order.
type Record []packstream.Value

// Metadata is the terminal information attached to a Result once its PULL
// returns has_more=false: run stats, bookmark, query plan/profile,
// notifications, and the run type ("r"/"w"/"rw"/"s"), carried through
// opaquely as the raw SUCCESS map.
type Metadata map[string]packstream.Value

// Fetcher drives the wire-level PULL/DISCARD exchange for one stream. The
// connection orchestrator implements it; Result calls back into it only
// when its local buffer is empty and the caller demands more, so a Result
// that's fully consumed from its initial batch never touches the network
// again.
type Fetcher interface {
	// Pull requests up to n records (n<0 requests all remaining) for qid.
	// It returns the decoded batch and, once the stream is exhausted, the
	// terminal metadata with hasMore=false.
	Pull(ctx context.Context, qid int64, n int64) (batch []Record, hasMore bool, meta Metadata, err error)
	// Discard drops all remaining records for qid server-side, returning
	// the connection to Ready. It is called once, at most, per Result.
	Discard(ctx context.Context, qid int64) (meta Metadata, err error)
}

// Result is a lazy finite sequence of records for one qid. It is not safe
// for concurrent use: the owning connection serializes all stream activity,
// matching the protocol's single-threaded-actor model.
type Result struct {
	id     uuid.UUID
	qid    int64
	fields []string

	fetcher   Fetcher
	fetchSize int64

	buffer    []Record
	pos       int
	hasMore   bool
	exhausted bool
	closed    bool

	terminal Metadata
	err      error
}

// New returns a Result that pulls records on demand through fetcher. Its
// buffer starts empty: the first call to Next issues the first PULL.
func New(fetcher Fetcher, qid int64, fields []string, fetchSize int64) *Result {
	return &Result{
		id:        uuid.New(),
		qid:       qid,
		fields:    fields,
		fetcher:   fetcher,
		fetchSize: fetchSize,
		hasMore:   true,
	}
}

// NewMaterialized returns a Result whose full record set is already known,
// yielding from the in-memory slice with the same iteration contract but
// performing no I/O and no DISCARD on Close.
func NewMaterialized(records []Record, fields []string, terminal Metadata) *Result {
	return &Result{
		id:        uuid.New(),
		qid:       -1,
		fields:    fields,
		buffer:    records,
		exhausted: true,
		terminal:  terminal,
	}
}

// ID is a correlation identifier for logging, stable for the lifetime of
// this Result.
func (r *Result) ID() uuid.UUID { return r.id }

// Fields names the columns of each Record, from the RUN response.
func (r *Result) Fields() []string { return r.fields }

// Err returns the error that ended iteration, if any. It is meaningful only
// after Next has returned ok=false.
func (r *Result) Err() error { return r.err }

// Next advances to and returns the next record. ok is false once the
// stream is exhausted or a prior call failed; callers must check Err in
// that case to distinguish clean exhaustion from failure.
func (r *Result) Next(ctx context.Context) (Record, bool, error) {
	if r.err != nil {
		return nil, false, nil
	}
	if r.pos >= len(r.buffer) {
		if r.exhausted || r.closed {
			return nil, false, nil
		}
		if err := r.fetchMore(ctx); err != nil {
			r.err = err
			return nil, false, err
		}
		if r.pos >= len(r.buffer) {
			return nil, false, nil
		}
	}
	rec := r.buffer[r.pos]
	r.pos++
	return rec, true, nil
}

func (r *Result) fetchMore(ctx context.Context) error {
	if r.fetcher == nil {
		r.exhausted = true
		return nil
	}
	batch, hasMore, meta, err := r.fetcher.Pull(ctx, r.qid, r.fetchSize)
	if err != nil {
		return fmt.Errorf("bolt: stream %s: pull qid=%d: %w", r.id, r.qid, err)
	}
	r.buffer = batch
	r.pos = 0
	r.hasMore = hasMore
	if !hasMore {
		r.exhausted = true
		r.terminal = meta
	}
	return nil
}

// Terminal returns the terminal metadata attached once the stream is
// exhausted (stats, bookmark, plan, profile, notifications, type). It is
// empty until then.
func (r *Result) Terminal() Metadata { return r.terminal }

// Close ends iteration early if records remain, issuing a DISCARD so the
// connection returns to Ready. It is a no-op on a materialized Result, on
// one already exhausted, or on repeated calls.
func (r *Result) Close(ctx context.Context) error {
	if r.closed || r.exhausted || r.fetcher == nil {
		r.closed = true
		return nil
	}
	r.closed = true
	meta, err := r.fetcher.Discard(ctx, r.qid)
	if err != nil {
		return fmt.Errorf("bolt: stream %s: discard qid=%d: %w", r.id, r.qid, err)
	}
	r.terminal = meta
	r.buffer = nil
	r.pos = 0
	return nil
}
