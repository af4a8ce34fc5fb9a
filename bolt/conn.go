package bolt

import (
	"context"
	"crypto/tls"
	"net"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mickamy/go-bolt/bolt/chunk"
	"github.com/mickamy/go-bolt/bolt/message"
	"github.com/mickamy/go-bolt/bolt/proto"
	"github.com/mickamy/go-bolt/bolt/state"
	"github.com/mickamy/go-bolt/bolt/stream"
	"github.com/mickamy/go-bolt/bolt/values"
	"github.com/mickamy/go-bolt/packstream"
)

// Conn is one Bolt connection: transport, framing, the message codec, and
// the protocol state machine, all serialized behind a single owner — one
// logical connection is a single-threaded cooperative actor. Pool
// management above this type is an external collaborator's concern.
type Conn struct {
	cfg     *Config
	netConn net.Conn
	w       *chunk.Writer
	r       *chunk.Reader
	machine *state.Machine
}

// Dial opens netConn per cfg.TLS, performs the handshake, and authenticates
// (HELLO, then LOGON on v>=5.1, or INIT on v<=2), returning a Conn in
// Ready.
func Dial(ctx context.Context, cfg *Config) (*Conn, error) {
	rawConn, err := (&net.Dialer{Timeout: cfg.ConnectTimeout}).DialContext(ctx, "tcp", cfg.Addr())
	if err != nil {
		return nil, &proto.TransportError{Op: "dial", Err: err}
	}

	netConn := rawConn
	if cfg.TLS != TLSDisabled {
		tlsConfig := &tls.Config{ServerName: cfg.Hostname}
		if cfg.TLS == TLSSelfSigned {
			tlsConfig.InsecureSkipVerify = true
		}
		tlsConn := tls.Client(rawConn, tlsConfig)
		if err := tlsConn.HandshakeContext(ctx); err != nil {
			rawConn.Close()
			return nil, &proto.TransportError{Op: "tls handshake", Err: err}
		}
		netConn = tlsConn
	}

	c := &Conn{
		cfg:     cfg,
		netConn: netConn,
		w:       chunk.NewWriter(netConn),
		r:       chunk.NewReader(netConn),
		machine: state.NewMachine(),
	}

	version, err := Handshake(netConn, cfg.versions())
	if err != nil {
		netConn.Close()
		return nil, err
	}
	if err := c.machine.Negotiated(version); err != nil {
		netConn.Close()
		return nil, err
	}

	if err := c.authenticate(ctx); err != nil {
		netConn.Close()
		return nil, err
	}

	cfg.logger().Info("bolt: connected", "addr", cfg.Addr(), "version", version.String())
	return c, nil
}

func (c *Conn) version() proto.Version { return c.machine.Version() }

func (c *Conn) authenticate(ctx context.Context) error {
	v := c.version()
	if !message.SupportsHello(v) {
		resp, err := c.roundTrip(ctx, state.MsgInit, message.Init(c.cfg.UserAgent, c.cfg.Auth))
		if err != nil {
			return err
		}
		return c.checkSuccess(resp)
	}

	opts := message.HelloOptions{UserAgent: c.cfg.UserAgent}
	resp, err := c.roundTrip(ctx, state.MsgHello, message.Hello(v, opts, c.cfg.Auth))
	if err != nil {
		return err
	}
	if err := c.checkSuccess(resp); err != nil {
		return err
	}

	if message.SupportsLogon(v) {
		resp, err := c.roundTrip(ctx, state.MsgLogon, message.Logon(c.cfg.Auth))
		if err != nil {
			return err
		}
		return c.checkSuccess(resp)
	}
	return nil
}

func (c *Conn) checkSuccess(resp *message.Response) error {
	if resp.Kind == message.KindFailure {
		return resp.Failure
	}
	return nil
}

// send writes msg to the wire, racing the write against ctx cancellation
// with an errgroup pair: one goroutine performs the blocking write and
// closes done when it returns, the other arms the socket deadline if ctx is
// cancelled first.
func (c *Conn) send(ctx context.Context, msg packstream.Structure) error {
	done := make(chan struct{})
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		return message.Encode(c.w, msg)
	})
	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-gctx.Done():
			c.netConn.SetWriteDeadline(time.Now())
			return nil
		}
	})
	if err := g.Wait(); err != nil {
		c.machine.Defunct()
		return &proto.TransportError{Op: "send", Err: err}
	}
	return nil
}

func (c *Conn) recv(ctx context.Context) (*message.Response, error) {
	done := make(chan struct{})
	var s packstream.Structure
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer close(done)
		var err error
		s, err = message.Decode(c.r)
		return err
	})
	g.Go(func() error {
		select {
		case <-done:
			return nil
		case <-gctx.Done():
			c.netConn.SetReadDeadline(time.Now())
			return nil
		}
	})
	if err := g.Wait(); err != nil {
		c.machine.Defunct()
		return nil, &proto.TransportError{Op: "recv", Err: err}
	}
	resp, err := message.ParseResponse(s)
	if err != nil {
		c.machine.Defunct()
		return nil, &proto.ProtocolError{Op: "parse response", Err: err}
	}
	return resp, nil
}

// roundTrip sends one request message and reads exactly one response,
// validating the send against the state machine and feeding the response
// back into it.
func (c *Conn) roundTrip(ctx context.Context, msg state.Message, s packstream.Structure) (*message.Response, error) {
	if err := c.machine.Send(msg); err != nil {
		return nil, err
	}
	if err := c.send(ctx, s); err != nil {
		return nil, err
	}
	resp, err := c.recv(ctx)
	if err != nil {
		return nil, err
	}
	if resp.Kind == message.KindIgnored {
		return resp, &proto.Ignored{Op: msg.String()}
	}
	if err := c.machine.Handle(msg, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// Run issues RUN and returns a streaming Result over it. It does not issue
// the first PULL itself; callers iterate the Result, which pulls on
// demand, keeping the model lazy and backpressured.
func (c *Conn) Run(ctx context.Context, query string, params map[string]packstream.Value, extra message.RunExtra) (*stream.Result, error) {
	v := c.version()
	if err := message.ValidateParams(v, packstream.Map(params)); err != nil {
		return nil, &proto.ProtocolError{Op: "run", Err: err}
	}
	resp, err := c.roundTrip(ctx, state.MsgRun, message.Run(v, query, packstream.Map(params), extra))
	if err != nil {
		return nil, err
	}
	if resp.Kind == message.KindFailure {
		return nil, resp.Failure
	}
	qid := int64(-1)
	if message.SupportsQid(v) {
		qid = resp.QID()
	}
	fetchSize := c.cfg.fetchSize()
	return stream.New((*connFetcher)(c), qid, resp.Fields(), fetchSize), nil
}

// DecodeValue resolves a raw record value into its concrete domain type
// (Node, Relationship, UnboundRelationship, Path, Point, a temporal value,
// or Unknown) when val carries a PackStream Structure, validating the
// decode against this connection's negotiated version. Scalar and
// collection values are returned unchanged.
func (c *Conn) DecodeValue(val packstream.Value) (any, error) {
	s, ok := val.(packstream.Structure)
	if !ok {
		return val, nil
	}
	return values.DecodeVersioned(c.version(), s)
}

// Begin issues BEGIN, moving the connection into a transaction.
func (c *Conn) Begin(ctx context.Context, extra message.RunExtra) error {
	resp, err := c.roundTrip(ctx, state.MsgBegin, message.Begin(c.version(), extra))
	if err != nil {
		return err
	}
	return c.checkSuccess(resp)
}

// Commit issues COMMIT, ending the current transaction successfully.
func (c *Conn) Commit(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, state.MsgCommit, message.Commit())
	if err != nil {
		return err
	}
	return c.checkSuccess(resp)
}

// Rollback issues ROLLBACK, ending the current transaction without effect.
func (c *Conn) Rollback(ctx context.Context) error {
	resp, err := c.roundTrip(ctx, state.MsgRollback, message.Rollback())
	if err != nil {
		return err
	}
	return c.checkSuccess(resp)
}

// Logoff issues LOGOFF (v>=5.1 only, where auth is carried separately from
// HELLO via Logon), de-authenticating the connection without closing it. The
// caller must send Logon again with new credentials before issuing Run or
// Begin. It is a no-op on connections that never authenticated via Logon.
func (c *Conn) Logoff(ctx context.Context) error {
	if !message.SupportsLogon(c.version()) {
		return nil
	}
	resp, err := c.roundTrip(ctx, state.MsgLogoff, message.Logoff())
	if err != nil {
		return err
	}
	return c.checkSuccess(resp)
}

// Reset issues RESET (or ACK_FAILURE on v<3), recovering from Failed back
// to Ready and discarding any open stream.
func (c *Conn) Reset(ctx context.Context) error {
	msg, req := state.MsgReset, message.Reset()
	if !message.SupportsHello(c.version()) {
		msg, req = state.MsgAckFailure, message.AckFailure()
	}
	resp, err := c.roundTrip(ctx, msg, req)
	if err != nil {
		return err
	}
	return c.checkSuccess(resp)
}

// Close issues GOODBYE (v>=3) and closes the socket. On v<=2, which has no
// GOODBYE, it closes the socket directly.
func (c *Conn) Close(ctx context.Context) error {
	defer c.netConn.Close()
	if !message.SupportsHello(c.version()) {
		return nil
	}
	if err := c.machine.Send(state.MsgGoodbye); err != nil {
		return nil // already Defunct; closing the socket is enough.
	}
	return c.send(ctx, message.Goodbye())
}

// connFetcher adapts *Conn to stream.Fetcher without exposing Conn's
// internals to the stream package (which must not import bolt, to avoid a
// cycle with bolt importing stream).
type connFetcher Conn

func (f *connFetcher) Pull(ctx context.Context, qid int64, n int64) ([]stream.Record, bool, stream.Metadata, error) {
	c := (*Conn)(f)
	resp, err := c.roundTrip(ctx, state.MsgPull, message.Pull(c.version(), n, qid))
	if err != nil {
		return nil, false, nil, err
	}
	var batch []stream.Record
	for resp.Kind == message.KindRecord {
		batch = append(batch, stream.Record(resp.Values))
		resp, err = c.recv(ctx)
		if err != nil {
			return nil, false, nil, err
		}
		if resp.Kind != message.KindRecord {
			if err := c.machine.Handle(state.MsgPull, resp); err != nil {
				return nil, false, nil, err
			}
		}
	}
	if resp.Kind == message.KindFailure {
		return nil, false, nil, resp.Failure
	}
	return batch, resp.HasMore(), stream.Metadata(resp.Metadata), nil
}

func (f *connFetcher) Discard(ctx context.Context, qid int64) (stream.Metadata, error) {
	c := (*Conn)(f)
	resp, err := c.roundTrip(ctx, state.MsgDiscard, message.Discard(c.version(), -1, qid))
	if err != nil {
		return nil, err
	}
	for resp.Kind == message.KindRecord {
		resp, err = c.recv(ctx)
		if err != nil {
			return nil, err
		}
		if resp.Kind != message.KindRecord {
			if err := c.machine.Handle(state.MsgDiscard, resp); err != nil {
				return nil, err
			}
		}
	}
	if resp.Kind == message.KindFailure {
		return nil, resp.Failure
	}
	return stream.Metadata(resp.Metadata), nil
}
