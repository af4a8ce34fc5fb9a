package bolt

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/mickamy/go-bolt/bolt/chunk"
	"github.com/mickamy/go-bolt/bolt/message"
	"github.com/mickamy/go-bolt/bolt/state"
	"github.com/mickamy/go-bolt/packstream"
)

// fakeServer drives the server side of net.Pipe with hand-built Bolt
// framing, standing in for a real Neo4j instance for these unit tests. It
// negotiates v5.4 and always authenticates successfully.
type fakeServer struct {
	conn net.Conn
	w    *chunk.Writer
	r    *chunk.Reader
}

func newFakeServer(conn net.Conn) *fakeServer {
	return &fakeServer{conn: conn, w: chunk.NewWriter(conn), r: chunk.NewReader(conn)}
}

func (s *fakeServer) handshake(t *testing.T) {
	t.Helper()
	s.handshakeVersion(t, 5, 4)
}

// handshakeVersion reads the client's handshake preamble and replies with
// major.minor, letting tests negotiate a version other than the default 5.4.
func (s *fakeServer) handshakeVersion(t *testing.T, major, minor byte) {
	t.Helper()
	var buf [20]byte
	if _, err := io.ReadFull(s.conn, buf[:]); err != nil {
		t.Fatalf("server: read handshake: %v", err)
	}
	resp := make([]byte, 4)
	binary.BigEndian.PutUint32(resp, uint32(minor)<<8|uint32(major))
	if _, err := s.conn.Write(resp); err != nil {
		t.Fatalf("server: write handshake response: %v", err)
	}
}

func (s *fakeServer) expect(t *testing.T, wantSig byte) packstream.Structure {
	t.Helper()
	got, err := message.Decode(s.r)
	if err != nil {
		t.Fatalf("server: decode: %v", err)
	}
	if got.Signature != wantSig {
		t.Fatalf("server: got signature 0x%02X, want 0x%02X", got.Signature, wantSig)
	}
	return got
}

func (s *fakeServer) success(t *testing.T, meta packstream.Map) {
	t.Helper()
	if err := message.Encode(s.w, packstream.Structure{Signature: message.SigSuccess, Fields: []packstream.Value{meta}}); err != nil {
		t.Fatalf("server: encode success: %v", err)
	}
}

func (s *fakeServer) record(t *testing.T, values ...packstream.Value) {
	t.Helper()
	if err := message.Encode(s.w, packstream.Structure{Signature: message.SigRecord, Fields: []packstream.Value{packstream.List(values)}}); err != nil {
		t.Fatalf("server: encode record: %v", err)
	}
}

func dialOverPipe(t *testing.T) (*Conn, *fakeServer) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	srv := newFakeServer(serverConn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.handshake(t)
		srv.expect(t, message.SigHello)
		srv.success(t, packstream.Map{"server": packstream.String("Neo4j/5.4.0")})
		srv.expect(t, message.SigLogon)
		srv.success(t, packstream.Map{})
	}()

	cfg := &Config{Hostname: "localhost", Auth: Auth{Scheme: "basic", Principal: "neo4j", Credentials: "pw"}, UserAgent: "go-bolt-test/0"}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := dialConn(ctx, cfg, clientConn)
	if err != nil {
		t.Fatalf("dialConn: %v", err)
	}
	<-done
	return c, srv
}

// dialConn is Dial with the network dial step replaced by a pre-established
// connection, letting tests exercise handshake+auth+roundtrip over
// net.Pipe without a real listener.
func dialConn(ctx context.Context, cfg *Config, netConn net.Conn) (*Conn, error) {
	c := &Conn{
		cfg:     cfg,
		netConn: netConn,
		w:       chunk.NewWriter(netConn),
		r:       chunk.NewReader(netConn),
		machine: state.NewMachine(),
	}
	version, err := Handshake(netConn, cfg.versions())
	if err != nil {
		return nil, err
	}
	if err := c.machine.Negotiated(version); err != nil {
		return nil, err
	}
	if err := c.authenticate(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// dialOverPipeV3 negotiates v3.0, which authenticates via HELLO (no LOGON,
// no qid support), standing in for a server that predates explicit PULL.
func dialOverPipeV3(t *testing.T) (*Conn, *fakeServer) {
	t.Helper()
	clientConn, serverConn := net.Pipe()
	srv := newFakeServer(serverConn)

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.handshakeVersion(t, 3, 0)
		srv.expect(t, message.SigHello)
		srv.success(t, packstream.Map{"server": packstream.String("Neo4j/3.0.0")})
	}()

	cfg := &Config{Hostname: "localhost", Auth: Auth{Scheme: "basic", Principal: "neo4j", Credentials: "pw"}, UserAgent: "go-bolt-test/0"}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := dialConn(ctx, cfg, clientConn)
	if err != nil {
		t.Fatalf("dialConn: %v", err)
	}
	<-done
	return c, srv
}

func TestRunOmitsQidBelowV4(t *testing.T) {
	c, srv := dialOverPipeV3(t)
	defer c.netConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.expect(t, message.SigRun)
		// A v3 server never reports a qid; it would be absent or 0 from a
		// real server, but Run must not surface it as a real query id
		// either way since SupportsQid is false below v4.
		srv.success(t, packstream.Map{"fields": packstream.List{packstream.String("n")}})
		srv.expect(t, message.SigPullAll)
		srv.record(t, packstream.Int(1))
		srv.success(t, packstream.Map{})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := c.Run(ctx, "RETURN 1 AS n", nil, message.RunExtra{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Fields()) != 1 || result.Fields()[0] != "n" {
		t.Fatalf("fields = %v", result.Fields())
	}
	rec, ok, err := result.Next(ctx)
	if err != nil {
		t.Fatalf("Next: %v", err)
	}
	if !ok || int64(rec[0].(packstream.Int)) != 1 {
		t.Fatalf("got %v, ok=%v, want [1] true", rec, ok)
	}
	<-done
}

func TestDialAuthenticatesAndReachesReady(t *testing.T) {
	c, _ := dialOverPipe(t)
	defer c.netConn.Close()

	if c.version().String() != "5.4" {
		t.Fatalf("version = %s, want 5.4", c.version())
	}
	if c.machine.State() != state.Ready {
		t.Fatalf("state = %s, want Ready", c.machine.State())
	}
}

func TestRunStreamsRecordsThenReturnsToReady(t *testing.T) {
	c, srv := dialOverPipe(t)
	defer c.netConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.expect(t, message.SigRun)
		srv.success(t, packstream.Map{"fields": packstream.List{packstream.String("n")}, "qid": packstream.Int(-1)})
		srv.expect(t, message.SigPull)
		srv.record(t, packstream.Int(1))
		srv.record(t, packstream.Int(2))
		srv.success(t, packstream.Map{"has_more": packstream.Boolean(false), "type": packstream.String("r")})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	result, err := c.Run(ctx, "RETURN 1 AS n", nil, message.RunExtra{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(result.Fields()) != 1 || result.Fields()[0] != "n" {
		t.Fatalf("fields = %v", result.Fields())
	}

	var got []int64
	for {
		rec, ok, err := result.Next(ctx)
		if err != nil {
			t.Fatalf("Next: %v", err)
		}
		if !ok {
			break
		}
		got = append(got, int64(rec[0].(packstream.Int)))
	}
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("got %v, want [1 2]", got)
	}
	if c.machine.State() != state.Ready {
		t.Fatalf("state = %s, want Ready", c.machine.State())
	}
	<-done
}

func TestLogoffThenLogonReauthenticates(t *testing.T) {
	c, srv := dialOverPipe(t)
	defer c.netConn.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		srv.expect(t, message.SigLogoff)
		srv.success(t, packstream.Map{})
		srv.expect(t, message.SigLogon)
		srv.success(t, packstream.Map{})
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Logoff(ctx); err != nil {
		t.Fatalf("Logoff: %v", err)
	}
	if c.machine.State() != state.Unauthenticated {
		t.Fatalf("state = %s, want Unauthenticated", c.machine.State())
	}
	if _, err := c.roundTrip(ctx, state.MsgLogon, message.Logon(c.cfg.Auth)); err != nil {
		t.Fatalf("re-LOGON: %v", err)
	}
	if c.machine.State() != state.Ready {
		t.Fatalf("state = %s, want Ready", c.machine.State())
	}
	<-done
}
