package bolt

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/mickamy/go-bolt/bolt/proto"
)

// TLSMode selects how a connection's transport is secured, derived from the
// URI scheme (see ParseScheme).
type TLSMode int

const (
	// TLSDisabled uses a plain TCP socket. Schemes: bolt, neo4j.
	TLSDisabled TLSMode = iota
	// TLSFullVerify uses TLS with full certificate chain verification.
	// Schemes: bolt+s, neo4j+s.
	TLSFullVerify
	// TLSSelfSigned uses TLS verifying only the peer (self-signed certs
	// accepted). Schemes: bolt+ssc, neo4j+ssc.
	TLSSelfSigned
)

// DefaultPort is the default Bolt listener port.
const DefaultPort = 7687

// Auth carries HELLO/LOGON credentials. It is an alias of proto.Auth so
// that bolt/message can build the wire auth map without importing this
// package.
type Auth = proto.Auth

// Config holds a connection's external configuration: address, TLS mode,
// authentication, timeouts, and version negotiation preferences. It is
// assembled programmatically by the caller; loading it from a file or CLI
// flags is an external collaborator's concern, not the core's.
type Config struct {
	Hostname string
	Port     int
	TLS      TLSMode

	Auth      Auth
	UserAgent string

	// BoltVersions is the ordered list of candidate versions offered
	// during handshake. Defaults to DefaultVersions.
	BoltVersions []Version

	// FetchSize is the default PULL batch size. Defaults to 1000.
	FetchSize int64

	ConnectTimeout time.Duration
	QueryTimeout   time.Duration

	// Logger receives one structured event when Dial has connected and
	// authenticated. Handshake steps, state transitions, and streaming are
	// not logged. Defaults to slog.Default() when nil.
	Logger *slog.Logger
}

// DefaultFetchSize is used when Config.FetchSize is zero.
const DefaultFetchSize int64 = 1000

// logger returns c.Logger, or the package default if unset.
func (c *Config) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

// fetchSize returns c.FetchSize, or DefaultFetchSize if unset.
func (c *Config) fetchSize() int64 {
	if c.FetchSize == 0 {
		return DefaultFetchSize
	}
	return c.FetchSize
}

// versions returns c.BoltVersions, or DefaultVersions if unset.
func (c *Config) versions() []Version {
	if len(c.BoltVersions) == 0 {
		return DefaultVersions
	}
	return c.BoltVersions
}

// ParseScheme inspects a connection URI scheme (e.g. "bolt+s", "neo4j+ssc")
// and returns the TLS mode it selects, by prefix/suffix sniffing.
func ParseScheme(scheme string) (TLSMode, error) {
	scheme = strings.ToLower(scheme)
	base, suffix, hasSuffix := strings.Cut(scheme, "+")

	if base != "bolt" && base != "neo4j" {
		return 0, fmt.Errorf("bolt: unknown scheme %q", scheme)
	}
	if !hasSuffix {
		return TLSDisabled, nil
	}
	switch suffix {
	case "s":
		return TLSFullVerify, nil
	case "ssc":
		return TLSSelfSigned, nil
	default:
		return 0, fmt.Errorf("bolt: unknown scheme suffix %q in %q", suffix, scheme)
	}
}

// Addr returns "hostname:port", defaulting port to DefaultPort when unset.
func (c *Config) Addr() string {
	port := c.Port
	if port == 0 {
		port = DefaultPort
	}
	return fmt.Sprintf("%s:%d", c.Hostname, port)
}
