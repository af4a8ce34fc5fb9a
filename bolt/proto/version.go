// Package proto holds the small set of types shared between the transport,
// message catalog, and state machine layers (Version, Auth, and the error
// taxonomy) so that those packages can depend on them without creating an
// import cycle back through the top-level bolt package.
package proto

import "fmt"

// Version is a negotiated Bolt protocol version. It gates every message
// shape and state transition described in the message catalog and state
// machine packages.
type Version struct {
	Major byte
	Minor byte
}

func (v Version) String() string { return fmt.Sprintf("%d.%d", v.Major, v.Minor) }

// AtLeast reports whether v is greater than or equal to (major, minor).
func (v Version) AtLeast(major, minor byte) bool {
	if v.Major != major {
		return v.Major > major
	}
	return v.Minor >= minor
}

// LessThan reports whether v is strictly less than (major, minor).
func (v Version) LessThan(major, minor byte) bool {
	return !v.AtLeast(major, minor)
}

// IsZero reports whether v is the unnegotiated zero value.
func (v Version) IsZero() bool { return v == Version{} }

// DefaultVersions is the ordered list of candidate versions offered during
// handshake when Config.BoltVersions is unset, newest first (the server
// picks the first one it supports).
var DefaultVersions = []Version{
	{5, 4},
	{5, 1},
	{4, 4},
	{3, 0},
}
