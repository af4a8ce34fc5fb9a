package message

import (
	"github.com/mickamy/go-bolt/bolt/proto"
	"github.com/mickamy/go-bolt/packstream"
)

// RunExtra holds the optional fields carried in RUN and BEGIN's extra map.
// Zero-value fields are omitted from the wire map.
type RunExtra struct {
	Bookmarks    []string
	TxTimeout    *int64 // milliseconds
	TxMetadata   map[string]packstream.Value
	Mode         string // "r" or "w"; empty means server default
	Database     string
	ImpUser      string // v>=4.4
	Notifications packstream.Value // v>=5.2, carried through opaquely
}

func (e RunExtra) toMap(v proto.Version) packstream.Map {
	m := packstream.Map{}
	if len(e.Bookmarks) > 0 {
		list := make(packstream.List, len(e.Bookmarks))
		for i, b := range e.Bookmarks {
			list[i] = packstream.String(b)
		}
		m["bookmarks"] = list
	}
	if e.TxTimeout != nil {
		m["tx_timeout"] = packstream.Int(*e.TxTimeout)
	}
	if len(e.TxMetadata) > 0 {
		tm := make(packstream.Map, len(e.TxMetadata))
		for k, val := range e.TxMetadata {
			tm[k] = val
		}
		m["tx_metadata"] = tm
	}
	if e.Mode != "" {
		m["mode"] = packstream.String(e.Mode)
	}
	if e.Database != "" {
		m["db"] = packstream.String(e.Database)
	}
	if e.ImpUser != "" && SupportsImpersonation(v) {
		m["imp_user"] = packstream.String(e.ImpUser)
	}
	if e.Notifications != nil && SupportsNotifications(v) {
		m["notifications"] = e.Notifications
	}
	return m
}

// HelloOptions configures the HELLO/INIT extra map beyond auth.
type HelloOptions struct {
	UserAgent                   string
	BoltAgent                   map[string]string // v>=5.2
	Routing                     packstream.Value  // v>=4.1, opaque routing context map
	NotificationsMinSeverity    string             // v>=5.2
	NotificationsDisabledCategories []string        // v>=5.2
}

// Hello builds the v3+ HELLO message. For v<5.1 it also carries auth
// credentials inline; for v>=5.1 auth is sent separately via Logon.
func Hello(v proto.Version, opts HelloOptions, auth proto.Auth) packstream.Structure {
	extra := packstream.Map{
		"user_agent": packstream.String(opts.UserAgent),
		"scheme":     packstream.String(auth.Scheme),
	}
	if auth.Scheme == "basic" {
		extra["principal"] = packstream.String(auth.Principal)
	}
	for k, val := range auth.Token {
		extra[k] = packstream.String(val)
	}
	if !SupportsLogon(v) {
		if auth.Scheme == "basic" {
			extra["credentials"] = packstream.String(auth.Credentials)
		}
	}
	if SupportsRouting(v) && opts.Routing != nil {
		extra["routing"] = opts.Routing
	}
	if v.AtLeast(4, 3) && !SupportsUTCDateTime(v) {
		// 4.3/4.4 default to the legacy DateTime signatures; opt into the
		// UTC-preferring ones ahead of them becoming mandatory at 5.0.
		extra["patch_bolt"] = packstream.List{packstream.String("utc")}
	}
	if SupportsBoltAgent(v) && len(opts.BoltAgent) > 0 {
		ba := make(packstream.Map, len(opts.BoltAgent))
		for k, val := range opts.BoltAgent {
			ba[k] = packstream.String(val)
		}
		extra["bolt_agent"] = ba
	}
	if SupportsNotifications(v) {
		if opts.NotificationsMinSeverity != "" {
			extra["notifications_minimum_severity"] = packstream.String(opts.NotificationsMinSeverity)
		}
		if len(opts.NotificationsDisabledCategories) > 0 {
			list := make(packstream.List, len(opts.NotificationsDisabledCategories))
			for i, c := range opts.NotificationsDisabledCategories {
				list[i] = packstream.String(c)
			}
			extra["notifications_disabled_categories"] = list
		}
	}
	return packstream.Structure{Signature: SigHello, Fields: []packstream.Value{extra}}
}

// Init builds the v<=2 INIT message.
func Init(userAgent string, auth proto.Auth) packstream.Structure {
	authMap := packstream.Map{}
	for k, v := range auth.ToMap() {
		authMap[k] = packstream.String(v)
	}
	return packstream.Structure{Signature: SigInit, Fields: []packstream.Value{
		packstream.String(userAgent),
		authMap,
	}}
}

// Logon builds the v>=5.1 LOGON message, carrying auth separately from HELLO.
func Logon(auth proto.Auth) packstream.Structure {
	authMap := packstream.Map{}
	for k, v := range auth.ToMap() {
		authMap[k] = packstream.String(v)
	}
	return packstream.Structure{Signature: SigLogon, Fields: []packstream.Value{authMap}}
}

// Logoff builds the v>=5.1 LOGOFF message (no fields).
func Logoff() packstream.Structure {
	return packstream.Structure{Signature: SigLogoff, Fields: nil}
}

// Run builds RUN for the given version: v>=3 carries an extra map, v<=2 does
// not.
func Run(v proto.Version, query string, params packstream.Map, extra RunExtra) packstream.Structure {
	if params == nil {
		params = packstream.Map{}
	}
	fields := []packstream.Value{packstream.String(query), params}
	if SupportsHello(v) {
		fields = append(fields, extra.toMap(v))
	}
	return packstream.Structure{Signature: SigRun, Fields: fields}
}

// Pull builds PULL for the given version. v<4 ignores n/qid and always pulls
// all remaining records (PULL_ALL semantics); v>=4 sends explicit n and qid.
func Pull(v proto.Version, n int64, qid int64) packstream.Structure {
	if !SupportsExplicitPull(v) {
		return packstream.Structure{Signature: SigPullAll, Fields: nil}
	}
	return packstream.Structure{Signature: SigPull, Fields: []packstream.Value{
		packstream.Map{"n": packstream.Int(n), "qid": packstream.Int(qid)},
	}}
}

// Discard builds DISCARD for the given version, mirroring Pull's shape.
func Discard(v proto.Version, n int64, qid int64) packstream.Structure {
	if !SupportsExplicitPull(v) {
		return packstream.Structure{Signature: SigDiscardAll, Fields: nil}
	}
	return packstream.Structure{Signature: SigDiscard, Fields: []packstream.Value{
		packstream.Map{"n": packstream.Int(n), "qid": packstream.Int(qid)},
	}}
}

// Begin builds BEGIN (v>=3 only).
func Begin(v proto.Version, extra RunExtra) packstream.Structure {
	return packstream.Structure{Signature: SigBegin, Fields: []packstream.Value{extra.toMap(v)}}
}

// Commit builds COMMIT (v>=3 only, no fields).
func Commit() packstream.Structure {
	return packstream.Structure{Signature: SigCommit, Fields: nil}
}

// Rollback builds ROLLBACK (v>=3 only, no fields).
func Rollback() packstream.Structure {
	return packstream.Structure{Signature: SigRollback, Fields: nil}
}

// Reset builds RESET (no fields).
func Reset() packstream.Structure {
	return packstream.Structure{Signature: SigReset, Fields: nil}
}

// Goodbye builds GOODBYE (v>=3 only, no fields).
func Goodbye() packstream.Structure {
	return packstream.Structure{Signature: SigGoodbye, Fields: nil}
}

// AckFailure builds ACK_FAILURE (v<3 only, no fields).
func AckFailure() packstream.Structure {
	return packstream.Structure{Signature: SigAckFailure, Fields: nil}
}
