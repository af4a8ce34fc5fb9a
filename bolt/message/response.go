package message

import (
	"fmt"

	"github.com/mickamy/go-bolt/bolt/proto"
	"github.com/mickamy/go-bolt/packstream"
)

// ResponseKind identifies which of the four server response messages was
// decoded.
type ResponseKind int

const (
	KindSuccess ResponseKind = iota
	KindRecord
	KindIgnored
	KindFailure
)

// Response is a decoded server message. Exactly one of Metadata, Values, or
// Failure is meaningful, selected by Kind.
type Response struct {
	Kind     ResponseKind
	Metadata packstream.Map  // SUCCESS
	Values   []packstream.Value // RECORD
	Failure  *proto.ServerFailure // FAILURE
}

// ParseResponse decodes a Structure into a Response, normalizing
// version-specific metadata field names: pre-3.0 servers return
// result_available_after/result_consumed_after, normalized here to
// t_first/t_last so upper layers see one shape.
func ParseResponse(s packstream.Structure) (*Response, error) {
	switch s.Signature {
	case SigSuccess:
		meta, err := fieldsToMap(s.Fields)
		if err != nil {
			return nil, err
		}
		normalizeTimings(meta)
		return &Response{Kind: KindSuccess, Metadata: meta}, nil

	case SigRecord:
		if len(s.Fields) != 1 {
			return nil, fmt.Errorf("bolt: RECORD must have exactly 1 field (the value list), got %d", len(s.Fields))
		}
		list, ok := s.Fields[0].(packstream.List)
		if !ok {
			return nil, fmt.Errorf("bolt: RECORD field must be a list, got %T", s.Fields[0])
		}
		return &Response{Kind: KindRecord, Values: []packstream.Value(list)}, nil

	case SigIgnored:
		return &Response{Kind: KindIgnored}, nil

	case SigFailure:
		meta, err := fieldsToMap(s.Fields)
		if err != nil {
			return nil, err
		}
		code, _ := meta["code"].(packstream.String)
		msg, _ := meta["message"].(packstream.String)
		return &Response{
			Kind:    KindFailure,
			Failure: &proto.ServerFailure{Code: string(code), Message: string(msg)},
		}, nil

	default:
		return nil, fmt.Errorf("bolt: unknown server message signature 0x%02X", s.Signature)
	}
}

func fieldsToMap(fields []packstream.Value) (packstream.Map, error) {
	if len(fields) == 0 {
		return packstream.Map{}, nil
	}
	m, ok := fields[0].(packstream.Map)
	if !ok {
		return nil, fmt.Errorf("bolt: metadata field must be a map, got %T", fields[0])
	}
	return m, nil
}

func normalizeTimings(meta packstream.Map) {
	if v, ok := meta["result_available_after"]; ok {
		if _, hasNew := meta["t_first"]; !hasNew {
			meta["t_first"] = v
		}
		delete(meta, "result_available_after")
	}
	if v, ok := meta["result_consumed_after"]; ok {
		if _, hasNew := meta["t_last"]; !hasNew {
			meta["t_last"] = v
		}
		delete(meta, "result_consumed_after")
	}
}

// HasMore reports whether SUCCESS metadata indicates more records are
// pending on the same qid.
func (r *Response) HasMore() bool {
	b, _ := r.Metadata["has_more"].(packstream.Boolean)
	return bool(b)
}

// QID extracts the query id from SUCCESS metadata, defaulting to -1 (the
// "last"/only stream) when absent.
func (r *Response) QID() int64 {
	if v, ok := r.Metadata["qid"]; ok {
		if i, ok := v.(packstream.Int); ok {
			return int64(i)
		}
	}
	return -1
}

// Fields extracts the "fields" list from a RUN SUCCESS as a []string.
func (r *Response) Fields() []string {
	v, ok := r.Metadata["fields"]
	if !ok {
		return nil
	}
	list, ok := v.(packstream.List)
	if !ok {
		return nil
	}
	out := make([]string, len(list))
	for i, f := range list {
		if s, ok := f.(packstream.String); ok {
			out[i] = string(s)
		}
	}
	return out
}
