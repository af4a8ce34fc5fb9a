package values

import "github.com/mickamy/go-bolt/packstream"

// Node is a labeled, property-carrying graph vertex.
// ElementID is populated from v5+ servers and empty otherwise; callers that
// need a stable identifier across server versions should prefer it when
// present and fall back to ID.
type Node struct {
	ID         int64
	Labels     []string
	Properties map[string]packstream.Value
	ElementID  string
}

// Relationship is a typed, directed edge between two nodes, carrying its own
// properties.
type Relationship struct {
	ID              int64
	StartID         int64
	EndID           int64
	Type            string
	Properties      map[string]packstream.Value
	ElementID       string
	StartElementID  string
	EndElementID    string
}

// UnboundRelationship is a Relationship with its endpoints elided, as they
// appear inside a Path's relationship list (the endpoints are implied by
// the path's node sequence instead).
type UnboundRelationship struct {
	ID         int64
	Type       string
	Properties map[string]packstream.Value
	ElementID  string
}

// Path is an alternating walk of nodes and relationships returned by
// queries that traverse the graph. The wire form stores nodes and
// relationships once each (Path.Nodes, Path.Relationships) plus a compact
// Sequence of (relationship, node) index pairs; Nodes/Relationships
// reconstruct the full walk from that compact form.
type Path struct {
	nodes         []Node
	relationships []UnboundRelationship
	sequence      []int64
}

// DecodeNode decodes a Node structure: Node(id, labels, properties[, element_id]).
func DecodeNode(s packstream.Structure) (Node, error) {
	if s.Signature != SigNode {
		return Node{}, newDecodeError(s.Signature, "not a Node structure")
	}
	if len(s.Fields) < 3 {
		return Node{}, newDecodeError(s.Signature, "want at least 3 fields, got %d", len(s.Fields))
	}
	id, err := asInt(s.Fields[0])
	if err != nil {
		return Node{}, newDecodeError(s.Signature, "id: %w", err)
	}
	labels, err := asStringList(s.Fields[1])
	if err != nil {
		return Node{}, newDecodeError(s.Signature, "labels: %w", err)
	}
	props, err := asPropertyMap(s.Fields[2])
	if err != nil {
		return Node{}, newDecodeError(s.Signature, "properties: %w", err)
	}
	n := Node{ID: id, Labels: labels, Properties: props}
	if len(s.Fields) >= 4 {
		if eid, ok := s.Fields[3].(packstream.String); ok {
			n.ElementID = string(eid)
		}
	}
	return n, nil
}

// DecodeRelationship decodes a Relationship structure:
// Relationship(id, start_id, end_id, type, properties[, element_id,
// start_element_id, end_element_id]).
func DecodeRelationship(s packstream.Structure) (Relationship, error) {
	if s.Signature != SigRelationship {
		return Relationship{}, newDecodeError(s.Signature, "not a Relationship structure")
	}
	if len(s.Fields) < 5 {
		return Relationship{}, newDecodeError(s.Signature, "want at least 5 fields, got %d", len(s.Fields))
	}
	id, err := asInt(s.Fields[0])
	if err != nil {
		return Relationship{}, newDecodeError(s.Signature, "id: %w", err)
	}
	startID, err := asInt(s.Fields[1])
	if err != nil {
		return Relationship{}, newDecodeError(s.Signature, "start_id: %w", err)
	}
	endID, err := asInt(s.Fields[2])
	if err != nil {
		return Relationship{}, newDecodeError(s.Signature, "end_id: %w", err)
	}
	typ, ok := s.Fields[3].(packstream.String)
	if !ok {
		return Relationship{}, newDecodeError(s.Signature, "type: want String, got %T", s.Fields[3])
	}
	props, err := asPropertyMap(s.Fields[4])
	if err != nil {
		return Relationship{}, newDecodeError(s.Signature, "properties: %w", err)
	}
	r := Relationship{ID: id, StartID: startID, EndID: endID, Type: string(typ), Properties: props}
	if len(s.Fields) >= 8 {
		if eid, ok := s.Fields[5].(packstream.String); ok {
			r.ElementID = string(eid)
		}
		if seid, ok := s.Fields[6].(packstream.String); ok {
			r.StartElementID = string(seid)
		}
		if eeid, ok := s.Fields[7].(packstream.String); ok {
			r.EndElementID = string(eeid)
		}
	}
	return r, nil
}

// DecodeUnboundRelationship decodes an UnboundRelationship structure:
// UnboundRelationship(id, type, properties[, element_id]).
func DecodeUnboundRelationship(s packstream.Structure) (UnboundRelationship, error) {
	if s.Signature != SigUnboundRelationship {
		return UnboundRelationship{}, newDecodeError(s.Signature, "not an UnboundRelationship structure")
	}
	if len(s.Fields) < 3 {
		return UnboundRelationship{}, newDecodeError(s.Signature, "want at least 3 fields, got %d", len(s.Fields))
	}
	id, err := asInt(s.Fields[0])
	if err != nil {
		return UnboundRelationship{}, newDecodeError(s.Signature, "id: %w", err)
	}
	typ, ok := s.Fields[1].(packstream.String)
	if !ok {
		return UnboundRelationship{}, newDecodeError(s.Signature, "type: want String, got %T", s.Fields[1])
	}
	props, err := asPropertyMap(s.Fields[2])
	if err != nil {
		return UnboundRelationship{}, newDecodeError(s.Signature, "properties: %w", err)
	}
	r := UnboundRelationship{ID: id, Type: string(typ), Properties: props}
	if len(s.Fields) >= 4 {
		if eid, ok := s.Fields[3].(packstream.String); ok {
			r.ElementID = string(eid)
		}
	}
	return r, nil
}

// DecodePath decodes a Path structure: Path(nodes, relationships, sequence).
func DecodePath(s packstream.Structure) (Path, error) {
	if s.Signature != SigPath {
		return Path{}, newDecodeError(s.Signature, "not a Path structure")
	}
	if len(s.Fields) != 3 {
		return Path{}, newDecodeError(s.Signature, "want 3 fields, got %d", len(s.Fields))
	}
	nodeList, ok := s.Fields[0].(packstream.List)
	if !ok {
		return Path{}, newDecodeError(s.Signature, "nodes: want List, got %T", s.Fields[0])
	}
	nodes := make([]Node, len(nodeList))
	for i, v := range nodeList {
		ns, ok := v.(packstream.Structure)
		if !ok {
			return Path{}, newDecodeError(s.Signature, "nodes[%d]: want Structure, got %T", i, v)
		}
		n, err := DecodeNode(ns)
		if err != nil {
			return Path{}, err
		}
		nodes[i] = n
	}
	relList, ok := s.Fields[1].(packstream.List)
	if !ok {
		return Path{}, newDecodeError(s.Signature, "relationships: want List, got %T", s.Fields[1])
	}
	rels := make([]UnboundRelationship, len(relList))
	for i, v := range relList {
		rs, ok := v.(packstream.Structure)
		if !ok {
			return Path{}, newDecodeError(s.Signature, "relationships[%d]: want Structure, got %T", i, v)
		}
		r, err := DecodeUnboundRelationship(rs)
		if err != nil {
			return Path{}, err
		}
		rels[i] = r
	}
	seqList, ok := s.Fields[2].(packstream.List)
	if !ok {
		return Path{}, newDecodeError(s.Signature, "sequence: want List, got %T", s.Fields[2])
	}
	if len(seqList)%2 != 0 {
		return Path{}, newDecodeError(s.Signature, "sequence has odd length %d", len(seqList))
	}
	seq := make([]int64, len(seqList))
	for i, v := range seqList {
		n, err := asInt(v)
		if err != nil {
			return Path{}, newDecodeError(s.Signature, "sequence[%d]: %w", i, err)
		}
		seq[i] = n
	}
	return Path{nodes: nodes, relationships: rels, sequence: seq}, nil
}

// Nodes walks the compact sequence encoding and returns the full ordered
// list of nodes visited, starting with the path's origin node. The
// sequence alternates (rel_index, node_index) pairs; node_index is 0-based
// into p's node list (rel_index is 1-based, see Relationships).
func (p Path) Nodes() []Node {
	if len(p.nodes) == 0 {
		return nil
	}
	out := make([]Node, 0, len(p.sequence)/2+1)
	out = append(out, p.nodes[0])
	for i := 1; i < len(p.sequence); i += 2 {
		nodeIdx := p.sequence[i]
		out = append(out, p.nodes[nodeIdx])
	}
	return out
}

// Relationships walks the compact sequence encoding and returns the full
// ordered list of relationships traversed, each reoriented to match the
// direction it was actually walked in: a negative rel_index means the
// relationship was traversed end-to-start, so Relationships reverses
// StartID/EndID for that step relative to the UnboundRelationship's stored
// direction.
func (p Path) Relationships() []Relationship {
	if len(p.sequence) == 0 {
		return nil
	}
	out := make([]Relationship, 0, len(p.sequence)/2)
	prevNodeIdx := int64(0)
	for i := 0; i < len(p.sequence); i += 2 {
		relIdx := p.sequence[i]
		nodeIdx := p.sequence[i+1]

		forward := relIdx > 0
		idx := relIdx
		if !forward {
			idx = -relIdx
		}
		u := p.relationships[idx-1]

		from := p.nodes[prevNodeIdx]
		to := p.nodes[nodeIdx]
		r := Relationship{
			ID:         u.ID,
			Type:       u.Type,
			Properties: u.Properties,
			ElementID:  u.ElementID,
		}
		if forward {
			r.StartID, r.EndID = from.ID, to.ID
			r.StartElementID, r.EndElementID = from.ElementID, to.ElementID
		} else {
			r.StartID, r.EndID = to.ID, from.ID
			r.StartElementID, r.EndElementID = to.ElementID, from.ElementID
		}
		out = append(out, r)
		prevNodeIdx = nodeIdx
	}
	return out
}

func asInt(v packstream.Value) (int64, error) {
	i, ok := v.(packstream.Int)
	if !ok {
		return 0, newDecodeError(0, "want Int, got %T", v)
	}
	return int64(i), nil
}

func asStringList(v packstream.Value) ([]string, error) {
	list, ok := v.(packstream.List)
	if !ok {
		return nil, newDecodeError(0, "want List, got %T", v)
	}
	out := make([]string, len(list))
	for i, e := range list {
		s, ok := e.(packstream.String)
		if !ok {
			return nil, newDecodeError(0, "element %d: want String, got %T", i, e)
		}
		out[i] = string(s)
	}
	return out, nil
}

func asPropertyMap(v packstream.Value) (map[string]packstream.Value, error) {
	m, ok := v.(packstream.Map)
	if !ok {
		return nil, newDecodeError(0, "want Map, got %T", v)
	}
	return map[string]packstream.Value(m), nil
}
