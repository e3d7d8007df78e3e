// Package osm holds the in-memory map model materialized by pbf.Decode:
// a bounding box, an ordered set of Nodes, and an ordered set of Ways,
// plus read-only accessors over them (spec §3, §4.5).
package osm

// BBox is a geographic bounding box in nanodegrees (10^-9 degree),
// OSM's native fixed-point coordinate unit.
type BBox struct {
	MinLon int64
	MaxLon int64
	MaxLat int64
	MinLat int64
}

// Tag is a single (key, value) string pair attached to a Node or Way.
type Tag struct {
	Key   string
	Value string
}

// Node is a geographic point with optional tags. Lat and Lon are in
// nanodegrees. Tags on dense nodes are out of scope (spec.md §1
// Non-goals), so every Node built by this core has an empty Tags
// slice; Way carries its own Tags field.
type Node struct {
	ID   int64
	Lat  int64
	Lon  int64
	Tags []Tag
}

// Way is an ordered list of node-reference ids plus optional tags.
// Refs are absolute node ids, already delta-reconstructed; a Way
// holds no pointer to the Nodes it references, only their ids.
type Way struct {
	ID   int64
	Refs []int64
	Tags []Tag
}

// Map is the decoded result of one PBF byte stream: at most one
// bounding box, plus every Node and Way encountered, in the order
// they appeared in the input.
type Map struct {
	BBox  *BBox
	Nodes []Node
	Ways  []Way
}

// NumNodes returns the number of nodes in m.
func (m *Map) NumNodes() int {
	if m == nil {
		return 0
	}
	return len(m.Nodes)
}

// NumWays returns the number of ways in m.
func (m *Map) NumWays() int {
	if m == nil {
		return 0
	}
	return len(m.Ways)
}

// Node returns the node at idx, or the zero Node and false if idx is
// out of range.
func (m *Map) Node(idx int) (Node, bool) {
	if m == nil || idx < 0 || idx >= len(m.Nodes) {
		return Node{}, false
	}
	return m.Nodes[idx], true
}

// Way returns the way at idx, or the zero Way and false if idx is out
// of range.
func (m *Map) Way(idx int) (Way, bool) {
	if m == nil || idx < 0 || idx >= len(m.Ways) {
		return Way{}, false
	}
	return m.Ways[idx], true
}

// Bounds returns m's bounding box and whether one is present.
func (m *Map) Bounds() (BBox, bool) {
	if m == nil || m.BBox == nil {
		return BBox{}, false
	}
	return *m.BBox, true
}

// FindNode returns the index of the node with the given id, or -1 if
// none is present. It is a linear scan: the core makes no ordering or
// indexing guarantee beyond input order (spec §5), so callers that
// need repeated lookups should build their own index from Nodes.
func (m *Map) FindNode(id int64) int {
	if m == nil {
		return -1
	}
	for i, n := range m.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// FindWay returns the index of the way with the given id, or -1 if
// none is present. See FindNode's note on lookup cost.
func (m *Map) FindWay(id int64) int {
	if m == nil {
		return -1
	}
	for i, w := range m.Ways {
		if w.ID == id {
			return i
		}
	}
	return -1
}

// RefCount returns the number of node references in w.
func (w Way) RefCount() int {
	return len(w.Refs)
}

// Ref returns the node-reference id at position i in w, or 0 and
// false if i is out of range.
func (w Way) Ref(i int) (int64, bool) {
	if i < 0 || i >= len(w.Refs) {
		return 0, false
	}
	return w.Refs[i], true
}

// TagCount returns the number of (key, value) pairs on n.
func (n Node) TagCount() int {
	return len(n.Tags)
}

// TagCount returns the number of (key, value) pairs on w.
func (w Way) TagCount() int {
	return len(w.Tags)
}

// TagAt returns the key/value pair at position i on n, or two empty
// strings and false if i is out of range.
func (n Node) TagAt(i int) (string, string, bool) {
	if i < 0 || i >= len(n.Tags) {
		return "", "", false
	}
	return n.Tags[i].Key, n.Tags[i].Value, true
}

// TagAt returns the key/value pair at position i on w, or two empty
// strings and false if i is out of range.
func (w Way) TagAt(i int) (string, string, bool) {
	if i < 0 || i >= len(w.Tags) {
		return "", "", false
	}
	return w.Tags[i].Key, w.Tags[i].Value, true
}

// TagValue returns the value associated with key on w, and whether it
// was found. Ways typically carry few tags, so this is a linear scan.
func (w Way) TagValue(key string) (string, bool) {
	for _, t := range w.Tags {
		if t.Key == key {
			return t.Value, true
		}
	}
	return "", false
}
