package pbf

import (
	"github.com/corfu-labs/osmpbf/osm"
	"github.com/corfu-labs/osmpbf/wire"
)

// Field numbers for HeaderBlock, HeaderBBox, PrimitiveBlock,
// PrimitiveGroup, StringTable, DenseNodes, and Way, per osmformat.proto
// as reduced in spec §4.4.
const (
	fieldHeaderBBox             = 1
	fieldHeaderRequiredFeatures = 4

	fieldBBoxMinLon = 1
	fieldBBoxMaxLon = 2
	fieldBBoxMaxLat = 3
	fieldBBoxMinLat = 4

	fieldBlockStringTable = 1
	fieldBlockGroup       = 2

	fieldGroupDenseNodes = 2
	fieldGroupWay        = 3

	fieldStringTableS = 1

	fieldDenseID  = 1
	fieldDenseLat = 8
	fieldDenseLon = 9

	fieldWayID   = 1
	fieldWayKeys = 2
	fieldWayVals = 3
	fieldWayRefs = 8
)

// granularity is the default nanodegrees-per-unit scale factor;
// non-default granularity/lat_offset/lon_offset are out of scope
// (spec.md §1 Non-goals), so every lat/lon is simply multiplied by
// this constant.
const granularity = 100

// requiredFeatures this core knows how to honor. An OSMHeader naming
// a required_features value outside this set asks for a decoding
// capability (history, locations-on-ways, ...) this reader doesn't
// have, so it is Malformed rather than silently ignored, matching
// sapk-osmpbf's decodeOSMHeader capability check (SPEC_FULL.md §13).
var knownRequiredFeatures = map[string]bool{
	"OsmSchema-V0.6": true,
	"DenseNodes":     true,
}

// decodeHeaderBlock extracts the bounding box from a HeaderBlock
// message into m.BBox, overwriting any BBox decoded from an earlier
// HeaderBlock (spec §4.4: "if multiple occur, later ones overwrite
// earlier ones").
func decodeHeaderBlock(msg *wire.Message, m *osm.Map) error {
	for _, f := range msg.Fields() {
		if f.Num != fieldHeaderRequiredFeatures || f.Type != wire.Len {
			continue
		}
		feature := string(f.Value.Bytes)
		if !knownRequiredFeatures[feature] {
			return wrapErr(Malformed, "HeaderBlock requires unsupported feature %q", feature)
		}
	}

	bboxField, ok := wire.GetField(msg, fieldHeaderBBox, wire.Len)
	if !ok {
		return nil
	}
	sub, err := wire.ReadEmbeddedMessage(bboxField.Value.Bytes)
	if err != nil {
		return wrapErr(Malformed, "HeaderBBox: %w", err)
	}

	minLon, ok1 := wire.GetField(sub, fieldBBoxMinLon, wire.Varint)
	maxLon, ok2 := wire.GetField(sub, fieldBBoxMaxLon, wire.Varint)
	maxLat, ok3 := wire.GetField(sub, fieldBBoxMaxLat, wire.Varint)
	minLat, ok4 := wire.GetField(sub, fieldBBoxMinLat, wire.Varint)
	if !ok1 || !ok2 || !ok3 || !ok4 {
		log.Notice("HeaderBBox missing one or more fields, treating bounding box as absent")
		return nil
	}

	m.BBox = &osm.BBox{
		MinLon: wire.ZigZagDecode(minLon.Value.Number),
		MaxLon: wire.ZigZagDecode(maxLon.Value.Number),
		MaxLat: wire.ZigZagDecode(maxLat.Value.Number),
		MinLat: wire.ZigZagDecode(minLat.Value.Number),
	}
	return nil
}

// decodePrimitiveBlock expands a PrimitiveBlock's string table, then
// decodes each PrimitiveGroup's DenseNodes and Ways, appending to m in
// encounter order (spec §4.4, §5).
func decodePrimitiveBlock(msg *wire.Message, m *osm.Map) error {
	strings, err := decodeStringTable(msg)
	if err != nil {
		return err
	}

	cur := msg.Head()
	for {
		next, f, found := wire.NextField(cur, fieldBlockGroup, wire.Len, wire.Forward)
		if !found {
			break
		}
		cur = next
		group, err := wire.ReadEmbeddedMessage(f.Value.Bytes)
		if err != nil {
			return wrapErr(Malformed, "PrimitiveGroup: %w", err)
		}
		if err := decodePrimitiveGroup(group, strings, m); err != nil {
			return err
		}
	}
	return nil
}

func decodeStringTable(block *wire.Message) ([]string, error) {
	tableField, ok := wire.GetField(block, fieldBlockStringTable, wire.Len)
	if !ok {
		return nil, nil
	}
	table, err := wire.ReadEmbeddedMessage(tableField.Value.Bytes)
	if err != nil {
		return nil, wrapErr(Malformed, "StringTable: %w", err)
	}
	var out []string
	for _, f := range table.Fields() {
		if f.Num != fieldStringTableS || f.Type != wire.Len {
			continue
		}
		out = append(out, string(f.Value.Bytes))
	}
	return out, nil
}

// stringAt returns table[i], or "" if i is out of range: StringTable
// indices out of range in a Way tag are tolerated, not fatal
// (spec §7).
func stringAt(table []string, i uint64) string {
	if i >= uint64(len(table)) {
		return ""
	}
	return table[i]
}

func decodePrimitiveGroup(group *wire.Message, strings []string, m *osm.Map) error {
	if denseField, ok := wire.GetField(group, fieldGroupDenseNodes, wire.Len); ok {
		nodes, err := decodeDenseNodes(denseField.Value.Bytes)
		if err != nil {
			return err
		}
		m.Nodes = append(m.Nodes, nodes...)
	}

	cur := group.Head()
	for {
		next, f, found := wire.NextField(cur, fieldGroupWay, wire.Len, wire.Forward)
		if !found {
			break
		}
		cur = next
		way, err := decodeWay(f.Value.Bytes, strings)
		if err != nil {
			return err
		}
		m.Ways = append(m.Ways, way)
	}
	return nil
}

func decodeDenseNodes(buf []byte) ([]osm.Node, error) {
	msg, err := wire.ReadEmbeddedMessage(buf)
	if err != nil {
		return nil, wrapErr(Malformed, "DenseNodes: %w", err)
	}

	if err := wire.ExpandPacked(msg, fieldDenseID, wire.Varint); err != nil {
		return nil, wrapErr(Malformed, "DenseNodes.id: %w", err)
	}
	if err := wire.ExpandPacked(msg, fieldDenseLat, wire.Varint); err != nil {
		return nil, wrapErr(Malformed, "DenseNodes.lat: %w", err)
	}
	if err := wire.ExpandPacked(msg, fieldDenseLon, wire.Varint); err != nil {
		return nil, wrapErr(Malformed, "DenseNodes.lon: %w", err)
	}

	ids := collectVarints(msg, fieldDenseID)
	lats := collectVarints(msg, fieldDenseLat)
	lons := collectVarints(msg, fieldDenseLon)
	if len(ids) != len(lats) || len(ids) != len(lons) {
		return nil, wrapErr(Malformed, "DenseNodes: id/lat/lon length mismatch (%d/%d/%d)", len(ids), len(lats), len(lons))
	}

	nodes := make([]osm.Node, len(ids))
	var curID, curLat, curLon int64
	for i := range ids {
		curID += wire.ZigZagDecode(ids[i])
		curLat += wire.ZigZagDecode(lats[i])
		curLon += wire.ZigZagDecode(lons[i])
		nodes[i] = osm.Node{
			ID:  curID,
			Lat: curLat * granularity,
			Lon: curLon * granularity,
		}
	}
	return nodes, nil
}

func decodeWay(buf []byte, strings []string) (osm.Way, error) {
	msg, err := wire.ReadEmbeddedMessage(buf)
	if err != nil {
		return osm.Way{}, wrapErr(Malformed, "Way: %w", err)
	}

	idField, ok := wire.GetField(msg, fieldWayID, wire.Varint)
	if !ok {
		return osm.Way{}, wrapErr(Malformed, "Way missing id")
	}
	way := osm.Way{ID: int64(idField.Value.Number)}

	if err := wire.ExpandPacked(msg, fieldWayKeys, wire.Varint); err != nil {
		return osm.Way{}, wrapErr(Malformed, "Way.keys: %w", err)
	}
	if err := wire.ExpandPacked(msg, fieldWayVals, wire.Varint); err != nil {
		return osm.Way{}, wrapErr(Malformed, "Way.vals: %w", err)
	}
	if err := wire.ExpandPacked(msg, fieldWayRefs, wire.Varint); err != nil {
		return osm.Way{}, wrapErr(Malformed, "Way.refs: %w", err)
	}

	keys := collectVarints(msg, fieldWayKeys)
	vals := collectVarints(msg, fieldWayVals)
	if len(keys) != len(vals) {
		return osm.Way{}, wrapErr(Malformed, "Way %d: keys/vals length mismatch (%d/%d)", way.ID, len(keys), len(vals))
	}
	way.Tags = make([]osm.Tag, len(keys))
	for i := range keys {
		way.Tags[i] = osm.Tag{Key: stringAt(strings, keys[i]), Value: stringAt(strings, vals[i])}
	}

	refDeltas := collectVarints(msg, fieldWayRefs)
	way.Refs = wire.DecodeDeltaZigZag(refDeltas)

	return way, nil
}

func collectVarints(msg *wire.Message, fnum int32) []uint64 {
	var out []uint64
	for _, f := range msg.Fields() {
		if f.Num == fnum && f.Type == wire.Varint {
			out = append(out, f.Value.Number)
		}
	}
	return out
}
