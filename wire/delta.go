package wire

// DecodeDeltaZigZag reconstructs an absolute sequence from a sequence
// of zigzag-encoded deltas, as used throughout OSM PBF's DenseNodes
// and Way.refs (spec §4.4): each element is the running sum of the
// zigzag-decoded deltas seen so far, starting from zero.
func DecodeDeltaZigZag(deltas []uint64) []int64 {
	out := make([]int64, len(deltas))
	var running int64
	for i, d := range deltas {
		running += ZigZagDecode(d)
		out[i] = running
	}
	return out
}
