package wire

// ZigZagEncode maps a signed 64-bit integer to its zigzag-encoded
// unsigned representation: small magnitudes, positive or negative,
// encode compactly as varints.
func ZigZagEncode(n int64) uint64 {
	return (uint64(n) << 1) ^ uint64(n>>63)
}

// ZigZagDecode is the inverse of ZigZagEncode.
func ZigZagDecode(v uint64) int64 {
	return int64(v>>1) ^ -int64(v&1)
}
