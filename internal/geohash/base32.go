// Package geohash is a small, self-contained geohash/base32 utility. It is
// not part of the routing core's hard engineering; it is carried along as a
// trivial, testable helper.
package geohash

import "strings"

const alphabet = "0123456789bcdefghjkmnpqrstuvwxyz"

// Encode renders the low precision*5 bits of val as a base32 geohash
// string, most-significant group first.
func Encode(val uint64, precision int) string {
	var sb strings.Builder
	totalBits := precision * 5
	for i := 0; i < precision; i++ {
		shift := totalBits - (i+1)*5
		idx := (val >> uint(shift)) & 0x1F
		sb.WriteByte(alphabet[idx])
	}
	return sb.String()
}

// decodeChr returns the 5-bit value of one base32 geohash character.
func decodeChr(c byte) uint64 {
	return uint64(strings.IndexByte(alphabet, c))
}

// Decode reverses Encode, reconstructing the packed bit value.
func Decode(s string) uint64 {
	var val uint64
	for i := 0; i < len(s); i++ {
		val = (val << 5) | decodeChr(s[i])
	}
	return val
}
