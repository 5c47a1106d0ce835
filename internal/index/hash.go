package index

import "github.com/zeebo/blake3"

// HashFile returns the hex-encoded BLAKE3-256 digest of data, the content
// key incremental-index lookups are keyed on.
func HashFile(data []byte) string {
	sum := blake3.Sum256(data)
	const hexDigits = "0123456789abcdef"
	out := make([]byte, len(sum)*2)
	for i, b := range sum {
		out[i*2] = hexDigits[b>>4]
		out[i*2+1] = hexDigits[b&0x0f]
	}
	return string(out)
}
