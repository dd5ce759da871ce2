package codec2

import "encoding/binary"

// DecodePCM converts little-endian 16-bit samples in src to dst and returns
// the number of samples written. A trailing odd byte is ignored.
func DecodePCM(dst []int16, src []byte) int {
	n := min(len(dst), len(src)/BytesPerSample)
	for i := 0; i < n; i++ {
		dst[i] = int16(binary.LittleEndian.Uint16(src[i*BytesPerSample:]))
	}
	return n
}

// EncodePCM writes samples to dst as little-endian 16-bit PCM and returns
// the number of bytes written.
func EncodePCM(dst []byte, samples []int16) int {
	n := min(len(dst)/BytesPerSample, len(samples))
	for i := 0; i < n; i++ {
		binary.LittleEndian.PutUint16(dst[i*BytesPerSample:], uint16(samples[i]))
	}
	return n * BytesPerSample
}
