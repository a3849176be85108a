package audio

import "encoding/binary"

// ApplyGain scales 16-bit little-endian PCM by volume, where volume
// is a percentage in [0, 100]. 100 returns the input unchanged and
// 0 returns pure silence of the same length. Scaled values clip at
// the int16 range.
func ApplyGain(samples []byte, volume float64) []byte {
	if volume >= 100 {
		return samples
	}
	if volume < 0 {
		volume = 0
	}

	factor := volume / 100.0
	out := make([]byte, len(samples))
	for i := 0; i+1 < len(samples); i += 2 {
		v := int16(binary.LittleEndian.Uint16(samples[i : i+2]))
		scaled := float64(v) * factor
		switch {
		case scaled > 32767:
			scaled = 32767
		case scaled < -32768:
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(out[i:i+2], uint16(int16(scaled)))
	}
	return out
}
