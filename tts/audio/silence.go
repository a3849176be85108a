package audio

import "time"

// Silence returns zeroed PCM lasting d at the given sample rate.
// The length is rounded down to a whole sample.
func Silence(d time.Duration, sampleRate int) []byte {
	if d <= 0 || sampleRate <= 0 {
		return nil
	}
	samples := int(d.Seconds() * float64(sampleRate))
	return make([]byte, samples*bytesPerSample)
}

// Duration reports how long the given PCM lasts at the sample rate.
func Duration(samples []byte, sampleRate int) time.Duration {
	if sampleRate <= 0 {
		return 0
	}
	n := len(samples) / bytesPerSample
	return time.Duration(float64(n) / float64(sampleRate) * float64(time.Second))
}
