// Package audio handles PCM post-processing and WAV encoding for
// synthesized speech. All audio is 16-bit little-endian mono.
package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// BitsPerSample of all synthesized audio.
	BitsPerSample = 16
	// Channels of all synthesized audio.
	Channels = 1

	bytesPerSample = BitsPerSample / 8
	wavHeaderSize  = 44
)

// WriteWAV writes PCM samples as a RIFF/WAVE file.
func WriteWAV(w io.Writer, samples []byte, sampleRate int) error {
	if sampleRate <= 0 {
		return errors.New("invalid sample rate")
	}

	byteRate := sampleRate * Channels * bytesPerSample
	blockAlign := Channels * bytesPerSample
	dataSize := len(samples)

	var header [wavHeaderSize]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], Channels)
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], BitsPerSample)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))

	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	_, err := w.Write(samples)
	return err
}

// ReadWAV parses a RIFF/WAVE file and returns its PCM samples and
// sample rate. Only 16-bit mono PCM is accepted.
func ReadWAV(r io.Reader) ([]byte, int, error) {
	var header [wavHeaderSize]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, 0, fmt.Errorf("short wav header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, 0, errors.New("not a wav file")
	}
	if format := binary.LittleEndian.Uint16(header[20:22]); format != 1 {
		return nil, 0, fmt.Errorf("unsupported wav format %d", format)
	}
	if ch := binary.LittleEndian.Uint16(header[22:24]); ch != Channels {
		return nil, 0, fmt.Errorf("unsupported channel count %d", ch)
	}
	if bits := binary.LittleEndian.Uint16(header[34:36]); bits != BitsPerSample {
		return nil, 0, fmt.Errorf("unsupported bit depth %d", bits)
	}

	sampleRate := int(binary.LittleEndian.Uint32(header[24:28]))
	dataSize := binary.LittleEndian.Uint32(header[40:44])

	samples := make([]byte, dataSize)
	if _, err := io.ReadFull(r, samples); err != nil {
		return nil, 0, fmt.Errorf("short wav data: %w", err)
	}
	return samples, sampleRate, nil
}
