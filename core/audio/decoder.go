package audio

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
)

// Buffer holds a fully decoded track as planar float64 samples in [-1, 1].
type Buffer struct {
	Samples    [][]float64 // One slice per channel
	SampleRate int
}

// Frames returns the number of frames per channel.
func (b *Buffer) Frames() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}

// Channels returns the channel count.
func (b *Buffer) Channels() int {
	return len(b.Samples)
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Decoder turns an encoded audio stream into a Buffer. Decode reads the
// whole stream before returning; there is no incremental mode.
type Decoder interface {
	Decode(ctx context.Context, r io.Reader) (*Buffer, error)
}

// ErrUnsupportedFormat is returned for streams the decoder cannot parse.
var ErrUnsupportedFormat = errors.New("audio: unsupported format")

// PCMDecoder decodes RIFF/WAVE streams carrying 16-bit integer or 32-bit
// float PCM.
type PCMDecoder struct{}

// NewPCMDecoder returns a WAV decoder.
func NewPCMDecoder() *PCMDecoder {
	return &PCMDecoder{}
}

const (
	waveFormatPCM   = 1
	waveFormatFloat = 3
)

// Decode parses the RIFF container, locates the fmt and data chunks, and
// converts the payload to planar float64.
func (d *PCMDecoder) Decode(ctx context.Context, r io.Reader) (*Buffer, error) {
	var header [12]byte
	if _, err := io.ReadFull(r, header[:]); err != nil {
		return nil, fmt.Errorf("read riff header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, ErrUnsupportedFormat
	}

	var (
		format     uint16
		channels   uint16
		sampleRate uint32
		bitDepth   uint16
		haveFmt    bool
	)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var chunk [8]byte
		if _, err := io.ReadFull(r, chunk[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil, fmt.Errorf("no data chunk: %w", ErrUnsupportedFormat)
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}
		id := string(chunk[0:4])
		size := binary.LittleEndian.Uint32(chunk[4:8])

		switch id {
		case "fmt ":
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			if size < 16 {
				return nil, ErrUnsupportedFormat
			}
			format = binary.LittleEndian.Uint16(body[0:2])
			channels = binary.LittleEndian.Uint16(body[2:4])
			sampleRate = binary.LittleEndian.Uint32(body[4:8])
			bitDepth = binary.LittleEndian.Uint16(body[14:16])
			haveFmt = true
		case "data":
			if !haveFmt {
				return nil, fmt.Errorf("data chunk before fmt: %w", ErrUnsupportedFormat)
			}
			body := make([]byte, size)
			if _, err := io.ReadFull(r, body); err != nil {
				return nil, fmt.Errorf("read data chunk: %w", err)
			}
			return decodePCM(body, format, int(channels), int(sampleRate), int(bitDepth))
		default:
			// Skip chunks we do not care about (LIST, fact, ...).
			if _, err := io.CopyN(io.Discard, r, int64(size)); err != nil {
				return nil, fmt.Errorf("skip %q chunk: %w", id, err)
			}
		}
		// Chunks are word-aligned.
		if size%2 == 1 {
			if _, err := io.CopyN(io.Discard, r, 1); err != nil && !errors.Is(err, io.EOF) {
				return nil, err
			}
		}
	}
}

func decodePCM(body []byte, format uint16, channels, sampleRate, bitDepth int) (*Buffer, error) {
	if channels < 1 || sampleRate < 1 {
		return nil, ErrUnsupportedFormat
	}

	var bytesPer int
	switch {
	case format == waveFormatPCM && bitDepth == 16:
		bytesPer = 2
	case format == waveFormatFloat && bitDepth == 32:
		bytesPer = 4
	default:
		return nil, fmt.Errorf("format %d with %d-bit samples: %w", format, bitDepth, ErrUnsupportedFormat)
	}

	frames := len(body) / (bytesPer * channels)
	samples := make([][]float64, channels)
	for ch := range samples {
		samples[ch] = make([]float64, frames)
	}

	for i := 0; i < frames; i++ {
		for ch := 0; ch < channels; ch++ {
			off := (i*channels + ch) * bytesPer
			switch bytesPer {
			case 2:
				v := int16(binary.LittleEndian.Uint16(body[off : off+2]))
				samples[ch][i] = float64(v) / 32768.0
			case 4:
				bits := binary.LittleEndian.Uint32(body[off : off+4])
				samples[ch][i] = float64(math.Float32frombits(bits))
			}
		}
	}

	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}
