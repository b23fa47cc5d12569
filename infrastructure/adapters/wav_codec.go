package adapters

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"doc-narrator-api/application/ports/outbound"
	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

type wavCodec struct{}

// NewWavCodec returns the mono 16-bit WAV encoder used to persist the
// concatenated synthesis output.
func NewWavCodec() outbound.AudioEncoderPort {
	return &wavCodec{}
}

func (c *wavCodec) EncodeWAV(samples []int, sampleRate int) (io.Reader, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	var sink writeSeekBuffer
	encoder := wav.NewEncoder(&sink, sampleRate, 16, 1, 1)

	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: 1,
			SampleRate:  sampleRate,
		},
		Data:           samples,
		SourceBitDepth: 16,
	}

	if err := encoder.Write(buf); err != nil {
		return nil, err
	}
	if err := encoder.Close(); err != nil {
		return nil, err
	}

	return bytes.NewReader(sink.data), nil
}

// decodeWAV pulls the PCM samples and sample rate out of a WAV payload.
func decodeWAV(payload []byte) ([]int, int, error) {
	decoder := wav.NewDecoder(bytes.NewReader(payload))
	if !decoder.IsValidFile() {
		return nil, 0, errors.New("payload is not a valid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, 0, err
	}

	return buf.Data, buf.Format.SampleRate, nil
}

// writeSeekBuffer is an in-memory io.WriteSeeker; the WAV encoder needs to
// seek back and patch chunk sizes once it knows them.
type writeSeekBuffer struct {
	data []byte
	pos  int
}

func (b *writeSeekBuffer) Write(p []byte) (int, error) {
	if need := b.pos + len(p); need > len(b.data) {
		grown := make([]byte, need)
		copy(grown, b.data)
		b.data = grown
	}
	copy(b.data[b.pos:], p)
	b.pos += len(p)
	return len(p), nil
}

func (b *writeSeekBuffer) Seek(offset int64, whence int) (int64, error) {
	var next int
	switch whence {
	case io.SeekStart:
		next = int(offset)
	case io.SeekCurrent:
		next = b.pos + int(offset)
	case io.SeekEnd:
		next = len(b.data) + int(offset)
	default:
		return 0, errors.New("invalid whence")
	}
	if next < 0 {
		return 0, errors.New("negative seek position")
	}
	b.pos = next
	return int64(next), nil
}
