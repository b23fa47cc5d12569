package outbound

import "io"

// AudioEncoderPort encodes concatenated PCM samples into a playable
// container for persistence.
type AudioEncoderPort interface {
	EncodeWAV(samples []int, sampleRate int) (io.Reader, error)
}
