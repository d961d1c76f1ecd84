package media

import (
	"fmt"
	"io"
	"time"

	mp3 "github.com/hajimehoshi/go-mp3"
)

// The decoder always emits 16-bit little-endian stereo PCM.
const pcmBytesPerSample = 4

// MP3Duration decodes an MP3 stream and reports its play length. A payload
// that does not parse as MPEG audio is an error, which makes this a usable
// integrity probe for downloaded clips (an HTML error page served with an
// audio content type fails here).
func MP3Duration(r io.Reader) (time.Duration, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return 0, fmt.Errorf("decode mp3: %w", err)
	}
	pcm := dec.Length()
	if pcm < 0 {
		// Length is unknown when the source is not seekable; drain instead.
		n, err := io.Copy(io.Discard, dec)
		if err != nil {
			return 0, fmt.Errorf("decode mp3: %w", err)
		}
		pcm = n
	}
	samples := pcm / pcmBytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(dec.SampleRate()), nil
}
