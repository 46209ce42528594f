package media

import (
	"encoding/binary"
	"io"
	"os"

	mp3 "github.com/hajimehoshi/go-mp3"

	"bard/internal/faults"
)

// mp3Source streams a go-mp3 decode. The decoder always yields 16-bit
// little-endian stereo PCM regardless of the file's channel layout.
type mp3Source struct {
	file    *os.File
	decoder *mp3.Decoder
}

// OpenMP3 opens an MP3 file as a Source.
func OpenMP3(path string) (Source, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	decoder, err := mp3.NewDecoder(f)
	if err != nil {
		f.Close()
		return nil, faults.Wrap(faults.ErrData, "media", "decode", "invalid mp3", err)
	}
	return &mp3Source{file: f, decoder: decoder}, nil
}

func (s *mp3Source) SampleRate() int { return s.decoder.SampleRate() }
func (s *mp3Source) Channels() int   { return 2 }

func (s *mp3Source) Read(out []float32) (int, error) {
	if len(out) == 0 {
		return 0, nil
	}
	buf := make([]byte, len(out)*2)
	n, err := io.ReadFull(s.decoder, buf)
	if n == 0 {
		if err == io.ErrUnexpectedEOF {
			err = io.EOF
		}
		return 0, err
	}
	samples := n / 2
	for i := 0; i < samples; i++ {
		raw := int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
		out[i] = float32(raw) / 32768
	}
	return samples, nil
}

func (s *mp3Source) Close() error { return s.file.Close() }
