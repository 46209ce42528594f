package media

import (
	"encoding/binary"
	"io"
	"os"

	"bard/internal/faults"
)

// wavSource streams 16-bit PCM out of a RIFF/WAVE file.
type wavSource struct {
	file       *os.File
	sampleRate int
	channels   int
	remaining  uint32
}

// OpenWAV opens a PCM wav file as a Source. Only 16-bit integer PCM is
// supported; compressed and float encodings are rejected.
func OpenWAV(path string) (Source, error) {
	f, err := openFile(path)
	if err != nil {
		return nil, err
	}
	src, err := parseWAV(f)
	if err != nil {
		f.Close()
		return nil, faults.Wrap(faults.ErrData, "media", "decode", "invalid wav", err)
	}
	return src, nil
}

func parseWAV(f *os.File) (*wavSource, error) {
	var riff [12]byte
	if _, err := io.ReadFull(f, riff[:]); err != nil {
		return nil, err
	}
	if string(riff[0:4]) != "RIFF" || string(riff[8:12]) != "WAVE" {
		return nil, io.ErrUnexpectedEOF
	}

	src := &wavSource{file: f}
	for {
		var header [8]byte
		if _, err := io.ReadFull(f, header[:]); err != nil {
			return nil, err
		}
		chunkID := string(header[0:4])
		size := binary.LittleEndian.Uint32(header[4:8])

		switch chunkID {
		case "fmt ":
			var fmtChunk [16]byte
			if _, err := io.ReadFull(f, fmtChunk[:]); err != nil {
				return nil, err
			}
			format := binary.LittleEndian.Uint16(fmtChunk[0:2])
			bits := binary.LittleEndian.Uint16(fmtChunk[14:16])
			if format != 1 || bits != 16 {
				return nil, faults.Wrap(faults.ErrData, "media", "decode", "only 16-bit PCM wav supported", nil)
			}
			src.channels = int(binary.LittleEndian.Uint16(fmtChunk[2:4]))
			src.sampleRate = int(binary.LittleEndian.Uint32(fmtChunk[4:8]))
			if size > 16 {
				if _, err := f.Seek(int64(size-16), io.SeekCurrent); err != nil {
					return nil, err
				}
			}
		case "data":
			if src.sampleRate == 0 {
				return nil, io.ErrUnexpectedEOF
			}
			src.remaining = size
			return src, nil
		default:
			// Skip LIST, fact and any other metadata chunks. Chunks are
			// word-aligned.
			skip := int64(size)
			if size%2 == 1 {
				skip++
			}
			if _, err := f.Seek(skip, io.SeekCurrent); err != nil {
				return nil, err
			}
		}
	}
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }

func (s *wavSource) Read(out []float32) (int, error) {
	if s.remaining == 0 {
		return 0, io.EOF
	}
	want := len(out) * 2
	if uint32(want) > s.remaining {
		want = int(s.remaining)
	}
	if want < 2 {
		s.remaining = 0
		return 0, io.EOF
	}

	buf := make([]byte, want)
	n, err := io.ReadFull(s.file, buf)
	s.remaining -= uint32(n)
	samples := n / 2
	for i := 0; i < samples; i++ {
		raw := int16(binary.LittleEndian.Uint16(buf[i*2 : i*2+2]))
		out[i] = float32(raw) / 32768
	}
	if err != nil {
		s.remaining = 0
		if samples > 0 {
			return samples, nil
		}
		return 0, io.EOF
	}
	return samples, nil
}

func (s *wavSource) Close() error { return s.file.Close() }
