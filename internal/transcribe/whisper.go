package transcribe

import (
	"context"
	"os"
	"strings"

	sherpa "github.com/k2-fsa/sherpa-onnx-go/sherpa_onnx"
	"golang.org/x/text/language"

	"bard/internal/faults"
)

// WhisperConfig locates the speech model files.
type WhisperConfig struct {
	EncoderPath string
	DecoderPath string
	TokensPath  string
	Language    string
	NumThreads  int
}

// Whisper transcribes segments with a whisper-family ONNX model through
// sherpa-onnx. Not safe for concurrent Transcribe calls; the pipeline's
// segment worker is the only caller.
type Whisper struct {
	recognizer *sherpa.OfflineRecognizer
	language   string
}

// NewWhisper loads the encoder, decoder and token table. The language tag is
// validated with BCP 47 parsing but passed to the model in its two-letter
// form.
func NewWhisper(cfg WhisperConfig) (*Whisper, error) {
	for _, path := range []string{cfg.EncoderPath, cfg.DecoderPath, cfg.TokensPath} {
		if _, err := os.Stat(path); err != nil {
			return nil, faults.Wrap(faults.ErrModel, "transcribe", "load", "model file not found", err)
		}
	}

	lang := strings.TrimSpace(cfg.Language)
	if lang != "" {
		tag, err := language.Parse(lang)
		if err != nil {
			return nil, faults.Wrap(faults.ErrData, "transcribe", "load", "invalid language tag", err)
		}
		base, _ := tag.Base()
		lang = base.String()
	}

	threads := cfg.NumThreads
	if threads <= 0 {
		threads = 2
	}

	config := sherpa.OfflineRecognizerConfig{}
	config.ModelConfig.Whisper.Encoder = cfg.EncoderPath
	config.ModelConfig.Whisper.Decoder = cfg.DecoderPath
	config.ModelConfig.Whisper.Language = lang
	config.ModelConfig.Whisper.Task = "transcribe"
	config.ModelConfig.Tokens = cfg.TokensPath
	config.ModelConfig.NumThreads = threads
	config.ModelConfig.Provider = "cpu"

	recognizer := sherpa.NewOfflineRecognizer(&config)
	if recognizer == nil {
		return nil, faults.Wrap(faults.ErrModel, "transcribe", "load", "recognizer init failed", nil)
	}
	return &Whisper{recognizer: recognizer, language: lang}, nil
}

// Transcribe decodes one segment. The context is checked before the decode
// starts; sherpa offers no mid-decode cancellation.
func (w *Whisper) Transcribe(ctx context.Context, samples []float32, sampleRate int) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if len(samples) == 0 {
		return Result{}, faults.Wrap(faults.ErrData, "transcribe", "decode", "empty segment", nil)
	}

	stream := sherpa.NewOfflineStream(w.recognizer)
	defer sherpa.DeleteOfflineStream(stream)

	stream.AcceptWaveform(sampleRate, samples)
	w.recognizer.Decode(stream)

	text := strings.TrimSpace(stream.GetResult().Text)
	return Result{Text: text, Language: w.language, Confidence: 1.0}, nil
}

// Close releases the model.
func (w *Whisper) Close() {
	if w.recognizer != nil {
		sherpa.DeleteOfflineRecognizer(w.recognizer)
		w.recognizer = nil
	}
}
