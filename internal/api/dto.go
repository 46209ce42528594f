package api

import (
	"bard/internal/pipeline"
	"bard/internal/session"
)

// envelope is the wire frame for every websocket message.
type envelope struct {
	Type    string `json:"type"`
	Time    string `json:"time"`
	Payload any    `json:"payload"`
}

// StatusDTO mirrors session.Snapshot for JSON consumers.
type StatusDTO struct {
	Active     bool   `json:"active"`
	SessionID  string `json:"session_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Mode       string `json:"mode,omitempty"`
	Pipeline   string `json:"pipeline"`
	Engine     string `json:"engine"`
	NowPlaying string `json:"now_playing,omitempty"`
	Detections int    `json:"detections"`
	ElapsedMS  int64  `json:"elapsed_ms"`
}

func statusDTO(snap session.Snapshot) StatusDTO {
	dto := StatusDTO{
		Active:     snap.Active,
		Mode:       string(snap.Mode),
		Pipeline:   string(snap.Pipeline),
		Engine:     string(snap.Engine),
		NowPlaying: snap.NowPlaying,
		Detections: snap.Detections,
		ElapsedMS:  snap.ElapsedMS,
	}
	if snap.Active {
		dto.SessionID = snap.Session.ID
		dto.Name = snap.Session.Name
	}
	return dto
}

// convert maps a session broadcast to its wire envelope. Unknown event types
// are skipped rather than leaked to clients.
func convert(event any) (envelope, bool) {
	switch e := event.(type) {
	case pipeline.VoiceStart:
		return envelope{Type: "voice_start", Payload: map[string]any{
			"timestamp_ms": e.TimestampMS,
		}}, true
	case pipeline.VoiceEnd:
		return envelope{Type: "voice_end", Payload: map[string]any{
			"start_ms": e.StartMS,
			"end_ms":   e.EndMS,
		}}, true
	case pipeline.Transcription:
		return envelope{Type: "transcription", Payload: map[string]any{
			"text":     e.Text,
			"language": e.Language,
		}}, true
	case pipeline.Keyword:
		return envelope{Type: "keyword", Payload: map[string]any{
			"word":       e.Word,
			"category":   e.Category,
			"mood":       e.Mood,
			"confidence": e.Confidence,
		}}, true
	case pipeline.Emotion:
		return envelope{Type: "emotion", Payload: map[string]any{
			"emotion":    e.Emotion,
			"confidence": e.Confidence,
		}}, true
	case pipeline.SpeakerVerified:
		return envelope{Type: "speaker_verified", Payload: map[string]any{
			"verified":   e.Verified,
			"similarity": e.Similarity,
			"speaker_id": e.SpeakerID,
		}}, true
	case pipeline.DualSignal:
		return envelope{Type: "dual_signal", Payload: map[string]any{
			"keyword":    e.Keyword,
			"emotion":    e.Emotion,
			"confidence": e.Confidence,
		}}, true
	case pipeline.Error:
		return envelope{Type: "error", Payload: map[string]any{
			"kind":    e.Kind,
			"message": e.Message,
		}}, true
	case session.Suggestion:
		return envelope{Type: "suggestion", Payload: map[string]any{
			"keyword":  e.Keyword,
			"emotion":  e.Emotion,
			"track_id": e.TrackID,
			"track":    e.Track,
		}}, true
	case session.TrackChange:
		return envelope{Type: "track_change", Payload: map[string]any{
			"track_id": e.Track.ID,
			"track":    e.Track.Name,
			"keyword":  e.Keyword,
			"emotion":  e.Emotion,
		}}, true
	}
	return envelope{}, false
}
