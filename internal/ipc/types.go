package ipc

// SessionStartRequest opens a new session.
type SessionStartRequest struct {
	Name string `json:"name"`
	Mode string `json:"mode"`
}

// SessionStartResponse confirms the created session.
type SessionStartResponse struct {
	SessionID string `json:"session_id"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
}

// SessionStopRequest ends the active session.
type SessionStopRequest struct{}

// SessionStopResponse reports the stop outcome.
type SessionStopResponse struct {
	Stopped bool `json:"stopped"`
}

// StatusRequest asks for daemon status.
type StatusRequest struct{}

// StatusResponse mirrors the session snapshot plus daemon paths.
type StatusResponse struct {
	Running     bool   `json:"running"`
	PID         int    `json:"pid"`
	CatalogPath string `json:"catalog_path"`
	LockPath    string `json:"lock_path"`
	Active      bool   `json:"active"`
	SessionID   string `json:"session_id"`
	SessionName string `json:"session_name"`
	Mode        string `json:"mode"`
	Pipeline    string `json:"pipeline"`
	Engine      string `json:"engine"`
	NowPlaying  string `json:"now_playing"`
	Detections  int    `json:"detections"`
	ElapsedMS   int64  `json:"elapsed_ms"`
}

// Track is the wire form of a music library entry.
type Track struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Path       string `json:"path"`
	Genre      string `json:"genre"`
	Mood       string `json:"mood"`
	Loop       bool   `json:"loop"`
	DurationMS int64  `json:"duration_ms"`
}

// Effect is the wire form of a sound effect entry.
type Effect struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Path     string `json:"path"`
	Category string `json:"category"`
	Mood     string `json:"mood"`
}

// Keyword is the wire form of a trigger word.
type Keyword struct {
	Word       string   `json:"word"`
	Category   string   `json:"category"`
	Mood       string   `json:"mood"`
	Priority   int      `json:"priority"`
	Variations []string `json:"variations"`
}

// SessionSummary is the wire form of a recorded session.
type SessionSummary struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Mode      string `json:"mode"`
	StartedAt string `json:"started_at"`
	EndedAt   string `json:"ended_at"`
	Active    bool   `json:"active"`
}

// DetectionEvent is the wire form of one recorded detection.
type DetectionEvent struct {
	Kind       string  `json:"kind"`
	Keyword    string  `json:"keyword"`
	Category   string  `json:"category"`
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Transcript string  `json:"transcript"`
	OffsetMS   uint64  `json:"offset_ms"`
}

// PlayRequest starts a track immediately.
type PlayRequest struct {
	TrackID string `json:"track_id"`
}

// PlayResponse reports the playing track.
type PlayResponse struct {
	Track Track `json:"track"`
}

// CrossfadeRequest transitions to a track with a named fade. An empty fade
// uses the engine default.
type CrossfadeRequest struct {
	TrackID string `json:"track_id"`
	Fade    string `json:"fade"`
}

// CrossfadeResponse reports the incoming track.
type CrossfadeResponse struct {
	Track Track `json:"track"`
}

// SfxRequest layers a one-shot effect.
type SfxRequest struct {
	EffectID string `json:"effect_id"`
}

// SfxResponse reports the played effect.
type SfxResponse struct {
	Effect Effect `json:"effect"`
}

// EmptyRequest is the argument for parameterless commands.
type EmptyRequest struct{}

// AckResponse acknowledges a command with no payload.
type AckResponse struct {
	OK bool `json:"ok"`
}

// VolumeRequest sets one volume channel: master, music, or sfx.
type VolumeRequest struct {
	Channel string  `json:"channel"`
	Value   float64 `json:"value"`
}

// VolumesResponse reports the current mix.
type VolumesResponse struct {
	Master float64 `json:"master"`
	Music  float64 `json:"music"`
	Sfx    float64 `json:"sfx"`
	Ducked bool    `json:"ducked"`
}

// CrossfadeTypeRequest sets the default crossfade.
type CrossfadeTypeRequest struct {
	Type string `json:"type"`
}

// TrackListRequest filters tracks by mood when set.
type TrackListRequest struct {
	Mood string `json:"mood"`
}

// TrackListResponse lists tracks.
type TrackListResponse struct {
	Tracks []Track `json:"tracks"`
}

// EffectListRequest filters effects by category when set.
type EffectListRequest struct {
	Category string `json:"category"`
}

// EffectListResponse lists effects.
type EffectListResponse struct {
	Effects []Effect `json:"effects"`
}

// ImportRequest rescans the music and sfx directories into the catalog.
type ImportRequest struct{}

// ImportResponse reports how many files were catalogued.
type ImportResponse struct {
	Tracks  int `json:"tracks"`
	Effects int `json:"effects"`
}

// KeywordListRequest lists the trigger vocabulary.
type KeywordListRequest struct{}

// KeywordListResponse lists trigger words.
type KeywordListResponse struct {
	Keywords []Keyword `json:"keywords"`
}

// KeywordAddRequest upserts a trigger word.
type KeywordAddRequest struct {
	Keyword Keyword `json:"keyword"`
}

// KeywordRemoveRequest removes a trigger word.
type KeywordRemoveRequest struct {
	Word string `json:"word"`
}

// KeywordRemoveResponse reports whether the word existed.
type KeywordRemoveResponse struct {
	Removed bool `json:"removed"`
}

// SessionListRequest lists recorded sessions.
type SessionListRequest struct{}

// SessionListResponse lists recorded sessions newest first.
type SessionListResponse struct {
	Sessions []SessionSummary `json:"sessions"`
}

// SessionEventsRequest lists detections for one session.
type SessionEventsRequest struct {
	SessionID string `json:"session_id"`
}

// SessionEventsResponse lists detections in order.
type SessionEventsResponse struct {
	Events []DetectionEvent `json:"events"`
}

// Profile is the wire form of an enrolled voice profile. The embedding never
// crosses the socket.
type Profile struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsDefault bool   `json:"is_default"`
	Enrolled  string `json:"enrolled"`
}

// ProfileListRequest lists enrolled voice profiles.
type ProfileListRequest struct{}

// ProfileListResponse lists enrolled voice profiles.
type ProfileListResponse struct {
	Profiles []Profile `json:"profiles"`
}

// ProfileEnrollRequest enrolls a speaker from a recorded audio file. Consent
// must be stated explicitly or the daemon refuses the profile.
type ProfileEnrollRequest struct {
	Name      string `json:"name"`
	AudioPath string `json:"audio_path"`
	IsDefault bool   `json:"is_default"`
	Consent   bool   `json:"consent"`
}

// ProfileEnrollResponse confirms the stored profile.
type ProfileEnrollResponse struct {
	Profile Profile `json:"profile"`
}

// ProfileRemoveRequest deletes an enrolled profile and its embedding.
type ProfileRemoveRequest struct {
	ID string `json:"id"`
}

// ProfileRemoveResponse reports whether the profile existed.
type ProfileRemoveResponse struct {
	Removed bool `json:"removed"`
}

// TestNotificationRequest triggers a notification test.
type TestNotificationRequest struct{}

// TestNotificationResponse reports the test outcome.
type TestNotificationResponse struct {
	Sent    bool   `json:"sent"`
	Message string `json:"message"`
}
