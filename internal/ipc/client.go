package ipc

import (
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"time"
)

// Client provides RPC access to the daemon.
type Client struct {
	conn   net.Conn
	client *rpc.Client
}

// Dial connects to the IPC server at the given socket path.
func Dial(path string) (*Client, error) {
	conn, err := net.DialTimeout("unix", path, 2*time.Second)
	if err != nil {
		return nil, err
	}
	rpcClient := rpc.NewClientWithCodec(jsonrpc.NewClientCodec(conn))
	return &Client{conn: conn, client: rpcClient}, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	if c.client != nil {
		_ = c.client.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// SessionStart opens a new session.
func (c *Client) SessionStart(name, mode string) (*SessionStartResponse, error) {
	var resp SessionStartResponse
	if err := c.client.Call("Bard.SessionStart", SessionStartRequest{Name: name, Mode: mode}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionStop ends the active session.
func (c *Client) SessionStop() (*SessionStopResponse, error) {
	var resp SessionStopResponse
	if err := c.client.Call("Bard.SessionStop", SessionStopRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Status retrieves the daemon status.
func (c *Client) Status() (*StatusResponse, error) {
	var resp StatusResponse
	if err := c.client.Call("Bard.Status", StatusRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnginePlay starts a catalogued track immediately.
func (c *Client) EnginePlay(trackID string) (*PlayResponse, error) {
	var resp PlayResponse
	if err := c.client.Call("Bard.EnginePlay", PlayRequest{TrackID: trackID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineCrossfade transitions to a catalogued track.
func (c *Client) EngineCrossfade(trackID, fade string) (*CrossfadeResponse, error) {
	var resp CrossfadeResponse
	if err := c.client.Call("Bard.EngineCrossfade", CrossfadeRequest{TrackID: trackID, Fade: fade}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineSfx layers a catalogued sound effect.
func (c *Client) EngineSfx(effectID string) (*SfxResponse, error) {
	var resp SfxResponse
	if err := c.client.Call("Bard.EngineSfx", SfxRequest{EffectID: effectID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EnginePause pauses music playback.
func (c *Client) EnginePause() (*AckResponse, error) {
	var resp AckResponse
	if err := c.client.Call("Bard.EnginePause", EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineResume resumes paused playback.
func (c *Client) EngineResume() (*AckResponse, error) {
	var resp AckResponse
	if err := c.client.Call("Bard.EngineResume", EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineStopAll stops music and all layered effects.
func (c *Client) EngineStopAll() (*AckResponse, error) {
	var resp AckResponse
	if err := c.client.Call("Bard.EngineStopAll", EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineDuck lowers music for table talk.
func (c *Client) EngineDuck() (*AckResponse, error) {
	var resp AckResponse
	if err := c.client.Call("Bard.EngineDuck", EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineReleaseDuck restores music volume.
func (c *Client) EngineReleaseDuck() (*AckResponse, error) {
	var resp AckResponse
	if err := c.client.Call("Bard.EngineReleaseDuck", EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineSetVolume sets one volume channel and returns the resulting mix.
func (c *Client) EngineSetVolume(channel string, value float64) (*VolumesResponse, error) {
	var resp VolumesResponse
	if err := c.client.Call("Bard.EngineSetVolume", VolumeRequest{Channel: channel, Value: value}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineVolumes returns the current mix.
func (c *Client) EngineVolumes() (*VolumesResponse, error) {
	var resp VolumesResponse
	if err := c.client.Call("Bard.EngineVolumes", EmptyRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EngineSetCrossfade sets the default crossfade type.
func (c *Client) EngineSetCrossfade(fade string) (*AckResponse, error) {
	var resp AckResponse
	if err := c.client.Call("Bard.EngineSetCrossfade", CrossfadeTypeRequest{Type: fade}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TrackList returns catalogued tracks, optionally filtered by mood.
func (c *Client) TrackList(mood string) (*TrackListResponse, error) {
	var resp TrackListResponse
	if err := c.client.Call("Bard.TrackList", TrackListRequest{Mood: mood}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// EffectList returns catalogued effects, optionally filtered by category.
func (c *Client) EffectList(category string) (*EffectListResponse, error) {
	var resp EffectListResponse
	if err := c.client.Call("Bard.EffectList", EffectListRequest{Category: category}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Import rescans the configured library directories.
func (c *Client) Import() (*ImportResponse, error) {
	var resp ImportResponse
	if err := c.client.Call("Bard.Import", ImportRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// KeywordList returns the trigger vocabulary.
func (c *Client) KeywordList() (*KeywordListResponse, error) {
	var resp KeywordListResponse
	if err := c.client.Call("Bard.KeywordList", KeywordListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// KeywordAdd upserts a trigger word.
func (c *Client) KeywordAdd(kw Keyword) (*AckResponse, error) {
	var resp AckResponse
	if err := c.client.Call("Bard.KeywordAdd", KeywordAddRequest{Keyword: kw}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// KeywordRemove removes a trigger word.
func (c *Client) KeywordRemove(word string) (*KeywordRemoveResponse, error) {
	var resp KeywordRemoveResponse
	if err := c.client.Call("Bard.KeywordRemove", KeywordRemoveRequest{Word: word}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionList returns recorded sessions newest first.
func (c *Client) SessionList() (*SessionListResponse, error) {
	var resp SessionListResponse
	if err := c.client.Call("Bard.SessionList", SessionListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// SessionEvents returns detections recorded for one session.
func (c *Client) SessionEvents(sessionID string) (*SessionEventsResponse, error) {
	var resp SessionEventsResponse
	if err := c.client.Call("Bard.SessionEvents", SessionEventsRequest{SessionID: sessionID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProfileList returns enrolled voice profiles.
func (c *Client) ProfileList() (*ProfileListResponse, error) {
	var resp ProfileListResponse
	if err := c.client.Call("Bard.ProfileList", ProfileListRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProfileEnroll enrolls a speaker from a recorded audio file.
func (c *Client) ProfileEnroll(req ProfileEnrollRequest) (*ProfileEnrollResponse, error) {
	var resp ProfileEnrollResponse
	if err := c.client.Call("Bard.ProfileEnroll", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ProfileRemove deletes an enrolled voice profile.
func (c *Client) ProfileRemove(id string) (*ProfileRemoveResponse, error) {
	var resp ProfileRemoveResponse
	if err := c.client.Call("Bard.ProfileRemove", ProfileRemoveRequest{ID: id}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// TestNotification triggers a notification test via the daemon.
func (c *Client) TestNotification() (*TestNotificationResponse, error) {
	var resp TestNotificationResponse
	if err := c.client.Call("Bard.TestNotification", TestNotificationRequest{}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
