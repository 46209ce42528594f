package ipc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/rpc"
	"net/rpc/jsonrpc"
	"os"
	"strings"
	"sync"
	"time"

	"bard/internal/catalog"
	"bard/internal/dsp"
	"bard/internal/engine"
	"bard/internal/fusion"
	"bard/internal/keyword"
	"bard/internal/logging"
	"bard/internal/media"
	"bard/internal/notifications"
	"bard/internal/session"
	"bard/internal/speaker"
)

// Deps are the collaborators the RPC service commands. Verifier and
// Extractor are optional; without them profile enrollment is refused.
type Deps struct {
	Manager   *session.Manager
	Engine    *engine.Engine
	Store     *catalog.Store
	Notifier  notifications.Service
	Logger    *slog.Logger
	Verifier  *speaker.Verifier
	Extractor speaker.EmbeddingExtractor

	LockPath string
	MusicDir string
	SfxDir   string
}

// Server exposes daemon control via JSON-RPC over a Unix domain socket.
type Server struct {
	path      string
	logger    *slog.Logger
	listener  net.Listener
	rpcServer *rpc.Server

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewServer configures the IPC server at the given socket path.
func NewServer(ctx context.Context, path string, deps Deps) (*Server, error) {
	if deps.Manager == nil || deps.Engine == nil || deps.Store == nil {
		return nil, errors.New("ipc server requires manager, engine, and store")
	}
	if deps.Notifier == nil {
		deps.Notifier = notifications.NewNop()
	}
	if deps.Logger == nil {
		deps.Logger = logging.NewNop()
	}
	logger := logging.WithComponent(deps.Logger, "ipc")

	if err := os.RemoveAll(path); err != nil {
		return nil, fmt.Errorf("remove existing socket: %w", err)
	}

	listener, err := net.Listen("unix", path)
	if err != nil {
		return nil, fmt.Errorf("listen on socket: %w", err)
	}

	serverCtx, cancel := context.WithCancel(ctx)
	rpcServer := rpc.NewServer()
	svc := &service{deps: deps, logger: logger, ctx: serverCtx}
	if err := rpcServer.RegisterName("Bard", svc); err != nil {
		cancel()
		listener.Close()
		return nil, fmt.Errorf("register rpc service: %w", err)
	}

	return &Server{
		path:      path,
		logger:    logger,
		listener:  listener,
		rpcServer: rpcServer,
		ctx:       serverCtx,
		cancel:    cancel,
	}, nil
}

// Serve starts accepting RPC connections until the context is canceled.
func (s *Server) Serve() {
	s.logger.Debug("ipc server listening", logging.String("socket", s.path))
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		for {
			conn, err := s.listener.Accept()
			if err != nil {
				select {
				case <-s.ctx.Done():
					return
				default:
				}
				s.logger.Warn("accept failed", logging.Error(err))
				continue
			}
			s.wg.Add(1)
			go func(c net.Conn) {
				defer s.wg.Done()
				s.rpcServer.ServeCodec(jsonrpc.NewServerCodec(c))
			}(conn)
		}
	}()
}

// Close stops the server and removes the socket file.
func (s *Server) Close() {
	s.cancel()
	if s.listener != nil {
		_ = s.listener.Close()
	}
	s.wg.Wait()
	if err := os.RemoveAll(s.path); err != nil {
		s.logger.Warn("failed to remove socket",
			logging.String("socket", s.path), logging.Error(err))
	}
}

type service struct {
	deps   Deps
	logger *slog.Logger
	ctx    context.Context
}

func (s *service) SessionStart(req SessionStartRequest, resp *SessionStartResponse) error {
	mode, err := parseMode(req.Mode)
	if err != nil {
		return err
	}
	sess, err := s.deps.Manager.Start(s.ctx, req.Name, mode)
	if err != nil {
		return err
	}
	resp.SessionID = sess.ID
	resp.Name = sess.Name
	resp.Mode = sess.Mode
	s.logger.Info("session started via ipc", logging.String("session_id", sess.ID))
	return nil
}

func (s *service) SessionStop(_ SessionStopRequest, resp *SessionStopResponse) error {
	if err := s.deps.Manager.Stop(s.ctx); err != nil {
		return err
	}
	resp.Stopped = true
	return nil
}

func (s *service) Status(_ StatusRequest, resp *StatusResponse) error {
	snap := s.deps.Manager.Status()
	resp.Running = true
	resp.PID = os.Getpid()
	resp.CatalogPath = s.deps.Store.Path()
	resp.LockPath = s.deps.LockPath
	resp.Active = snap.Active
	resp.Mode = string(snap.Mode)
	resp.Pipeline = string(snap.Pipeline)
	resp.Engine = string(snap.Engine)
	resp.NowPlaying = snap.NowPlaying
	resp.Detections = snap.Detections
	resp.ElapsedMS = snap.ElapsedMS
	if snap.Active {
		resp.SessionID = snap.Session.ID
		resp.SessionName = snap.Session.Name
	}
	return nil
}

func (s *service) EnginePlay(req PlayRequest, resp *PlayResponse) error {
	track, err := s.deps.Store.Track(s.ctx, req.TrackID)
	if err != nil {
		return fmt.Errorf("track %s: %w", req.TrackID, err)
	}
	if err := s.deps.Engine.PlayTrack(track); err != nil {
		return err
	}
	resp.Track = trackDTO(track)
	return nil
}

func (s *service) EngineCrossfade(req CrossfadeRequest, resp *CrossfadeResponse) error {
	track, err := s.deps.Store.Track(s.ctx, req.TrackID)
	if err != nil {
		return fmt.Errorf("track %s: %w", req.TrackID, err)
	}
	fade := s.deps.Engine.CrossfadeDefault()
	if strings.TrimSpace(req.Fade) != "" {
		fade, err = engine.ParseCrossfadeType(req.Fade)
		if err != nil {
			return err
		}
	}
	if err := s.deps.Engine.CrossfadeTo(track, fade); err != nil {
		return err
	}
	resp.Track = trackDTO(track)
	return nil
}

func (s *service) EngineSfx(req SfxRequest, resp *SfxResponse) error {
	effect, err := s.deps.Store.Effect(s.ctx, req.EffectID)
	if err != nil {
		return fmt.Errorf("effect %s: %w", req.EffectID, err)
	}
	if err := s.deps.Engine.PlaySfx(effect); err != nil {
		return err
	}
	resp.Effect = effectDTO(effect)
	return nil
}

func (s *service) EnginePause(_ EmptyRequest, resp *AckResponse) error {
	if err := s.deps.Engine.Pause(); err != nil {
		return err
	}
	resp.OK = true
	return nil
}

func (s *service) EngineResume(_ EmptyRequest, resp *AckResponse) error {
	if err := s.deps.Engine.Resume(); err != nil {
		return err
	}
	resp.OK = true
	return nil
}

func (s *service) EngineStopAll(_ EmptyRequest, resp *AckResponse) error {
	s.deps.Engine.StopAll()
	resp.OK = true
	return nil
}

func (s *service) EngineDuck(_ EmptyRequest, resp *AckResponse) error {
	s.deps.Engine.Duck()
	resp.OK = true
	return nil
}

func (s *service) EngineReleaseDuck(_ EmptyRequest, resp *AckResponse) error {
	s.deps.Engine.ReleaseDuck()
	resp.OK = true
	return nil
}

func (s *service) EngineSetVolume(req VolumeRequest, resp *VolumesResponse) error {
	value := float32(req.Value)
	switch strings.ToLower(strings.TrimSpace(req.Channel)) {
	case "master":
		s.deps.Engine.SetMasterVolume(value)
	case "music":
		s.deps.Engine.SetMusicVolume(value)
	case "sfx":
		s.deps.Engine.SetSfxVolume(value)
	default:
		return fmt.Errorf("unknown volume channel %q", req.Channel)
	}
	return s.EngineVolumes(EmptyRequest{}, resp)
}

func (s *service) EngineVolumes(_ EmptyRequest, resp *VolumesResponse) error {
	master, music, sfx := s.deps.Engine.Volumes()
	resp.Master = float64(master)
	resp.Music = float64(music)
	resp.Sfx = float64(sfx)
	resp.Ducked = s.deps.Engine.Ducked()
	return nil
}

func (s *service) EngineSetCrossfade(req CrossfadeTypeRequest, resp *AckResponse) error {
	fade, err := engine.ParseCrossfadeType(req.Type)
	if err != nil {
		return err
	}
	s.deps.Engine.SetCrossfadeType(fade)
	resp.OK = true
	return nil
}

func (s *service) TrackList(req TrackListRequest, resp *TrackListResponse) error {
	var (
		tracks []media.Track
		err    error
	)
	if strings.TrimSpace(req.Mood) != "" {
		tracks, err = s.deps.Store.TracksByMood(s.ctx, req.Mood)
	} else {
		tracks, err = s.deps.Store.Tracks(s.ctx)
	}
	if err != nil {
		return err
	}
	resp.Tracks = make([]Track, 0, len(tracks))
	for _, track := range tracks {
		resp.Tracks = append(resp.Tracks, trackDTO(track))
	}
	return nil
}

func (s *service) EffectList(req EffectListRequest, resp *EffectListResponse) error {
	var (
		effects []media.SoundEffect
		err     error
	)
	if strings.TrimSpace(req.Category) != "" {
		effects, err = s.deps.Store.EffectsByCategory(s.ctx, req.Category)
	} else {
		effects, err = s.deps.Store.Effects(s.ctx)
	}
	if err != nil {
		return err
	}
	resp.Effects = make([]Effect, 0, len(effects))
	for _, effect := range effects {
		resp.Effects = append(resp.Effects, effectDTO(effect))
	}
	return nil
}

func (s *service) Import(_ ImportRequest, resp *ImportResponse) error {
	if s.deps.MusicDir != "" {
		count, err := s.deps.Store.ImportTracks(s.ctx, s.deps.MusicDir)
		if err != nil {
			return err
		}
		resp.Tracks = count
	}
	if s.deps.SfxDir != "" {
		count, err := s.deps.Store.ImportEffects(s.ctx, s.deps.SfxDir)
		if err != nil {
			return err
		}
		resp.Effects = count
	}
	s.logger.Info("library imported",
		logging.Int("tracks", resp.Tracks), logging.Int("effects", resp.Effects))
	return nil
}

func (s *service) KeywordList(_ KeywordListRequest, resp *KeywordListResponse) error {
	keywords, err := s.deps.Store.Keywords(s.ctx)
	if err != nil {
		return err
	}
	resp.Keywords = make([]Keyword, 0, len(keywords))
	for _, kw := range keywords {
		resp.Keywords = append(resp.Keywords, Keyword{
			Word:       kw.Word,
			Category:   kw.Category,
			Mood:       kw.Mood,
			Priority:   kw.Priority,
			Variations: kw.Variations,
		})
	}
	return nil
}

func (s *service) KeywordAdd(req KeywordAddRequest, resp *AckResponse) error {
	kw := keyword.Keyword{
		Word:       req.Keyword.Word,
		Category:   req.Keyword.Category,
		Mood:       req.Keyword.Mood,
		Priority:   req.Keyword.Priority,
		Variations: req.Keyword.Variations,
	}
	if err := s.deps.Store.UpsertKeyword(s.ctx, kw); err != nil {
		return err
	}
	resp.OK = true
	return nil
}

func (s *service) KeywordRemove(req KeywordRemoveRequest, resp *KeywordRemoveResponse) error {
	removed, err := s.deps.Store.RemoveKeyword(s.ctx, req.Word)
	if err != nil {
		return err
	}
	resp.Removed = removed
	return nil
}

func (s *service) SessionList(_ SessionListRequest, resp *SessionListResponse) error {
	sessions, err := s.deps.Store.Sessions(s.ctx)
	if err != nil {
		return err
	}
	resp.Sessions = make([]SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summary := SessionSummary{
			ID:        sess.ID,
			Name:      sess.Name,
			Mode:      sess.Mode,
			StartedAt: sess.StartedAt.Format(time.RFC3339),
			Active:    sess.Active(),
		}
		if sess.EndedAt != nil {
			summary.EndedAt = sess.EndedAt.Format(time.RFC3339)
		}
		resp.Sessions = append(resp.Sessions, summary)
	}
	return nil
}

func (s *service) SessionEvents(req SessionEventsRequest, resp *SessionEventsResponse) error {
	events, err := s.deps.Store.EventsBySession(s.ctx, req.SessionID)
	if err != nil {
		return err
	}
	resp.Events = make([]DetectionEvent, 0, len(events))
	for _, event := range events {
		resp.Events = append(resp.Events, DetectionEvent{
			Kind:       event.Kind,
			Keyword:    event.Keyword,
			Category:   event.Category,
			Emotion:    event.Emotion,
			Confidence: event.Confidence,
			Transcript: event.Transcript,
			OffsetMS:   event.OffsetMS,
		})
	}
	return nil
}

func (s *service) ProfileList(_ ProfileListRequest, resp *ProfileListResponse) error {
	profiles, err := s.deps.Store.Profiles(s.ctx)
	if err != nil {
		return err
	}
	resp.Profiles = make([]Profile, 0, len(profiles))
	for _, profile := range profiles {
		resp.Profiles = append(resp.Profiles, profileDTO(profile))
	}
	return nil
}

func (s *service) ProfileEnroll(req ProfileEnrollRequest, resp *ProfileEnrollResponse) error {
	if !req.Consent {
		return errors.New("enrollment requires the speaker's consent")
	}
	if s.deps.Extractor == nil {
		return errors.New("speaker verification is not enabled")
	}

	samples, sampleRate, err := readMonoSamples(req.AudioPath)
	if err != nil {
		return err
	}
	embedding, err := s.deps.Extractor.Extract(samples, sampleRate)
	if err != nil {
		return fmt.Errorf("extract embedding: %w", err)
	}

	profile, err := s.deps.Store.SaveProfile(s.ctx, speaker.VoiceProfile{
		Name:         req.Name,
		Embedding:    embedding,
		IsDefault:    req.IsDefault,
		ConsentGiven: true,
	})
	if err != nil {
		return err
	}
	if s.deps.Verifier != nil {
		s.deps.Verifier.Enroll(profile)
	}
	resp.Profile = profileDTO(profile)
	s.logger.Info("voice profile enrolled",
		logging.String("profile_id", profile.ID), logging.String("name", profile.Name))
	return nil
}

func (s *service) ProfileRemove(req ProfileRemoveRequest, resp *ProfileRemoveResponse) error {
	removed, err := s.deps.Store.RemoveProfile(s.ctx, req.ID)
	if err != nil {
		return err
	}
	if removed && s.deps.Verifier != nil {
		s.deps.Verifier.Remove(req.ID)
	}
	resp.Removed = removed
	return nil
}

func (s *service) TestNotification(_ TestNotificationRequest, resp *TestNotificationResponse) error {
	if err := s.deps.Notifier.TestNotification(s.ctx); err != nil {
		resp.Sent = false
		resp.Message = err.Error()
		return nil
	}
	resp.Sent = true
	resp.Message = "notification sent"
	return nil
}

func parseMode(raw string) (fusion.Mode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", string(fusion.Autonomous):
		return fusion.Autonomous, nil
	case string(fusion.Collaborative):
		return fusion.Collaborative, nil
	}
	return "", fmt.Errorf("unknown session mode %q", raw)
}

func trackDTO(track media.Track) Track {
	return Track{
		ID:         track.ID,
		Name:       track.Name,
		Path:       track.Path,
		Genre:      track.Genre,
		Mood:       track.Mood,
		Loop:       track.Loop,
		DurationMS: track.Duration.Milliseconds(),
	}
}

func profileDTO(profile speaker.VoiceProfile) Profile {
	return Profile{
		ID:        profile.ID,
		Name:      profile.Name,
		IsDefault: profile.IsDefault,
		Enrolled:  profile.Enrolled.Format(time.RFC3339),
	}
}

// readMonoSamples decodes an audio file fully and downmixes to mono for
// embedding extraction.
func readMonoSamples(path string) ([]float32, int, error) {
	src, err := media.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer src.Close()

	var samples []float32
	buf := make([]float32, 4096)
	for {
		n, err := src.Read(buf)
		samples = append(samples, buf[:n]...)
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, 0, fmt.Errorf("read audio file: %w", err)
		}
	}
	if src.Channels() > 1 {
		samples = dsp.DownmixMono(samples, src.Channels())
	}
	return samples, src.SampleRate(), nil
}

func effectDTO(effect media.SoundEffect) Effect {
	return Effect{
		ID:       effect.ID,
		Name:     effect.Name,
		Path:     effect.Path,
		Category: effect.Category,
		Mood:     effect.Mood,
	}
}
