package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"bard/internal/media"
)

const trackColumns = "id, name, path, genre, mood, loop, duration_ms"

// AddTrack inserts a track, generating an ID when the caller leaves it empty.
// Re-adding a path updates the existing row in place.
func (s *Store) AddTrack(ctx context.Context, track media.Track) (media.Track, error) {
	if strings.TrimSpace(track.Path) == "" {
		return media.Track{}, errors.New("track path is empty")
	}
	if track.ID == "" {
		track.ID = uuid.NewString()
	}
	if track.Name == "" {
		track.Name = nameFromPath(track.Path)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO tracks (id, name, path, genre, mood, loop, duration_ms, created_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (path) DO UPDATE SET
             name = excluded.name, genre = excluded.genre, mood = excluded.mood,
             loop = excluded.loop, duration_ms = excluded.duration_ms`,
		track.ID,
		track.Name,
		track.Path,
		track.Genre,
		track.Mood,
		boolToInt(track.Loop),
		track.Duration.Milliseconds(),
		timestamp(),
	)
	if err != nil {
		return media.Track{}, fmt.Errorf("insert track: %w", err)
	}
	return s.TrackByPath(ctx, track.Path)
}

// Track fetches a track by ID. A missing ID returns sql.ErrNoRows wrapped.
func (s *Store) Track(ctx context.Context, id string) (media.Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id)
	return scanTrack(row)
}

// TrackByPath fetches a track by its file path.
func (s *Store) TrackByPath(ctx context.Context, path string) (media.Track, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM tracks WHERE path = ?`, path)
	return scanTrack(row)
}

// Tracks lists all tracks ordered by name.
func (s *Store) Tracks(ctx context.Context) ([]media.Track, error) {
	return s.queryTracks(ctx, `SELECT `+trackColumns+` FROM tracks ORDER BY name`)
}

// TracksByMood lists tracks matching a mood, case-insensitively.
func (s *Store) TracksByMood(ctx context.Context, mood string) ([]media.Track, error) {
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE mood = ? COLLATE NOCASE ORDER BY name`,
		strings.ToLower(strings.TrimSpace(mood)))
}

// TracksByGenre lists tracks matching a genre, case-insensitively.
func (s *Store) TracksByGenre(ctx context.Context, genre string) ([]media.Track, error) {
	return s.queryTracks(ctx,
		`SELECT `+trackColumns+` FROM tracks WHERE genre = ? COLLATE NOCASE ORDER BY name`,
		strings.ToLower(strings.TrimSpace(genre)))
}

// RemoveTrack deletes a track by ID and reports whether a row was removed.
func (s *Store) RemoveTrack(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete track: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ImportTracks walks dir for playable audio files and upserts each as a
// track. Files directly under a subdirectory inherit it as their mood, so a
// layout like music/combat/drums.mp3 tags itself. Returns the number of
// files imported.
func (s *Store) ImportTracks(ctx context.Context, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !playableExt(path) {
			return nil
		}

		track := media.Track{
			Name: nameFromPath(path),
			Path: path,
			Mood: moodFromLayout(dir, path),
			Loop: true,
		}
		if _, err := s.AddTrack(ctx, track); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("import tracks: %w", err)
	}
	return count, nil
}

func (s *Store) queryTracks(ctx context.Context, query string, args ...any) ([]media.Track, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query tracks: %w", err)
	}
	defer rows.Close()

	var tracks []media.Track
	for rows.Next() {
		track, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, track)
	}
	return tracks, rows.Err()
}

func scanTrack(scanner interface{ Scan(dest ...any) error }) (media.Track, error) {
	var (
		track      media.Track
		loop       int
		durationMS int64
	)
	if err := scanner.Scan(&track.ID, &track.Name, &track.Path, &track.Genre, &track.Mood, &loop, &durationMS); err != nil {
		return media.Track{}, fmt.Errorf("scan track: %w", err)
	}
	track.Loop = loop != 0
	track.Duration = time.Duration(durationMS) * time.Millisecond
	return track, nil
}

func playableExt(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mp3", ".wav":
		return true
	}
	return false
}

func nameFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// moodFromLayout reads the first path element under root as the mood tag.
// Files at the root itself stay untagged.
func moodFromLayout(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return ""
	}
	parts := strings.Split(filepath.ToSlash(rel), "/")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(parts[0])
}
