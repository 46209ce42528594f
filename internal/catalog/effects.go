package catalog

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"bard/internal/media"
)

const effectColumns = "id, name, path, category, mood"

// AddEffect inserts a sound effect, generating an ID when the caller leaves
// it empty. Re-adding a path updates the existing row.
func (s *Store) AddEffect(ctx context.Context, effect media.SoundEffect) (media.SoundEffect, error) {
	if strings.TrimSpace(effect.Path) == "" {
		return media.SoundEffect{}, errors.New("effect path is empty")
	}
	if effect.ID == "" {
		effect.ID = uuid.NewString()
	}
	if effect.Name == "" {
		effect.Name = nameFromPath(effect.Path)
	}

	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO sound_effects (id, name, path, category, mood, created_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (path) DO UPDATE SET
             name = excluded.name, category = excluded.category, mood = excluded.mood`,
		effect.ID,
		effect.Name,
		effect.Path,
		effect.Category,
		effect.Mood,
		timestamp(),
	)
	if err != nil {
		return media.SoundEffect{}, fmt.Errorf("insert effect: %w", err)
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+effectColumns+` FROM sound_effects WHERE path = ?`, effect.Path)
	return scanEffect(row)
}

// Effect fetches a sound effect by ID.
func (s *Store) Effect(ctx context.Context, id string) (media.SoundEffect, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+effectColumns+` FROM sound_effects WHERE id = ?`, id)
	return scanEffect(row)
}

// Effects lists all sound effects ordered by name.
func (s *Store) Effects(ctx context.Context) ([]media.SoundEffect, error) {
	return s.queryEffects(ctx, `SELECT `+effectColumns+` FROM sound_effects ORDER BY name`)
}

// EffectsByCategory lists effects matching a category, case-insensitively.
func (s *Store) EffectsByCategory(ctx context.Context, category string) ([]media.SoundEffect, error) {
	return s.queryEffects(ctx,
		`SELECT `+effectColumns+` FROM sound_effects WHERE category = ? COLLATE NOCASE ORDER BY name`,
		strings.ToLower(strings.TrimSpace(category)))
}

// RemoveEffect deletes an effect by ID and reports whether a row was removed.
func (s *Store) RemoveEffect(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM sound_effects WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete effect: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ImportEffects walks dir for playable audio files and upserts each as an
// effect, inheriting the first subdirectory as its category.
func (s *Store) ImportEffects(ctx context.Context, dir string) (int, error) {
	count := 0
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !playableExt(path) {
			return nil
		}

		effect := media.SoundEffect{
			Name:     nameFromPath(path),
			Path:     path,
			Category: moodFromLayout(dir, path),
		}
		if _, err := s.AddEffect(ctx, effect); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("import effects: %w", err)
	}
	return count, nil
}

func (s *Store) queryEffects(ctx context.Context, query string, args ...any) ([]media.SoundEffect, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query effects: %w", err)
	}
	defer rows.Close()

	var effects []media.SoundEffect
	for rows.Next() {
		effect, err := scanEffect(rows)
		if err != nil {
			return nil, err
		}
		effects = append(effects, effect)
	}
	return effects, rows.Err()
}

func scanEffect(scanner interface{ Scan(dest ...any) error }) (media.SoundEffect, error) {
	var effect media.SoundEffect
	if err := scanner.Scan(&effect.ID, &effect.Name, &effect.Path, &effect.Category, &effect.Mood); err != nil {
		return media.SoundEffect{}, fmt.Errorf("scan effect: %w", err)
	}
	return effect, nil
}
