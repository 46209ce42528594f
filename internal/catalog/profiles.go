package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"bard/internal/speaker"
)

// SaveProfile stores a voice profile, replacing any existing row with the
// same ID. Profiles without consent recorded are refused.
func (s *Store) SaveProfile(ctx context.Context, profile speaker.VoiceProfile) (speaker.VoiceProfile, error) {
	if !profile.ConsentGiven {
		return speaker.VoiceProfile{}, errors.New("voice profile requires recorded consent")
	}
	if strings.TrimSpace(profile.Name) == "" {
		return speaker.VoiceProfile{}, errors.New("voice profile name is empty")
	}
	if profile.ID == "" {
		profile.ID = uuid.NewString()
	}
	if profile.Enrolled.IsZero() {
		profile.Enrolled = time.Now().UTC()
	}

	embedding, err := json.Marshal(profile.Embedding)
	if err != nil {
		return speaker.VoiceProfile{}, fmt.Errorf("marshal embedding: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO voice_profiles (id, name, embedding, is_default, consent_given, enrolled_at)
         VALUES (?, ?, ?, ?, ?, ?)
         ON CONFLICT (id) DO UPDATE SET
             name = excluded.name, embedding = excluded.embedding,
             is_default = excluded.is_default, consent_given = excluded.consent_given,
             enrolled_at = excluded.enrolled_at`,
		profile.ID,
		profile.Name,
		string(embedding),
		boolToInt(profile.IsDefault),
		boolToInt(profile.ConsentGiven),
		profile.Enrolled.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return speaker.VoiceProfile{}, fmt.Errorf("save profile: %w", err)
	}
	return profile, nil
}

// Profiles lists all voice profiles ordered by enrollment time.
func (s *Store) Profiles(ctx context.Context) ([]speaker.VoiceProfile, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, embedding, is_default, consent_given, enrolled_at
         FROM voice_profiles ORDER BY enrolled_at`)
	if err != nil {
		return nil, fmt.Errorf("query profiles: %w", err)
	}
	defer rows.Close()

	var profiles []speaker.VoiceProfile
	for rows.Next() {
		var (
			profile    speaker.VoiceProfile
			embedding  string
			isDefault  int
			consent    int
			enrolledAt string
		)
		if err := rows.Scan(&profile.ID, &profile.Name, &embedding, &isDefault, &consent, &enrolledAt); err != nil {
			return nil, fmt.Errorf("scan profile: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &profile.Embedding); err != nil {
			return nil, fmt.Errorf("parse embedding for %q: %w", profile.Name, err)
		}
		profile.IsDefault = isDefault != 0
		profile.ConsentGiven = consent != 0
		if enrolled, err := parseTimeString(enrolledAt); err == nil {
			profile.Enrolled = enrolled
		}
		profiles = append(profiles, profile)
	}
	return profiles, rows.Err()
}

// RemoveProfile deletes a voice profile, erasing its stored embedding.
func (s *Store) RemoveProfile(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM voice_profiles WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete profile: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
