package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"bard/internal/keyword"
)

// UpsertKeyword stores a trigger word, replacing any existing entry for the
// same canonical word.
func (s *Store) UpsertKeyword(ctx context.Context, kw keyword.Keyword) error {
	word := strings.ToLower(strings.TrimSpace(kw.Word))
	if word == "" {
		return fmt.Errorf("keyword word is empty")
	}
	variations, err := json.Marshal(kw.Variations)
	if err != nil {
		return fmt.Errorf("marshal variations: %w", err)
	}

	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO keywords (word, category, mood, priority, variations)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (word) DO UPDATE SET
             category = excluded.category, mood = excluded.mood,
             priority = excluded.priority, variations = excluded.variations`,
		word,
		kw.Category,
		kw.Mood,
		kw.Priority,
		string(variations),
	)
	if err != nil {
		return fmt.Errorf("upsert keyword: %w", err)
	}
	return nil
}

// RemoveKeyword deletes a trigger word and reports whether a row was removed.
func (s *Store) RemoveKeyword(ctx context.Context, word string) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM keywords WHERE word = ?`, strings.ToLower(strings.TrimSpace(word)))
	if err != nil {
		return false, fmt.Errorf("delete keyword: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// Keywords lists all trigger words ordered by priority then word.
func (s *Store) Keywords(ctx context.Context) ([]keyword.Keyword, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT word, category, mood, priority, variations FROM keywords ORDER BY priority DESC, word`)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var keywords []keyword.Keyword
	for rows.Next() {
		var (
			kw  keyword.Keyword
			raw string
		)
		if err := rows.Scan(&kw.Word, &kw.Category, &kw.Mood, &kw.Priority, &raw); err != nil {
			return nil, fmt.Errorf("scan keyword: %w", err)
		}
		if err := json.Unmarshal([]byte(raw), &kw.Variations); err != nil {
			return nil, fmt.Errorf("parse variations for %q: %w", kw.Word, err)
		}
		keywords = append(keywords, kw)
	}
	return keywords, rows.Err()
}

// Vocabulary materializes the stored keywords into a matcher vocabulary.
func (s *Store) Vocabulary(ctx context.Context) (*keyword.Vocabulary, error) {
	keywords, err := s.Keywords(ctx)
	if err != nil {
		return nil, err
	}
	vocab := keyword.NewVocabulary()
	for _, kw := range keywords {
		vocab.Add(kw)
	}
	return vocab, nil
}

// SeedDefaultKeywords inserts the built-in vocabulary when the keywords table
// is empty. Returns the number of words seeded.
func (s *Store) SeedDefaultKeywords(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM keywords`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count keywords: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	seeded := 0
	for _, kw := range keyword.DefaultVocabulary().Keywords() {
		if err := s.UpsertKeyword(ctx, kw); err != nil {
			return seeded, err
		}
		seeded++
	}
	return seeded, nil
}
