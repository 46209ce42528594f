package keyword

// DefaultVocabulary returns the built-in tabletop vocabulary used when no
// vocabulary file is configured.
func DefaultVocabulary() *Vocabulary {
	vocab := NewVocabulary()

	// Combat
	vocab.Add(Keyword{Word: "battle", Category: "combat", Variations: []string{"fight", "attack", "combat"}, Mood: "angry"})
	vocab.Add(Keyword{Word: "dragon", Category: "creature", Mood: "fearful"})
	vocab.Add(Keyword{Word: "slain", Category: "combat", Variations: []string{"killed", "defeated"}, Mood: "sad"})

	// Exploration
	vocab.Add(Keyword{Word: "enter", Category: "exploration", Variations: []string{"go into"}})
	vocab.Add(Keyword{Word: "treasure", Category: "loot", Variations: []string{"gold", "riches"}, Mood: "happy"})

	// Mystery
	vocab.Add(Keyword{Word: "secret", Category: "mystery", Variations: []string{"hidden", "mysterious"}})
	vocab.Add(Keyword{Word: "clue", Category: "mystery", Variations: []string{"evidence"}})

	// Social
	vocab.Add(Keyword{Word: "merchant", Category: "social", Variations: []string{"shopkeeper", "trader"}})
	vocab.Add(Keyword{Word: "king", Category: "social", Variations: []string{"queen", "lord", "lady"}})

	// Danger
	vocab.Add(Keyword{Word: "trap", Category: "danger", Variations: []string{"danger", "warning"}, Mood: "fearful"})
	vocab.Add(Keyword{Word: "poison", Category: "danger", Mood: "disgusted"})

	// Table mood
	vocab.Add(Keyword{Word: "laugh", Category: "emotion", Variations: []string{"hilarious"}, Mood: "happy"})
	vocab.Add(Keyword{Word: "cry", Category: "emotion", Variations: []string{"tears"}, Mood: "sad"})

	return vocab
}
