// Package media holds the audio library types and file decoders.
//
// Tracks and sound effects reference files on disk; Open turns them into
// streaming float32 Sources (go-mp3 for MP3, a minimal RIFF reader for
// 16-bit PCM wav). OpenLoop restarts a source on EOF for looping background
// tracks.
package media
