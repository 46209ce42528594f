// Package catalog persists the music and effect library, trigger vocabulary,
// voice profiles, and session history in a SQLite database.
package catalog
