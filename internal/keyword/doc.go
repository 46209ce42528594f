// Package keyword matches transcript tokens against a mutable trigger
// vocabulary.
//
// A Vocabulary maps lowercased variations to canonical keywords and carries a
// strictly increasing version. The Matcher holds the active vocabulary behind
// a read-write lock so detection keeps running while the Watcher hot-reloads
// a newer vocabulary file from disk.
package keyword
