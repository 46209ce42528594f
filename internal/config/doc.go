// Package config loads, normalizes, and validates bard configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, clamps volumes and thresholds to their legal
// ranges, and rejects combinations that cannot work (a partially configured
// transcriber, speaker verification without a model). The Config type
// centralizes every knob the daemon and CLI need.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths and clear validation errors.
package config
