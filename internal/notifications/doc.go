// Package notifications delivers session events via pluggable notifiers.
//
// The default implementation publishes to ntfy using the topic configured in
// config.toml and gracefully degrades to a no-op when notifications are
// disabled. Per-category toggles let a table mute suggestions while keeping
// error alerts.
//
// Extend this package if you need alternative transports; session code
// depends only on the simple Service interface.
package notifications
