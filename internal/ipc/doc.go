// Package ipc exposes the daemon over JSON-RPC Unix sockets and ships the
// matching client used by the CLI.
//
// It owns socket lifecycle management, request/response DTOs, and conversions
// between catalog models and lightweight wire representations. The server
// commands the session manager and engine directly; the client fails fast
// when the daemon is offline.
package ipc
