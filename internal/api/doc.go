// Package api streams session events to UI clients over websockets and
// serves a JSON status endpoint. The wire format is a typed envelope so
// clients can dispatch without sniffing payload shapes.
package api
