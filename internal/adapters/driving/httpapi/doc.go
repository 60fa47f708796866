// Package httpapi exposes the question pipeline over HTTP.
//
// The surface is deliberately thin: one POST endpoint wrapping the chat
// service and a health probe. Authentication happens upstream; the
// handler trusts the username delivered in the X-Username header.
package httpapi
