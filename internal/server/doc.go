// Package server runs the local half of the OAuth2 authorization-code
// handshake.
//
// # Callback Handler
//
// [CallbackHandler] validates the state parameter (CSRF protection),
// surfaces authorization errors from the remote service verbatim,
// exchanges the authorization code for tokens, and delivers the outcome
// through a result channel. It processes exactly one callback; replays get
// a 400.
//
// # Listener
//
// [CallbackListener] binds the registered redirect address, serves the
// callback handler, and reports bind failures with their likely cause
// (port conflict or insufficient permission) instead of retrying. The
// caller owns the bounded wait: it selects on the handler's result
// channel, the listener's error channel, and a timeout, then shuts the
// listener down so the port is released either way.
package server
