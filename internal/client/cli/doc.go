// Package cli provides the interactive LogMiner command-line client.
//
// It wires configuration, local token storage, the token lifecycle manager,
// the REST client and the live log stream monitor behind a small REPL.
// Typical flow: restore a persisted session or sign in through the browser,
// look up a server, then watch its log stream until Enter is pressed.
//
// Key features:
//   - Login (OAuth authorization code with PKCE) / Logout / WhoAmI
//   - Server details, start and stop tailing
//   - Live, coloured log stream with visible connection state
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
