// Package fetch provides the HTTP side of versionboard: a pooled client with
// per-request timeouts and a body size cap, and the HTML Raw Source Adapter
// built on it.
//
// The main components are:
//
//   - [Client]: HTTP client wrapper returning a structured [Response]
//   - [HTMLSource]: versionboard.Source reading documentation pages
//
// Users of the versionboard library should not need to interact with this
// package directly.
package fetch
