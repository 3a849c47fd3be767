// Package types defines the Store and KV interfaces, the journal entity types,
// the Classifier boundary, and the standard error values for moodlog.
//
// Everything in this package is storage-agnostic: the sqlite backend and the
// in-memory store both satisfy Store, and the account, journal and analytics
// packages only ever see these types.
package types
