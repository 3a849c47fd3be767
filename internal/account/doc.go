// Package account keeps the device's registered accounts and its single
// active session.
//
// Secrets are stored as bcrypt hashes. The persisted session carries an
// HS256 token so that a session edited on disk is rejected on restore.
package account
