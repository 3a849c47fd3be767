// Package gemini classifies journal entries with Google's Gemini models.
//
// The entry text is rendered into a prompt, sent with a JSON response schema
// that constrains the sentiment to happy, sad or neutral, and the reply is
// decoded into a types.Analysis. Transient failures are retried with
// exponential backoff and jitter; blocked content and malformed replies are
// not.
package gemini
