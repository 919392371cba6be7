// Package gemini provides an implementation of the content.Generator interface
// that uses Google's Gemini API to write study material for a vocabulary word.
//
// This package is an infrastructure adapter: it translates between the
// application's domain.WordContent and the Gemini API without exposing the
// details of the external service to the rest of the application.
//
// The Generator renders a prompt from a template, asks the model for a JSON
// object with a translation, a mnemonic and an example sentence, validates the
// object and converts it into domain.WordContent. Transient API failures are
// retried with exponential backoff and jitter; blocked or malformed responses
// are returned immediately.
package gemini
