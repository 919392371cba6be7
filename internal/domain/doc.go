// Package domain contains the core business entities of the review engine:
// review items and their scheduling state, review difficulties, word content,
// and vocabulary statistics. It has no knowledge of storage or transport.
package domain
