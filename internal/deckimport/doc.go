// Package deckimport loads vocabulary decks from spreadsheets.
//
// A deck is an .xlsx sheet with one word per row. The first row is a header.
// Columns are read positionally: word, translation, mnemonic, example,
// image URL, audio URL. Every imported row stores its display content and
// enrolls the word for the target user.
package deckimport
