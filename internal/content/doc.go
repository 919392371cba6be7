// Package content resolves the display material (translation, mnemonic,
// example, media links) shown for a word during review. Scheduling never
// depends on it: the review service only asks a Provider for the content of
// the words it has already selected.
//
// A StoreProvider reads stored content. A FallbackProvider additionally asks
// a Generator (an LLM adapter such as the gemini package) for words that have
// no stored content yet and caches what it returns.
package content
