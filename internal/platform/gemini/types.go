package gemini

// promptData represents the data passed to the prompt template
type promptData struct {
	Word     string
	Language string
}

// ResponseSchema represents the JSON object the model is asked to return
type ResponseSchema struct {
	// Translation is the meaning of the word in the learner's native language
	Translation string `json:"translation"`

	// Mnemonic is a short memory aid linking the word to its meaning
	Mnemonic string `json:"mnemonic,omitempty"`

	// Example is a sentence using the word in context
	Example string `json:"example,omitempty"`
}

// defaultPromptTemplate is used when no template file is configured.
const defaultPromptTemplate = `You are helping a language learner memorize vocabulary.
For the {{.Language}} word "{{.Word}}" respond with a single JSON object with these fields:
  "translation": the most common meaning, in English, in a few words
  "mnemonic": one short, vivid memory aid linking the word to its meaning
  "example": one natural sentence in {{.Language}} that uses the word
Respond with JSON only.`
