package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"os"
	"strings"
	"text/template"
	"time"

	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/content"
	"github.com/wordloom/wordloom-api/internal/domain"
	"github.com/wordloom/wordloom-api/internal/platform/logger"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 2 * time.Second
)

// modelsAPI is the part of the genai client the generator uses.
// *genai.Models satisfies it.
type modelsAPI interface {
	GenerateContent(
		ctx context.Context,
		model string,
		contents []*genai.Content,
		config *genai.GenerateContentConfig,
	) (*genai.GenerateContentResponse, error)
}

// Generator implements the content.Generator interface using
// Google's Gemini API to write study material for a word.
type Generator struct {
	// logger is used for structured logging
	logger *slog.Logger

	// promptTemplate is the parsed template for creating prompts
	promptTemplate *template.Template

	// models is the Gemini API surface used for requests
	models modelsAPI

	// model is the name of the Gemini model to use
	model string

	maxRetries int
	retryDelay time.Duration
	rng        *rand.Rand
}

var _ content.Generator = (*Generator)(nil)

// NewGenerator creates a new Generator with the provided dependencies.
//
// Parameters:
//   - ctx: Context for the operation, which can be used for cancellation
//   - logger: A structured logger for operation logging
//   - cfg: LLM configuration containing API key, model name, and retry settings
//
// Returns:
//   - A properly initialized Generator or an error if initialization fails
func NewGenerator(ctx context.Context, logger *slog.Logger, cfg config.LLMConfig) (*Generator, error) {
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("%w: gemini API key cannot be empty", content.ErrInvalidConfig)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create Gemini client: %v", content.ErrInvalidConfig, err)
	}

	return newGenerator(logger, cfg, client.Models)
}

// newGenerator builds a Generator around any modelsAPI implementation.
func newGenerator(log *slog.Logger, cfg config.LLMConfig, models modelsAPI) (*Generator, error) {
	if log == nil {
		log = slog.Default()
	}

	if cfg.ModelName == "" {
		return nil, fmt.Errorf("%w: model name cannot be empty", content.ErrInvalidConfig)
	}

	tmpl, err := loadPromptTemplate(cfg.PromptTemplatePath)
	if err != nil {
		return nil, err
	}

	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		log.Warn("invalid max retries value, using default", slog.Int("max_retries", defaultMaxRetries))
		maxRetries = defaultMaxRetries
	}

	retryDelay := time.Duration(cfg.RetryDelaySeconds) * time.Second
	if retryDelay <= 0 {
		retryDelay = defaultRetryDelay
	}

	return &Generator{
		logger:         log.With(slog.String("component", "gemini_generator")),
		promptTemplate: tmpl,
		models:         models,
		model:          cfg.ModelName,
		maxRetries:     maxRetries,
		retryDelay:     retryDelay,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}, nil
}

func loadPromptTemplate(path string) (*template.Template, error) {
	text := defaultPromptTemplate
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read prompt template from %s: %v",
				content.ErrInvalidConfig, path, err)
		}
		text = string(raw)
	}

	tmpl, err := template.New("word_content").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse prompt template: %v", content.ErrInvalidConfig, err)
	}
	return tmpl, nil
}

// createPrompt renders the prompt for a word.
func (g *Generator) createPrompt(word, language string) (string, error) {
	if strings.TrimSpace(word) == "" {
		return "", ErrEmptyWord
	}

	var buf bytes.Buffer
	if err := g.promptTemplate.Execute(&buf, promptData{Word: word, Language: language}); err != nil {
		return "", fmt.Errorf("failed to execute prompt template: %w", err)
	}
	return buf.String(), nil
}

// GenerateWordContent implements content.Generator.
func (g *Generator) GenerateWordContent(
	ctx context.Context,
	word, language string,
) (*domain.WordContent, error) {
	prompt, err := g.createPrompt(word, language)
	if err != nil {
		return nil, err
	}

	response, err := g.callWithRetry(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return parseResponse(response, word, language)
}

// callWithRetry makes a call to the Gemini API with exponential backoff retry logic.
//
// It attempts the call up to maxRetries+1 times, waiting
// retryDelay * 2^attempt * [0.5, 1.0) between attempts. Blocked or malformed
// responses and client errors are permanent and returned immediately.
func (g *Generator) callWithRetry(ctx context.Context, prompt string) (*ResponseSchema, error) {
	log := logger.FromContextOrDefault(ctx, g.logger)

	contents := []*genai.Content{{
		Role:  "user",
		Parts: []*genai.Part{{Text: prompt}},
	}}
	genConfig := &genai.GenerateContentConfig{ResponseMIMEType: "application/json"}

	for attempt := 0; ; attempt++ {
		attemptNum := attempt + 1
		log.DebugContext(ctx, "making Gemini API call",
			slog.Int("attempt", attemptNum),
			slog.Int("max_attempts", g.maxRetries+1))

		resp, err := g.models.GenerateContent(ctx, g.model, contents, genConfig)
		if err == nil {
			var parsed *ResponseSchema
			parsed, err = decodeResponse(resp)
			if err == nil {
				log.DebugContext(ctx, "Gemini API call successful", slog.Int("attempt", attemptNum))
				return parsed, nil
			}
		}

		if !isTransient(err) {
			log.WarnContext(ctx, "permanent error occurred, not retrying",
				slog.String("error", err.Error()))
			if errors.Is(err, content.ErrContentBlocked) || errors.Is(err, content.ErrInvalidResponse) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", content.ErrGenerationFailed, err)
		}

		if attempt >= g.maxRetries {
			log.WarnContext(ctx, "maximum retry attempts reached",
				slog.Int("max_retries", g.maxRetries),
				slog.String("error", err.Error()))
			return nil, fmt.Errorf("%w: exceeded maximum retry attempts (%d): %v",
				content.ErrTransientFailure, g.maxRetries, err)
		}

		delay := g.backoff(attempt)
		log.InfoContext(ctx, "retrying Gemini API call after delay",
			slog.Int("attempt", attemptNum),
			slog.Duration("delay", delay),
			slog.String("error", err.Error()))

		timer := time.NewTimer(delay)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%w: %v", content.ErrTransientFailure, ctx.Err())
		}
	}
}

func (g *Generator) backoff(attempt int) time.Duration {
	jitter := 0.5 + g.rng.Float64()*0.5
	return time.Duration(float64(g.retryDelay) * math.Pow(2, float64(attempt)) * jitter)
}

// decodeResponse extracts the JSON object from the first candidate.
func decodeResponse(resp *genai.GenerateContentResponse) (*ResponseSchema, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: nil response", content.ErrInvalidResponse)
	}
	if len(resp.Candidates) == 0 {
		return nil, fmt.Errorf("%w: no content generated", content.ErrInvalidResponse)
	}
	candidate := resp.Candidates[0]
	if candidate.FinishReason == genai.FinishReasonSafety {
		return nil, fmt.Errorf("%w: finish reason %s", content.ErrContentBlocked, candidate.FinishReason)
	}
	if candidate.Content == nil {
		return nil, fmt.Errorf("%w: empty content in response", content.ErrInvalidResponse)
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		if part != nil {
			text.WriteString(part.Text)
		}
	}

	var parsed ResponseSchema
	if err := json.Unmarshal([]byte(stripCodeFence(text.String())), &parsed); err != nil {
		return nil, fmt.Errorf("%w: failed to parse JSON response: %v", content.ErrInvalidResponse, err)
	}
	return &parsed, nil
}

// stripCodeFence removes a markdown fence some models wrap JSON in.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// parseResponse converts the model's answer into domain content.
func parseResponse(response *ResponseSchema, word, language string) (*domain.WordContent, error) {
	translation := strings.TrimSpace(response.Translation)
	if translation == "" {
		return nil, fmt.Errorf("%w: response has no translation", content.ErrInvalidResponse)
	}
	return &domain.WordContent{
		Word:        word,
		Language:    language,
		Translation: translation,
		Mnemonic:    strings.TrimSpace(response.Mnemonic),
		Example:     strings.TrimSpace(response.Example),
	}, nil
}

// isTransient reports whether a failed call is worth retrying.
func isTransient(err error) bool {
	if errors.Is(err, content.ErrContentBlocked) || errors.Is(err, content.ErrInvalidResponse) {
		return false
	}
	if errors.Is(err, context.Canceled) {
		return false
	}

	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError
	}
	return true
}
