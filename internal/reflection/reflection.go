// Package reflection writes a short devotional reflection on a passage the
// reader has just finished.
package reflection

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

const (
	DefaultModel = "gemini-2.5-flash"
	// MaxPassageRunes keeps prompts within a sensible request size.
	MaxPassageRunes = 8000
)

// ErrEmptyPassage is returned for a blank passage.
var ErrEmptyPassage = errors.New("empty passage")

// Reflector produces a reflection for a passage.
type Reflector interface {
	Reflect(ctx context.Context, passage string) (string, error)
}

type Config struct {
	APIKey string
	Model  string
}

// LoadConfigFromEnv reads GEMINI_API_KEY (or API_KEY) and GEMINI_MODEL. ok is
// false when no key is set.
func LoadConfigFromEnv() (cfg Config, ok bool) {
	cfg.APIKey = strings.TrimSpace(os.Getenv("GEMINI_API_KEY"))
	if cfg.APIKey == "" {
		cfg.APIKey = strings.TrimSpace(os.Getenv("API_KEY"))
	}
	cfg.Model = strings.TrimSpace(os.Getenv("GEMINI_MODEL"))
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	return cfg, cfg.APIKey != ""
}

// BuildPrompt asks for one or two encouraging paragraphs in Korean.
func BuildPrompt(passage string) string {
	return "다음은 사용자가 방금 읽은 성경 구절들입니다:\n\n---\n" + passage + "\n---\n\n" +
		"이 구절들에 대한 짧고(1~2 문단) 격려가 되며 이해하기 쉬운 묵상을 작성해주세요. 응답은 한국어로 해주세요."
}

type generateFunc func(ctx context.Context, model, prompt string) (string, error)

// GeminiReflector asks a Gemini model through the genai SDK.
type GeminiReflector struct {
	model    string
	generate generateFunc
}

func NewGeminiReflector(ctx context.Context, cfg Config) (*GeminiReflector, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &GeminiReflector{
		model: cfg.Model,
		generate: func(ctx context.Context, model, prompt string) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

func (r *GeminiReflector) Reflect(ctx context.Context, passage string) (string, error) {
	passage = strings.TrimSpace(passage)
	if passage == "" {
		return "", ErrEmptyPassage
	}
	if runes := []rune(passage); len(runes) > MaxPassageRunes {
		passage = string(runes[:MaxPassageRunes])
	}
	text, err := r.generate(ctx, r.model, BuildPrompt(passage))
	if err != nil {
		return "", fmt.Errorf("GenAI generate failed: %w", err)
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", errors.New("no reflection returned")
	}
	return text, nil
}
