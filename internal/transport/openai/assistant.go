// Package openai is the AI collaborator boundary: audio transcription, query
// extraction, and image analysis. The boundary never raises; every failure
// logs and returns a zero value so search degrades instead of breaking.
package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/webntricks/unisearch/internal/domain/query"
	"github.com/webntricks/unisearch/internal/metrics"
)

const extractSystemPrompt = "You turn raw queries into a JSON for search. " +
	"Output ONLY valid JSON matching this schema: {query: string, synonyms: string[], " +
	"filters: {types?: string[], taxonomy?: object, price?: {gte?: number, lte?: number}}, " +
	"sort?: {field:string,order:'asc'|'desc'}[], limit?: number, page?: number}"

const analyzeSystemPrompt = "Describe the image briefly and list 8-15 concise " +
	"shopping/search keywords and categories. Respond as JSON with " +
	"{description:string, keywords:string[], categories:string[]}"

// ImageLabels is the structured outcome of image analysis.
type ImageLabels struct {
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Categories  []string `json:"categories"`
}

// Empty reports whether analysis produced nothing usable.
func (l ImageLabels) Empty() bool {
	return l.Description == "" && len(l.Keywords) == 0 && len(l.Categories) == 0
}

// Config holds AI collaborator settings.
type Config struct {
	APIKey string
	Model  string
	Logger *zap.Logger
}

// Assistant wraps the OpenAI API.
type Assistant struct {
	client *openai.Client
	model  string
	logger *zap.Logger
}

// New creates an Assistant. With an empty API key every call returns a zero
// value immediately.
func New(cfg Config) *Assistant {
	a := &Assistant{model: cfg.Model, logger: cfg.Logger}
	if a.model == "" {
		a.model = openai.GPT4oMini
	}
	if cfg.APIKey != "" {
		a.client = openai.NewClient(cfg.APIKey)
	}
	return a
}

// Configured reports whether an API key is present.
func (a *Assistant) Configured() bool { return a.client != nil }

// Transcribe turns audio bytes into text. Returns "" on any failure.
func (a *Assistant) Transcribe(ctx context.Context, audio []byte, mime string) string {
	if a.client == nil {
		return ""
	}

	start := time.Now()
	resp, err := a.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "audio" + audioExt(mime),
		Reader:   bytes.NewReader(audio),
	})
	a.observe("transcribe", start, err)
	if err != nil {
		a.logger.Warn("transcription failed", zap.Error(err))
		return ""
	}
	return resp.Text
}

// ExtractQuery turns free text into a structured query. Returns the zero
// query on any failure.
func (a *Assistant) ExtractQuery(ctx context.Context, text string) query.StructuredQuery {
	if a.client == nil {
		return query.StructuredQuery{}
	}

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       a.model,
		Temperature: 0.2,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: extractSystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: "Text: " + text},
		},
	})
	a.observe("extract_query", start, err)
	if err != nil {
		a.logger.Warn("query extraction failed", zap.Error(err))
		return query.StructuredQuery{}
	}
	if len(resp.Choices) == 0 {
		return query.StructuredQuery{}
	}

	var q query.StructuredQuery
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &q); err != nil {
		a.logger.Warn("query extraction returned invalid JSON", zap.Error(err))
		return query.StructuredQuery{}
	}
	return q
}

// AnalyzeImage describes an image and derives search keywords. Returns zero
// labels on any failure.
func (a *Assistant) AnalyzeImage(ctx context.Context, image []byte, mime string) ImageLabels {
	if a.client == nil {
		return ImageLabels{}
	}

	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(image))

	start := time.Now()
	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: a.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: analyzeSystemPrompt},
			{
				Role: openai.ChatMessageRoleUser,
				MultiContent: []openai.ChatMessagePart{
					{Type: openai.ChatMessagePartTypeText, Text: "Analyze this image."},
					{
						Type:     openai.ChatMessagePartTypeImageURL,
						ImageURL: &openai.ChatMessageImageURL{URL: dataURL},
					},
				},
			},
		},
	})
	a.observe("analyze_image", start, err)
	if err != nil {
		a.logger.Warn("image analysis failed", zap.Error(err))
		return ImageLabels{}
	}
	if len(resp.Choices) == 0 {
		return ImageLabels{}
	}

	var labels ImageLabels
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &labels); err != nil {
		a.logger.Warn("image analysis returned invalid JSON", zap.Error(err))
		return ImageLabels{}
	}
	return labels
}

// LabelsToQuery converts image labels into the structured query contract:
// description plus the first 10 unique keywords, scoped to shopping types.
func LabelsToQuery(l ImageLabels) query.StructuredQuery {
	keywords := uniqueHead(l.Keywords, 10)
	return query.StructuredQuery{
		Query:    strings.TrimSpace(l.Description + " " + strings.Join(keywords, " ")),
		Synonyms: keywords,
		Filters:  query.Filters{Types: []string{"product", "post"}},
		Limit:    query.DefaultLimit,
		Page:     1,
	}
}

func (a *Assistant) observe(op string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.AIRequestsTotal.WithLabelValues(op, status).Inc()
	metrics.AIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

func uniqueHead(in []string, n int) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, n)
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == n {
			break
		}
	}
	return out
}

func audioExt(mime string) string {
	switch mime {
	case "audio/mpeg", "audio/mp3":
		return ".mp3"
	case "audio/wav", "audio/x-wav":
		return ".wav"
	case "audio/ogg":
		return ".ogg"
	case "audio/mp4", "audio/m4a":
		return ".m4a"
	default:
		return ".webm"
	}
}
