package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sozercan/review-sentiment/apimodels"
)

// TimestampLayout matches the timestamps the HTTP backend assigns.
const TimestampLayout = "2006-01-02 15:04:05"

var SystemPrompt = `You classify the sentiment of video game reviews.
Reply with a single JSON object and nothing else, in the form
{"sentiment": "positive" | "negative", "confidence": <number between 0 and 1>}.
Use "positive" when the reviewer would recommend the game and "negative" otherwise.`

type classification struct {
	Sentiment  apimodels.Sentiment `json:"sentiment"`
	Confidence float64             `json:"confidence"`
}

// Classifier answers predictions with a chat model instead of the backend's
// own classifier.
type Classifier struct {
	provider Provider
	now      func() time.Time
}

func NewClassifier(provider Provider) *Classifier {
	return &Classifier{
		provider: provider,
		now:      time.Now,
	}
}

func (c *Classifier) Predict(ctx context.Context, text, gameName string) (*apimodels.PredictionResponse, error) {
	if gameName == "" {
		gameName = apimodels.UnknownGame
	}
	slog.Debug("Classifying review with LLM", "game", gameName)

	resp, err := c.provider.Complete(ctx,
		[]string{SystemPrompt},
		[]string{fmt.Sprintf("Game: %s\nReview: %s", gameName, text)},
	)
	if err != nil {
		return nil, fmt.Errorf("llm classification failed: %w", err)
	}

	result, err := parseClassification(resp.Content)
	if err != nil {
		return nil, err
	}

	slog.Debug("LLM classification completed", "sentiment", result.Sentiment, "tokens", resp.Usage.TotalTokens)
	return &apimodels.PredictionResponse{
		Sentiment:  result.Sentiment,
		Confidence: result.Confidence,
		Timestamp:  c.now().Format(TimestampLayout),
	}, nil
}

// CheckHealth reports the model as loaded once a provider is configured.
func (c *Classifier) CheckHealth(context.Context) (*apimodels.HealthResponse, error) {
	status := "not loaded"
	if c.provider != nil {
		status = "loaded"
	}
	return &apimodels.HealthResponse{
		Status:      "healthy",
		ModelStatus: status,
		Device:      "remote",
		Timestamp:   c.now().Format(time.RFC3339),
	}, nil
}

// parseClassification accepts the JSON object optionally wrapped in a
// markdown code fence.
func parseClassification(content string) (classification, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var result classification
	if err := json.Unmarshal([]byte(content), &result); err != nil {
		return classification{}, fmt.Errorf("decode llm classification %q: %w", content, err)
	}

	result.Sentiment = apimodels.Sentiment(strings.ToLower(string(result.Sentiment)))
	if !result.Sentiment.Valid() {
		return classification{}, fmt.Errorf("llm returned unknown sentiment %q", result.Sentiment)
	}
	if result.Confidence < 0 || result.Confidence > 1 {
		return classification{}, fmt.Errorf("llm returned confidence %v outside [0,1]", result.Confidence)
	}
	return result, nil
}

// AnalyticsFetcher is the backend call the classifier cannot answer itself.
type AnalyticsFetcher interface {
	FetchAnalytics(ctx context.Context, gameName string) (*apimodels.AnalyticsResponse, error)
}

// Gateway serves health and predictions from the classifier and delegates
// analytics to the backend.
type Gateway struct {
	*Classifier
	AnalyticsFetcher
}

func NewGateway(classifier *Classifier, analytics AnalyticsFetcher) *Gateway {
	return &Gateway{
		Classifier:       classifier,
		AnalyticsFetcher: analytics,
	}
}
