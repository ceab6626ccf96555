// Package advisory asks an external reasoning backend for a second
// opinion on a finished valuation. The whole feature is best-effort: an
// unconfigured or failing backend never changes the valuation outcome.
package advisory

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"hauswert/internal/cache"
	"hauswert/internal/models"
)

// Service wraps the chat-completion client plus the 24h signature cache.
type Service struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	cache   *cache.Cache
	logger  *logrus.Logger
}

// NewService creates the advisory service. An empty API key yields a
// service that always answers "unavailable" without side effects.
func NewService(apiKey, model string, timeout, cacheTTL time.Duration, logger *logrus.Logger) *Service {
	s := &Service{
		model:   model,
		timeout: timeout,
		cache:   cache.New("advisory", cacheTTL, logger),
		logger:  logger,
	}
	if apiKey != "" {
		s.client = openai.NewClient(apiKey)
	}
	return s
}

// Enabled reports whether an advisory backend is configured.
func (s *Service) Enabled() bool { return s.client != nil }

// RequestOpinion fetches (or replays) the opinion for one valuation. It
// never returns an error: failures collapse into the error status and the
// caller's value stays untouched.
func (s *Service) RequestOpinion(ctx context.Context, input models.PropertyInput, result models.ValuationResult, data models.SourceData, address string) models.AdvisoryOpinion {
	if s.client == nil {
		return models.AdvisoryOpinion{Status: models.AdvisoryUnavailable}
	}

	sig := signature(input, result, address)
	var cached models.AdvisoryOpinion
	if s.cache.Get(sig, &cached) {
		s.logger.WithField("signature", sig).Debug("Advisory opinion served from cache")
		return cached
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(input, result, data, address)},
		},
	})
	if err != nil {
		s.logger.WithError(err).Warn("Advisory backend call failed")
		return models.AdvisoryOpinion{Status: models.AdvisoryError, Rationale: "advisory backend unreachable"}
	}
	if len(resp.Choices) == 0 {
		return models.AdvisoryOpinion{Status: models.AdvisoryError, Rationale: "advisory backend returned no content"}
	}

	opinion, err := parseOpinion(resp.Choices[0].Message.Content)
	if err != nil {
		s.logger.WithError(err).Warn("Advisory response was not parseable")
		return models.AdvisoryOpinion{Status: models.AdvisoryError, Rationale: "advisory response unparseable"}
	}

	s.cache.Set(sig, opinion)
	return opinion
}

const systemPrompt = `You are a conservative residential real-estate appraisal reviewer.
Review the valuation summary and answer with a single JSON object:
{"status":"ok"|"minor-concern"|"major-concern","confidence":0.0-1.0,"recommended_value":number or null,"rationale":"one or two sentences"}
Only raise a concern when the figures are clearly inconsistent with the inputs.`

func buildPrompt(input models.PropertyInput, result models.ValuationResult, data models.SourceData, address string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Property: %s", input.Type)
	if input.SubType != "" {
		fmt.Fprintf(&sb, " (%s)", input.SubType)
	}
	fmt.Fprintf(&sb, " at %s, region %s\n", address, data.Region)
	if input.LivingArea != nil {
		fmt.Fprintf(&sb, "Living area: %.0f m2\n", *input.LivingArea)
	}
	if input.PlotArea != nil {
		fmt.Fprintf(&sb, "Plot area: %.0f m2\n", *input.PlotArea)
	}
	if input.ConstructionYear != nil {
		fmt.Fprintf(&sb, "Construction year: %d\n", *input.ConstructionYear)
	}
	if data.LandValue != nil {
		fmt.Fprintf(&sb, "Land reference value: %.0f EUR/m2 (official: %t)\n", data.LandValue.ValuePerSqm, data.LandValue.Official)
	}
	fmt.Fprintf(&sb, "Method: %s\nTotal value: %.0f EUR\nPrice: %.0f EUR/m2\nConfidence: %s\n",
		result.Method, result.TotalValue, result.PricePerSqm, result.Confidence)
	if result.IncomeValue != nil {
		fmt.Fprintf(&sb, "Income cross-check: %.0f EUR\n", *result.IncomeValue)
	}
	for _, note := range result.Notes {
		fmt.Fprintf(&sb, "Note: %s\n", note)
	}
	return sb.String()
}

type opinionResponse struct {
	Status           string   `json:"status"`
	Confidence       float64  `json:"confidence"`
	RecommendedValue *float64 `json:"recommended_value"`
	Rationale        string   `json:"rationale"`
}

var validStatuses = map[models.AdvisoryStatus]bool{
	models.AdvisoryOK:           true,
	models.AdvisoryMinorConcern: true,
	models.AdvisoryMajorConcern: true,
}

// parseOpinion extracts the JSON object from the model output, tolerating
// code fences and surrounding prose.
func parseOpinion(content string) (models.AdvisoryOpinion, error) {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end <= start {
		return models.AdvisoryOpinion{}, fmt.Errorf("no JSON object in advisory response")
	}

	var resp opinionResponse
	if err := json.Unmarshal([]byte(content[start:end+1]), &resp); err != nil {
		return models.AdvisoryOpinion{}, fmt.Errorf("invalid advisory JSON: %w", err)
	}

	status := models.AdvisoryStatus(strings.ToLower(strings.TrimSpace(resp.Status)))
	if !validStatuses[status] {
		return models.AdvisoryOpinion{}, fmt.Errorf("unknown advisory status %q", resp.Status)
	}

	confidence := resp.Confidence
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}

	return models.AdvisoryOpinion{
		Status:           status,
		Confidence:       confidence,
		RecommendedValue: resp.RecommendedValue,
		Rationale:        resp.Rationale,
	}, nil
}

// signature keys the opinion cache by everything that could change the
// answer.
func signature(input models.PropertyInput, result models.ValuationResult, address string) string {
	payload, _ := json.Marshal(struct {
		Input   models.PropertyInput `json:"input"`
		Total   float64              `json:"total"`
		Method  models.Method        `json:"method"`
		Address string               `json:"address"`
	}{input, result.TotalValue, result.Method, address})
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
