package advisory

import (
	"context"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hauswert/internal/models"
)

func TestParseOpinionPlainJSON(t *testing.T) {
	content := `{"status":"minor-concern","confidence":0.82,"recommended_value":310000,"rationale":"price per sqm looks high"}`

	opinion, err := parseOpinion(content)
	require.NoError(t, err)
	assert.Equal(t, models.AdvisoryMinorConcern, opinion.Status)
	assert.Equal(t, 0.82, opinion.Confidence)
	require.NotNil(t, opinion.RecommendedValue)
	assert.Equal(t, 310000.0, *opinion.RecommendedValue)
}

func TestParseOpinionCodeFenced(t *testing.T) {
	content := "Here is my assessment:\n```json\n{\"status\":\"ok\",\"confidence\":0.9,\"recommended_value\":null,\"rationale\":\"consistent\"}\n```"

	opinion, err := parseOpinion(content)
	require.NoError(t, err)
	assert.Equal(t, models.AdvisoryOK, opinion.Status)
	assert.Nil(t, opinion.RecommendedValue)
}

func TestParseOpinionRejectsUnknownStatus(t *testing.T) {
	_, err := parseOpinion(`{"status":"panic","confidence":1,"rationale":"x"}`)
	assert.Error(t, err)

	_, err = parseOpinion("no json here at all")
	assert.Error(t, err)
}

func TestParseOpinionClampsConfidence(t *testing.T) {
	opinion, err := parseOpinion(`{"status":"ok","confidence":1.7,"rationale":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, 1.0, opinion.Confidence)

	opinion, err = parseOpinion(`{"status":"ok","confidence":-0.3,"rationale":"x"}`)
	require.NoError(t, err)
	assert.Equal(t, 0.0, opinion.Confidence)
}

func TestSignatureDistinguishesInputs(t *testing.T) {
	area := 120.0
	input := models.PropertyInput{Type: models.PropertyTypeHouse, LivingArea: &area}
	result := models.ValuationResult{TotalValue: 300000, Method: models.MethodCostLite}

	base := signature(input, result, "Teststr. 1, Berlin")
	assert.Equal(t, base, signature(input, result, "Teststr. 1, Berlin"))
	assert.NotEqual(t, base, signature(input, result, "Teststr. 2, Berlin"))

	other := result
	other.TotalValue = 310000
	assert.NotEqual(t, base, signature(input, other, "Teststr. 1, Berlin"))
}

func TestUnconfiguredServiceIsUnavailable(t *testing.T) {
	logger := logrus.New()
	svc := NewService("", "gpt-4o", time.Second, time.Hour, logger)

	assert.False(t, svc.Enabled())

	opinion := svc.RequestOpinion(context.Background(), models.PropertyInput{Type: models.PropertyTypeHouse},
		models.ValuationResult{}, models.SourceData{}, "Teststr. 1")
	assert.Equal(t, models.AdvisoryUnavailable, opinion.Status)
}
