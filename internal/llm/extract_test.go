package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_FencedJSONBlock(t *testing.T) {
	response := "Here is the classification:\n\n```json\n{\n  \"complexity\": \"complex\",\n  \"company\": \"Apple\"\n}\n```\n\nLet me know if you need anything else."

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Contains(t, result, `"complexity"`)
	assert.Contains(t, result, `"Apple"`)
}

func TestExtractJSON_FencedNoLanguageTag(t *testing.T) {
	response := "```\n{\"passed\": true, \"score\": 8}\n```"

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"passed": true, "score": 8}`, result)
}

func TestExtractJSON_SkipsOtherLanguageFences(t *testing.T) {
	response := "Run this first:\n```bash\necho hello\n```\n\nThen parse:\n```json\n{\"company\": \"Tesla\"}\n```"

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"company": "Tesla"}`, result)
}

func TestExtractJSON_RawObjectWithProse(t *testing.T) {
	response := `Based on my analysis, the verdict is {"passed": false, "score": 4} overall.`

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"passed": false, "score": 4}`, result)
}

func TestExtractJSON_RawArray(t *testing.T) {
	response := `[{"id": 1, "category": "data"}, {"id": 2, "category": "search"}]`

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, response, result)
}

func TestExtractJSON_NestedObjects(t *testing.T) {
	response := `{"risk_categories": {"market_risk": {"level": "high", "assessment": "volatile"}}}`

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, response, result)
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	response := `{"note": "uses {braces} and \"quotes\" inside", "ok": true}`

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, response, result)
}

func TestExtractJSON_InvalidFenceFallsBackToRaw(t *testing.T) {
	response := "```json\n{broken\n```\n\nCorrected: {\"fixed\": true}"

	result, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, `{"fixed": true}`, result)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("I could not produce a structured answer, sorry.")
	assert.Error(t, err)
}

func TestExtractJSON_EmptyResponse(t *testing.T) {
	_, err := ExtractJSON("")
	assert.Error(t, err)
}

func TestExtractJSONAs_Struct(t *testing.T) {
	type verdict struct {
		Passed bool     `json:"passed"`
		Score  int      `json:"score"`
		Issues []string `json:"issues"`
	}

	response := "```json\n{\"passed\": false, \"score\": 5, \"issues\": [\"missing risk section\"]}\n```"

	got, err := ExtractJSONAs[verdict](response)
	require.NoError(t, err)
	assert.False(t, got.Passed)
	assert.Equal(t, 5, got.Score)
	assert.Equal(t, []string{"missing risk section"}, got.Issues)
}

func TestExtractJSONAs_TypeMismatch(t *testing.T) {
	type verdict struct {
		Score int `json:"score"`
	}

	_, err := ExtractJSONAs[verdict](`{"score": "not a number"}`)
	assert.Error(t, err)
}
