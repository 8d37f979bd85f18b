package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseResult(t *testing.T) {
	t.Run("valid object", func(t *testing.T) {
		res, err := ParseResult(`{"risk_score":92,"classification":"Scam","explanation":"...","recommended_action":"Do not click the link."}`)
		require.NoError(t, err)
		assert.Equal(t, Result{RiskScore: 92, Classification: "Scam", Explanation: "...", RecommendedAction: "Do not click the link."}, *res)
	})

	t.Run("integral float score and extra fields", func(t *testing.T) {
		res, err := ParseResult(`{"risk_score":40.0,"classification":"Suspicious","explanation":"e","recommended_action":"a","confidence":0.7}`)
		require.NoError(t, err)
		assert.Equal(t, 40, res.RiskScore)
	})

	t.Run("classification outside the suggested set passes through", func(t *testing.T) {
		res, err := ParseResult(`{"risk_score":55,"classification":"Likely Scam","explanation":"e","recommended_action":"a"}`)
		require.NoError(t, err)
		assert.Equal(t, "Likely Scam", res.Classification)
	})

	t.Run("boundaries", func(t *testing.T) {
		for _, raw := range []string{
			`{"risk_score":0,"classification":"Safe","explanation":"","recommended_action":""}`,
			`{"risk_score":100,"classification":"Scam","explanation":"","recommended_action":""}`,
		} {
			_, err := ParseResult(raw)
			assert.NoError(t, err, raw)
		}
	})

	rejected := map[string]string{
		"not json":           `not json`,
		"null":               `null`,
		"array":              `[1,2,3]`,
		"missing score":      `{"classification":"Safe","explanation":"e","recommended_action":"a"}`,
		"null explanation":   `{"risk_score":1,"classification":"Safe","explanation":null,"recommended_action":"a"}`,
		"missing action":     `{"risk_score":1,"classification":"Safe","explanation":"e"}`,
		"negative score":     `{"risk_score":-1,"classification":"Safe","explanation":"e","recommended_action":"a"}`,
		"score above 100":    `{"risk_score":101,"classification":"Scam","explanation":"e","recommended_action":"a"}`,
		"fractional score":   `{"risk_score":50.5,"classification":"Suspicious","explanation":"e","recommended_action":"a"}`,
		"string score":       `{"risk_score":"90","classification":"Scam","explanation":"e","recommended_action":"a"}`,
		"numeric class":      `{"risk_score":90,"classification":3,"explanation":"e","recommended_action":"a"}`,
		"trailing object":    `{"risk_score":90,"classification":"Scam","explanation":"e","recommended_action":"a"} {}`,
		"fenced by markdown": "```json\n{\"risk_score\":90}\n```",
	}
	for name, raw := range rejected {
		t.Run("rejects "+name, func(t *testing.T) {
			res, err := ParseResult(raw)
			assert.Nil(t, res)
			assert.ErrorIs(t, err, ErrInvalidResult)
		})
	}
}

func TestParseResultNamesMissingFields(t *testing.T) {
	_, err := ParseResult(`{"risk_score":10}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "classification, explanation, recommended_action")
}

func TestImageIsImage(t *testing.T) {
	assert.True(t, Image{MIMEType: "image/png"}.IsImage())
	assert.True(t, Image{MIMEType: "IMAGE/JPEG"}.IsImage())
	assert.False(t, Image{MIMEType: "application/pdf"}.IsImage())
	assert.False(t, Image{MIMEType: ""}.IsImage())
	assert.False(t, Image{MIMEType: "text/image"}.IsImage())
}

func TestUpstreamError(t *testing.T) {
	err := &UpstreamError{Kind: KindURL, Err: ErrInvalidResult}
	assert.Equal(t, "analyze URL: invalid model result", err.Error())
	assert.ErrorIs(t, err, ErrInvalidResult)
}
