package analysis

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
)

// Kind identifies which of the three request shapes is being analyzed.
type Kind string

const (
	KindText  Kind = "message"
	KindImage Kind = "image"
	KindURL   Kind = "URL"
)

// Classifications the model is asked to pick from. Results are not
// restricted to these values.
const (
	ClassificationSafe       = "Safe"
	ClassificationSuspicious = "Suspicious"
	ClassificationScam       = "Scam"
)

const (
	MinRiskScore = 0
	MaxRiskScore = 100
)

// Image is an uploaded picture relayed to the model as-is.
type Image struct {
	Data     []byte
	MIMEType string
}

// IsImage reports whether the declared MIME type is an image type.
func (i Image) IsImage() bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(i.MIMEType)), "image/")
}

// Prompt is everything the external model receives for one analysis.
type Prompt struct {
	Kind   Kind
	System string
	Text   string
	Image  *Image
}

// Result is the four-field assessment returned to API callers.
type Result struct {
	RiskScore         int    `json:"risk_score"`
	Classification    string `json:"classification"`
	Explanation       string `json:"explanation"`
	RecommendedAction string `json:"recommended_action"`
}

// ParseResult decodes raw model output and rejects anything that does not
// carry all four fields or whose score falls outside [0,100].
func ParseResult(raw string) (*Result, error) {
	var wire struct {
		RiskScore         *float64 `json:"risk_score"`
		Classification    *string  `json:"classification"`
		Explanation       *string  `json:"explanation"`
		RecommendedAction *string  `json:"recommended_action"`
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("%w: decode: %v", ErrInvalidResult, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after JSON object", ErrInvalidResult)
	}

	var missing []string
	if wire.RiskScore == nil {
		missing = append(missing, "risk_score")
	}
	if wire.Classification == nil {
		missing = append(missing, "classification")
	}
	if wire.Explanation == nil {
		missing = append(missing, "explanation")
	}
	if wire.RecommendedAction == nil {
		missing = append(missing, "recommended_action")
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing field(s) %s", ErrInvalidResult, strings.Join(missing, ", "))
	}

	score := *wire.RiskScore
	if score != math.Trunc(score) {
		return nil, fmt.Errorf("%w: risk_score %v is not an integer", ErrInvalidResult, score)
	}
	if score < MinRiskScore || score > MaxRiskScore {
		return nil, fmt.Errorf("%w: risk_score %v out of range [%d,%d]", ErrInvalidResult, score, MinRiskScore, MaxRiskScore)
	}

	return &Result{
		RiskScore:         int(score),
		Classification:    *wire.Classification,
		Explanation:       *wire.Explanation,
		RecommendedAction: *wire.RecommendedAction,
	}, nil
}
