package prompt

import (
	"fmt"

	"github.com/sashabaranov/go-openai/jsonschema"

	domain "github.com/bryanwahyu/sentinel-ai/internal/domain/analysis"
)

// SchemaName is the name the structured-output schema is registered under.
const SchemaName = "analysis_result"

// SystemInstruction is shared by every analysis kind.
func SystemInstruction() string {
	return `You are Sentinel AI, an expert cybersecurity AI specialized in real-time scam and fraud detection.
Analyze the provided user message (SMS, email, WhatsApp, or any text context) for potential threats.
Specifically, look for:
- Phishing links or suspicious URLs.
- Urgent threats or fake urgency (e.g., "account suspended", "act immediately").
- Fake bank messages or unauthorized login alerts.
- Requests for OTPs, passwords, personal data, or money transfers.
- Suspicious tone patterns or poor grammar typical of scams.
- Social engineering tactics.

Return a JSON object matching this exact schema:
{
  "risk_score": integer (0 to 100),
  "classification": string ("Safe", "Suspicious", or "Scam"),
  "explanation": string (A concise, clear explanation of why you gave this score and classification),
  "recommended_action": string (A clear, actionable recommendation for the user)
}`
}

const imageTask = `Analyze this image (which could be a screenshot of a text message, email, or a suspicious website/app, or a photo of a person) for scams or fraud.
1. Extract any relevant text from the image, understand the context, and identify any phishing links, urgency, fake bank alerts, or social engineering tactics.
2. Inspect the image itself for signs that it was generated or manipulated by AI (deepfake): unnatural skin or background textures, anatomical inconsistencies such as malformed hands, teeth or ears, lighting and shadow directions that do not match, and blending or edge artifacts around faces and objects.
Weigh both the textual scam indicators and the visual manipulation signals into the single risk_score, and mention any manipulation evidence in the explanation.`

const urlTask = `Analyze the following URL for phishing or fraud. The URL is not visited; judge it from its text alone.
Check for phishing indicators, typosquatting of well-known brands (character swaps such as 0 for o or l for 1, extra hyphens or words, look-alike domains), heuristics associated with known malicious domains (suspicious TLDs, URL shorteners, raw IP hosts, excessive subdomains), and suspicious query strings (embedded credentials, redirect parameters, encoded payloads).
Penalize the risk_score heavily when any of these signals are present.

URL: %s`

// ForText frames a raw message for analysis.
func ForText(message string) domain.Prompt {
	return domain.Prompt{Kind: domain.KindText, System: SystemInstruction(), Text: message}
}

// ForImage frames an uploaded image for analysis.
func ForImage(img domain.Image) domain.Prompt {
	return domain.Prompt{Kind: domain.KindImage, System: SystemInstruction(), Text: imageTask, Image: &img}
}

// ForURL frames a URL string for analysis.
func ForURL(url string) domain.Prompt {
	return domain.Prompt{Kind: domain.KindURL, System: SystemInstruction(), Text: fmt.Sprintf(urlTask, url)}
}

// ResultSchema is the output schema the model is required to follow.
func ResultSchema() jsonschema.Definition {
	return jsonschema.Definition{
		Type: jsonschema.Object,
		Properties: map[string]jsonschema.Definition{
			"risk_score": {
				Type:        jsonschema.Integer,
				Description: "Scam probability score from 0 to 100",
			},
			"classification": {
				Type:        jsonschema.String,
				Description: "One of Safe, Suspicious or Scam",
			},
			"explanation": {
				Type:        jsonschema.String,
				Description: "Why this score and classification were given",
			},
			"recommended_action": {
				Type:        jsonschema.String,
				Description: "Actionable recommendation for the user",
			},
		},
		Required:             []string{"risk_score", "classification", "explanation", "recommended_action"},
		AdditionalProperties: false,
	}
}
