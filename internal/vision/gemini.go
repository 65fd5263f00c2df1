package vision

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/medassist-labs/medassist/internal/domain"
	"google.golang.org/genai"
)

// SystemPrompt steers assistant replies. Safety rules are part of the prompt
// contract: the assistant must never change prescribed dosing.
const SystemPrompt = `
You are MedAssist — a trustworthy, empathetic assistant for older adults managing medications.
Tone & Behavior:
- Warm, calm, emphatic, and friendly.
- Use short sentences.
- Repeat critical information (med name, dosage) twice.
- Always ask for confirmation.
- Privacy focused: reassure the user their health data is protected.
Safety Rules:
- NEVER change prescribed dosing.
- If the user asks to change a dose, state clearly: "I cannot change your instructions. Please contact your clinical prescriber or pharmacy immediately."
`

// GeminiClient implements Classifier, Synthesizer, and Assistant against the
// hosted Gemini API.
type GeminiClient struct {
	client     *genai.Client
	model      string
	imageModel string
}

// NewGeminiClient creates a client for the hosted Gemini API.
func NewGeminiClient(ctx context.Context, apiKey, model, imageModel string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	return &GeminiClient{
		client:     client,
		model:      model,
		imageModel: imageModel,
	}, nil
}

// VerifyContainer submits one JPEG frame plus the expected container
// description and returns the model's structured judgement. All failures
// degrade to the deterministic negative result.
func (c *GeminiClient) VerifyContainer(ctx context.Context, image []byte, expectedDescription string) domain.VerificationResult {
	prompt := fmt.Sprintf(
		`Identify this medication container. Does it match this description: %q? Return JSON matching: { "match": boolean, "confidence": number, "label": string }`,
		expectedDescription,
	)

	contents := []*genai.Content{
		genai.NewContentFromParts([]*genai.Part{
			genai.NewPartFromBytes(image, "image/jpeg"),
			genai.NewPartFromText(prompt),
		}, genai.RoleUser),
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"match":      {Type: genai.TypeBoolean},
				"confidence": {Type: genai.TypeNumber},
				"label":      {Type: genai.TypeString},
			},
			Required: []string{"match", "confidence", "label"},
		},
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		slog.Warn("Container verification call failed", "error", err)
		return negativeResult(labelError)
	}

	return parseVerification(resp.Text())
}

// parseVerification decodes the model's JSON judgement, normalizing
// malformed responses to the negative fallback.
func parseVerification(text string) domain.VerificationResult {
	var result domain.VerificationResult
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		slog.Warn("Container verification returned malformed JSON", "error", err)
		return negativeResult(labelError)
	}

	if result.Label == "" {
		result.Label = labelUnknown
	}
	if result.Confidence < 0 {
		result.Confidence = 0
	}
	if result.Confidence > 1 {
		result.Confidence = 1
	}
	return result
}

// GenerateContainerImage renders a reference photo of the medication bottle.
// The prompt demands high-contrast bold label text for accessibility.
func (c *GeminiClient) GenerateContainerImage(ctx context.Context, name, description string) ([]byte, error) {
	prompt := fmt.Sprintf(
		`A macro product photograph of a clinical medication bottle which is %s. The bottle has a high-contrast white label with the word %q printed in massive, bold, ultra-legible black letters. The text %q takes up 50%% of the label space. Studio medical lighting, high fidelity, 4k.`,
		description, name, name,
	)

	resp, err := c.client.Models.GenerateImages(ctx, c.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		OutputMIMEType: "image/jpeg",
		AspectRatio:    "1:1",
	})
	if err != nil {
		return nil, fmt.Errorf("generate container image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil || len(resp.GeneratedImages[0].Image.ImageBytes) == 0 {
		return nil, ErrUnavailable
	}

	return resp.GeneratedImages[0].Image.ImageBytes, nil
}

// Reply produces an assistant response for a free-text prompt. Failures
// degrade to a fixed apology string rather than an error.
func (c *GeminiClient) Reply(ctx context.Context, prompt string) string {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(SystemPrompt, genai.RoleUser),
		Temperature:       genai.Ptr(float32(0.7)),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), config)
	if err != nil {
		slog.Warn("Assistant call failed", "error", err)
		return fallbackReply
	}
	if text := resp.Text(); text != "" {
		return text
	}
	return "I'm sorry, I couldn't process that."
}
