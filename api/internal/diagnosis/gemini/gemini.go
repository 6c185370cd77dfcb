package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"agribazaar/api/internal/diagnosis"
	"agribazaar/api/internal/util"
)

const DefaultModel = "gemini-2.5-flash"

// Engine answers identification requests with a Gemini model. The model is
// asked for the same suggestions JSON the identification service returns,
// so both engines share one normalization path.
// The model is fixed at construction; WithModel makes a copy.
type Engine struct {
	APIKey string
	model  string
}

var _ diagnosis.ModelEngine = (*Engine)(nil)

func New(apiKey, model string) *Engine {
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	return &Engine{
		APIKey: strings.TrimSpace(apiKey),
		model:  strings.TrimSpace(model),
	}
}

func (e *Engine) Name() string  { return "gemini" }
func (e *Engine) Model() string { return e.model }

// WithModel — копия движка с другой моделью (/engine gemini <model>).
func (e *Engine) WithModel(m string) diagnosis.Engine {
	cp := *e
	if m = strings.TrimSpace(m); m != "" {
		cp.model = m
	}
	return &cp
}

const systemPrompt = `You are a plant and crop identification module. Look at the photo and identify the plant.
Return ONLY JSON of the form:
{
  "suggestions": [
    {
      "plant_name": string,          // scientific name
      "probability": number,         // 0..1
      "plant_details": {
        "common_names": [string],
        "url": string,               // reference page, may be empty
        "wiki_description": {"value": string},
        "taxonomy": {"family": string, "genus": string, "order": string},
        "synonyms": [string]
      }
    }
  ]
}
Order suggestions by probability, best first. If no plant is visible return {"suggestions": []}.
Requested details: `

func (e *Engine) Identify(ctx context.Context, in diagnosis.IdentifyRequest) (diagnosis.IdentifyResponse, error) {
	model := e.model
	if e.APIKey == "" {
		return diagnosis.IdentifyResponse{}, diagnosis.ErrNoCredential
	}
	if len(in.Images) == 0 {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("gemini: %w: no image", diagnosis.ErrPermanent)
	}
	img, hint, err := util.DecodeBase64MaybeDataURL(in.Images[0])
	if err != nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("gemini: %w: bad base64: %v", diagnosis.ErrPermanent, err)
	}

	cl, err := genai.NewClient(ctx, option.WithAPIKey(e.APIKey))
	if err != nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("gemini: %w: client: %v", diagnosis.ErrPermanent, err)
	}
	defer cl.Close()

	m := cl.GenerativeModel(model)
	if m == nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature:      ptrFloat32(0),
		ResponseMIMEType: "application/json",
	}
	m.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt + strings.Join(in.PlantDetails, ", "))},
	}

	resp, err := m.GenerateContent(ctx,
		genai.Text("Identify the plant. Answer strictly with JSON."),
		&genai.Blob{MIMEType: util.PickMIME("", hint, img), Data: img},
	)
	if err != nil {
		return diagnosis.IdentifyResponse{}, statusError(err)
	}
	return decodeSuggestions(firstText(resp))
}

// decodeSuggestions разбирает текст модели (возможно в ```json ... ```).
func decodeSuggestions(txt string) (diagnosis.IdentifyResponse, error) {
	txt = util.StripCodeFences(strings.TrimSpace(txt))
	if txt == "" {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("gemini: %w: empty response", diagnosis.ErrMalformedResponse)
	}
	var out diagnosis.IdentifyResponse
	if err := json.Unmarshal([]byte(txt), &out); err != nil {
		return diagnosis.IdentifyResponse{}, fmt.Errorf("gemini: %w: %v", diagnosis.ErrMalformedResponse, err)
	}
	return out, nil
}

func statusError(err error) error {
	var ge *googleapi.Error
	if errors.As(err, &ge) {
		return &diagnosis.StatusError{Engine: "gemini", Code: ge.Code, Body: ge.Message}
	}
	return fmt.Errorf("gemini: %w", err)
}

func firstText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				return string(t)
			}
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
