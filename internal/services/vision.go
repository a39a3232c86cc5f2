package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/Jondude1/retro-pricer/internal/metrics"
	"github.com/Jondude1/retro-pricer/internal/models"
)

const (
	anthropicURL     = "https://api.anthropic.com/v1/messages"
	anthropicModel   = "claude-haiku-4-5-20251001"
	anthropicVersion = "2023-06-01"
	visionTimeout    = 30 * time.Second
	visionMaxTokens  = 512

	visionSystemPrompt = "You are a retro video game condition expert helping a reseller " +
		"evaluate games at pawn shops. Your job is to identify the game and assess its " +
		"physical condition from photos. Be accurate — the user is making a buy decision. " +
		"If you cannot confidently identify the game or assess condition, ask for a " +
		"specific additional photo."
)

// VisionService identifies games and grades their condition from photos via
// the Anthropic Messages API.
type VisionService struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
	enabled  bool
}

func NewVisionService(apiKey string) *VisionService {
	svc := &VisionService{
		apiKey:   apiKey,
		model:    anthropicModel,
		endpoint: anthropicURL,
		client:   &http.Client{Timeout: visionTimeout},
		enabled:  apiKey != "",
	}
	if svc.enabled {
		log.Printf("Vision service: enabled (model=%s)", svc.model)
	} else {
		log.Printf("Vision service: disabled (no ANTHROPIC_API_KEY)")
	}
	return svc
}

// IsEnabled returns whether the identifier is available. When it is not,
// callers must surface "cannot proceed" rather than fabricate a result.
func (s *VisionService) IsEnabled() bool {
	return s.enabled
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	System    string             `json:"system,omitempty"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string           `json:"role"`
	Content []anthropicBlock `json:"content"`
}

type anthropicBlock struct {
	Type   string                `json:"type"`
	Text   string                `json:"text,omitempty"`
	Source *anthropicImageSource `json:"source,omitempty"`
}

type anthropicImageSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Identify sends one photo for game identification and condition
// assessment.
func (s *VisionService) Identify(ctx context.Context, image []byte, mimeType string) (*models.ScanResult, error) {
	prompt := fmt.Sprintf(`Analyze this image of a video game or console.

Respond ONLY with a valid JSON object using this exact schema:
{
  "identified": true or false,
  "game_name": "exact game title or empty string",
  "platform_key": one of [%s] or empty string,
  "platform_display": "human-readable console name or empty string",
  "condition": "loose" | "cib" | "cib_incomplete" | "new_sealed" | "damaged" | "unknown",
  "condition_grade": "Excellent" | "Good" | "Fair" | "Poor" | "",
  "condition_notes": "brief description of physical condition — label wear, case cracks, yellowing, etc.",
  "confidence": "high" | "medium" | "low",
  "needs_more_photos": true or false,
  "photo_request": "specific instruction for what photo to take next, or empty string",
  "resale_notes": "1-2 sentences on sellability, common vs rare, demand level"
}

Condition definitions:
- loose: cartridge or disc only, no box or manual
- cib: complete in box (has original box + manual + game)
- cib_incomplete: has box but missing manual, or vice versa
- new_sealed: factory sealed
- damaged: significant physical damage affecting value
- unknown: cannot determine from this photo`, platformKeyOptions())

	return s.scan(ctx, image, mimeType, visionSystemPrompt, prompt)
}

// IdentifyFollowUp sends an additional photo along with the previous
// assessment so the model can finalize its answer.
func (s *VisionService) IdentifyFollowUp(ctx context.Context, image []byte, mimeType string, prev *models.ScanResult) (*models.ScanResult, error) {
	gameName := prev.GameName
	if gameName == "" {
		gameName = "unknown game"
	}
	platform := prev.PlatformDisplay
	if platform == "" {
		platform = "unknown console"
	}
	condition := prev.Condition
	if condition == "" {
		condition = "unknown"
	}
	photoRequest := prev.PhotoRequest
	if photoRequest == "" {
		photoRequest = "additional view"
	}

	prompt := fmt.Sprintf(`This is a follow-up photo for: %s (%s).

Previous assessment: condition=%s, you requested: %q

Based on this additional photo, provide a final assessment. Respond ONLY with valid JSON:
{
  "identified": true or false,
  "game_name": %q,
  "platform_key": one of [%s] or empty string,
  "platform_display": %q,
  "condition": "loose" | "cib" | "cib_incomplete" | "new_sealed" | "damaged" | "unknown",
  "condition_grade": "Excellent" | "Good" | "Fair" | "Poor" | "",
  "condition_notes": "updated condition description incorporating both photos",
  "confidence": "high" | "medium" | "low",
  "needs_more_photos": true or false,
  "photo_request": "specific next photo request or empty string",
  "resale_notes": "1-2 sentences on sellability"
}`, gameName, platform, condition, photoRequest, gameName, platformKeyOptions(), platform)

	return s.scan(ctx, image, mimeType, "", prompt)
}

func (s *VisionService) scan(ctx context.Context, image []byte, mimeType, system, prompt string) (*models.ScanResult, error) {
	if !s.enabled {
		return nil, fmt.Errorf("vision service is not configured")
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	if mimeType == "" {
		mimeType = "image/jpeg"
	}

	reqBody := anthropicRequest{
		Model:     s.model,
		MaxTokens: visionMaxTokens,
		System:    system,
		Messages: []anthropicMessage{{
			Role: "user",
			Content: []anthropicBlock{
				{
					Type: "image",
					Source: &anthropicImageSource{
						Type:      "base64",
						MediaType: mimeType,
						Data:      base64.StdEncoding.EncodeToString(image),
					},
				},
				{Type: "text", Text: prompt},
			},
		}},
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", s.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
	req.Header.Set("content-type", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		metrics.VisionRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("vision API request failed: %w", err)
	}
	defer resp.Body.Close()
	metrics.VisionLatency.Observe(time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		metrics.VisionRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		metrics.VisionRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("vision API returned status %d", resp.StatusCode)
	}

	var apiResp anthropicResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		metrics.VisionRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(apiResp.Content) == 0 {
		metrics.VisionRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("vision API returned no content")
	}

	raw := stripCodeFences(strings.TrimSpace(apiResp.Content[0].Text))

	var result models.ScanResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		metrics.VisionRequestsTotal.WithLabelValues("failed").Inc()
		return nil, fmt.Errorf("unexpected vision response: %w", err)
	}

	metrics.VisionRequestsTotal.WithLabelValues("success").Inc()
	return &result, nil
}

// stripCodeFences unwraps a ```json ... ``` fenced block if the model
// wrapped its answer in one.
func stripCodeFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	parts := strings.Split(text, "```")
	if len(parts) < 2 {
		return text
	}
	inner := parts[1]
	inner = strings.TrimPrefix(inner, "json")
	return strings.TrimSpace(inner)
}

func platformKeyOptions() string {
	keys := models.PlatformKeys()
	quoted := make([]string, len(keys))
	for i, k := range keys {
		quoted[i] = fmt.Sprintf("%q", k)
	}
	return strings.Join(quoted, ", ")
}
