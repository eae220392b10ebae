package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"
)

// plannerInstructions is the system prompt for the repair planner model.
// The response schema is enforced separately via structured output; the
// prose here steers content, not shape.
const plannerInstructions = `You are a repair planner for tire manufacturing equipment.
Generate a repair plan with tasks, timeline, and resource allocation.
Return the response as valid JSON matching the work order schema.

Output JSON with these fields:
- workOrderNumber: string (format: "WO-YYYYMMDD-XXXX")
- machineId: string (from the fault)
- title: string (brief description)
- description: string (detailed description)
- type: "corrective" | "preventive" | "emergency"
- priority: "critical" | "high" | "medium" | "low"
- status: "pending"
- assignedTo: string (technician id) or null
- notes: string
- estimatedDuration: integer (total minutes, e.g. 90)
- partsUsed: [{ partId, partNumber, quantity }]
- tasks: [{ sequence, title, description, estimatedDurationMinutes (integer), requiredSkills, safetyNotes }]

IMPORTANT: All duration fields must be integers representing minutes (e.g. 90), not strings like "90 minutes".

Rules:
- Assign the most qualified available technician based on skill match
- Include only relevant parts from the provided inventory; use empty array if none needed
- Tasks must be ordered by sequence and be actionable
- Set priority based on fault severity (critical/high for severe faults)
- Include safety notes for hazardous tasks

Return ONLY valid JSON, no markdown code blocks or extra text.`

// GeminiConfig configures the Gemini-backed client.
type GeminiConfig struct {
	APIKey          string
	Model           string
	Timeout         time.Duration
	MaxOutputTokens int32
}

// DefaultGeminiConfig returns sensible defaults for repair planning.
func DefaultGeminiConfig(apiKey string) GeminiConfig {
	return GeminiConfig{
		APIKey:          apiKey,
		Model:           "gemini-2.5-flash",
		Timeout:         2 * time.Minute,
		MaxOutputTokens: 8192,
	}
}

// GeminiClient implements Client using the Google GenAI SDK with
// schema-constrained JSON output.
type GeminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	maxOut  int32
	logger  *zap.Logger
}

var _ Client = (*GeminiClient)(nil)

// NewGeminiClient creates a Gemini client. The API key is required.
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger) (*GeminiClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gemini-2.5-flash"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	maxOut := cfg.MaxOutputTokens
	if maxOut <= 0 {
		maxOut = 8192
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: cfg.APIKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &GeminiClient{
		client:  client,
		model:   model,
		timeout: timeout,
		maxOut:  maxOut,
		logger:  logger,
	}, nil
}

// Complete sends a prompt with the default planner instructions.
func (c *GeminiClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.CompleteWithSystem(ctx, "", prompt)
}

// CompleteWithSystem sends a prompt with a system message and returns the
// raw response text. Output is constrained to the work order response
// schema, though callers must still treat the reply as untrusted.
func (c *GeminiClient) CompleteWithSystem(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	// Apply the configured timeout only when the caller brought no deadline.
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = plannerInstructions
	}

	start := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model,
		genai.Text(userPrompt),
		&genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
			Temperature:       genai.Ptr[float32](0.2),
			MaxOutputTokens:   c.maxOut,
			ResponseMIMEType:  "application/json",
			ResponseSchema:    WorkOrderResponseSchema(),
		})
	if err != nil {
		c.logger.Error("gemini request failed",
			zap.String("model", c.model),
			zap.Duration("elapsed", time.Since(start)),
			zap.Error(err))
		return "", fmt.Errorf("gemini request failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("no completion returned")
	}

	c.logger.Debug("gemini request complete",
		zap.String("model", c.model),
		zap.Duration("elapsed", time.Since(start)),
		zap.Int("response_len", len(text)))
	return text, nil
}
