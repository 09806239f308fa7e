package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/utils"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client is an implementation of the Classifier interface using Google Gemini
type Client struct {
	client        *genai.Client
	model         *genai.GenerativeModel
	modelName     string
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// verdictResponse is the structured verdict requested from the LLM
type verdictResponse struct {
	Prediction int             `json:"prediction"`
	Confidence core.Confidence `json:"confidence"`
	RiskLevel  core.RiskLevel  `json:"risk_level"`
}

// NewClient creates a new Gemini classifier
func NewClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) (*Client, error) {
	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SetTemperature(temperature)
	model.SetTopP(topP)
	model.SetMaxOutputTokens(int32(maxTokens))

	return &Client{
		client:        client,
		model:         model,
		modelName:     modelName,
		maxTextSize:   maxTextSize,
		logger:        logger,
		textProcessor: textProcessor,
		promptFormat: `You are a phishing detection system. Analyze the following email text and decide whether it is a phishing attempt.
Respond with a JSON object containing:
- prediction: 1 if the email is phishing, 0 if it is not
- confidence: an object with "phishing" and "safe", each a number between 0 and 1
- risk_level: one of "LOW", "MEDIUM" or "HIGH"

Email text:
%s

Respond only with the JSON object and nothing else.`,
	}, nil
}

// Close closes the Gemini client
func (c *Client) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// Classify analyzes email text for phishing via Gemini
func (c *Client) Classify(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
	processedText := c.textProcessor.ProcessText(emailText, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, processedText)

	resp, err := c.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, &core.TransportError{Op: "gemini", Err: err}
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, &core.ServiceError{Op: "gemini", Err: errors.New("empty response from Gemini")}
	}

	var responseText string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText += string(text)
		}
	}

	verdict, err := parseVerdict(responseText)
	if err != nil {
		return nil, &core.ServiceError{Op: "gemini", Err: err}
	}

	c.logger.Debug("Gemini verdict",
		zap.Int("prediction", verdict.Prediction),
		zap.String("risk_level", string(verdict.RiskLevel)))

	return &core.AnalysisResult{
		Prediction:   verdict.Prediction,
		Confidence:   verdict.Confidence,
		RiskLevel:    verdict.RiskLevel,
		Source:       core.SourceGemini,
		Model:        c.modelName,
		AnalyzedAt:   time.Now(),
		ProcessingID: uuid.NewString(),
	}, nil
}

// parseVerdict parses the LLM's JSON verdict, tolerating prose around the
// JSON object
func parseVerdict(responseText string) (*verdictResponse, error) {
	var verdict verdictResponse
	if err := json.Unmarshal([]byte(responseText), &verdict); err == nil {
		return &verdict, nil
	}

	jsonStart := -1
	jsonEnd := -1
	for i := 0; i < len(responseText); i++ {
		if responseText[i] == '{' {
			jsonStart = i
			break
		}
	}
	for i := len(responseText) - 1; i >= 0; i-- {
		if responseText[i] == '}' {
			jsonEnd = i + 1
			break
		}
	}

	if jsonStart < 0 || jsonEnd <= jsonStart {
		return nil, errors.New("failed to extract JSON from LLM response")
	}
	var extracted verdictResponse
	if err := json.Unmarshal([]byte(responseText[jsonStart:jsonEnd]), &extracted); err != nil {
		return nil, fmt.Errorf("failed to parse LLM response as JSON: %w", err)
	}
	return &extracted, nil
}
