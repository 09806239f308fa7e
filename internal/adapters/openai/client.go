package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/utils"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// Client is an implementation of the Classifier interface using OpenAI
type Client struct {
	client        *openai.Client
	modelName     string
	maxTokens     int
	temperature   float32
	topP          float32
	maxTextSize   int
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
	promptFormat  string
}

// verdictResponse is the structured verdict requested from the LLM. It
// mirrors the prediction service's response shape.
type verdictResponse struct {
	Prediction int             `json:"prediction"`
	Confidence core.Confidence `json:"confidence"`
	RiskLevel  core.RiskLevel  `json:"risk_level"`
}

// NewClient creates a new OpenAI classifier
func NewClient(
	apiKey string,
	modelName string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) *Client {
	client := openai.NewClient(apiKey)

	return &Client{
		client:        client,
		modelName:     modelName,
		maxTokens:     maxTokens,
		temperature:   temperature,
		topP:          topP,
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
	}
}

// Classify analyzes email text for phishing via OpenAI
func (c *Client) Classify(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
	processedText := c.textProcessor.ProcessText(emailText, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, processedText)

	req := openai.ChatCompletionRequest{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a phishing detection system. Respond only with JSON.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
		TopP:        c.topP,
	}
	responseFormat := openai.ChatCompletionResponseFormat{
		Type: "json",
	}
	req.ResponseFormat = &responseFormat

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, &core.TransportError{Op: "openai", Err: err}
	}

	if len(resp.Choices) == 0 {
		return nil, &core.ServiceError{Op: "openai", Err: errors.New("empty response from OpenAI")}
	}

	verdict, err := parseVerdict(resp.Choices[0].Message.Content)
	if err != nil {
		return nil, &core.ServiceError{Op: "openai", Err: err}
	}

	return &core.AnalysisResult{
		Prediction:   verdict.Prediction,
		Confidence:   verdict.Confidence,
		RiskLevel:    verdict.RiskLevel,
		Source:       core.SourceOpenAI,
		Model:        c.modelName,
		AnalyzedAt:   time.Now(),
		ProcessingID: resp.ID,
	}, nil
}

// parseVerdict parses the LLM's JSON verdict, tolerating prose around the
// JSON object
func parseVerdict(responseText string) (*verdictResponse, error) {
	var verdict verdictResponse
	if err := json.Unmarshal([]byte(responseText), &verdict); err == nil {
		return &verdict, nil
	}

	// Try to extract JSON from the text response
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
