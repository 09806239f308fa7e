package bedrock

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/bedrockruntime"
	"github.com/google/uuid"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/utils"
	"go.uber.org/zap"
)

// Client is an implementation of the Classifier interface using Amazon Bedrock
type Client struct {
	client        *bedrockruntime.Client
	modelID       string
	maxTokens     int
	temperature   float32
	topP          float32
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

// NewClient creates a new Bedrock classifier
func NewClient(
	client *bedrockruntime.Client,
	modelID string,
	maxTokens int,
	temperature float32,
	topP float32,
	maxTextSize int,
	textProcessor *utils.TextProcessor,
	logger *zap.Logger,
) *Client {
	return &Client{
		client:        client,
		modelID:       modelID,
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

// Classify analyzes email text for phishing via Bedrock
func (c *Client) Classify(ctx context.Context, emailText string) (*core.AnalysisResult, error) {
	processedText := c.textProcessor.ProcessText(emailText, c.maxTextSize)
	prompt := fmt.Sprintf(c.promptFormat, processedText)

	var payload []byte
	var err error

	if c.isAnthropicModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":               prompt,
			"max_tokens_to_sample": c.maxTokens,
			"temperature":          c.temperature,
			"top_p":                c.topP,
		})
	} else if c.isAmazonTitanModel() {
		payload, err = json.Marshal(map[string]interface{}{
			"inputText": prompt,
			"textGenerationConfig": map[string]interface{}{
				"maxTokenCount": c.maxTokens,
				"temperature":   c.temperature,
				"topP":          c.topP,
			},
		})
	} else {
		payload, err = json.Marshal(map[string]interface{}{
			"prompt":      prompt,
			"max_tokens":  c.maxTokens,
			"temperature": c.temperature,
			"top_p":       c.topP,
		})
	}
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request payload: %w", err)
	}

	resp, err := c.client.InvokeModel(ctx, &bedrockruntime.InvokeModelInput{
		ModelId:     &c.modelID,
		Body:        payload,
		Accept:      aws.String("application/json"),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return nil, &core.TransportError{Op: "bedrock", Err: err}
	}

	responseText, err := c.extractResponseText(resp.Body)
	if err != nil {
		return nil, &core.ServiceError{Op: "bedrock", Err: err}
	}

	verdict, err := parseVerdict(responseText)
	if err != nil {
		return nil, &core.ServiceError{Op: "bedrock", Err: err}
	}

	return &core.AnalysisResult{
		Prediction:   verdict.Prediction,
		Confidence:   verdict.Confidence,
		RiskLevel:    verdict.RiskLevel,
		Source:       core.SourceBedrock,
		Model:        c.modelID,
		AnalyzedAt:   time.Now(),
		ProcessingID: uuid.NewString(),
	}, nil
}

// extractResponseText pulls the generated text out of the model-specific
// response envelope
func (c *Client) extractResponseText(body []byte) (string, error) {
	if c.isAnthropicModel() {
		var claudeResp struct {
			Completion string `json:"completion"`
		}
		if err := json.Unmarshal(body, &claudeResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Claude response: %w", err)
		}
		return claudeResp.Completion, nil
	}

	if c.isAmazonTitanModel() {
		var titanResp struct {
			Results []struct {
				OutputText string `json:"outputText"`
			} `json:"results"`
		}
		if err := json.Unmarshal(body, &titanResp); err != nil {
			return "", fmt.Errorf("failed to unmarshal Titan response: %w", err)
		}
		if len(titanResp.Results) == 0 {
			return "", errors.New("empty response from Titan model")
		}
		return titanResp.Results[0].OutputText, nil
	}

	var genericResp struct {
		Output   string `json:"output"`
		Text     string `json:"text"`
		Response string `json:"response"`
	}
	if err := json.Unmarshal(body, &genericResp); err != nil {
		return "", fmt.Errorf("failed to unmarshal generic response: %w", err)
	}
	switch {
	case genericResp.Output != "":
		return genericResp.Output, nil
	case genericResp.Text != "":
		return genericResp.Text, nil
	case genericResp.Response != "":
		return genericResp.Response, nil
	}
	return string(body), nil
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

// isAnthropicModel checks if the model is an Anthropic Claude model
func (c *Client) isAnthropicModel() bool {
	return strings.HasPrefix(c.modelID, "anthropic.claude")
}

// isAmazonTitanModel checks if the model is an Amazon Titan model
func (c *Client) isAmazonTitanModel() bool {
	return strings.HasPrefix(c.modelID, "amazon.titan")
}
