package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mikey/email-threat-widget/internal/adapters/notify"
	"github.com/mikey/email-threat-widget/internal/adapters/term"
	"github.com/mikey/email-threat-widget/internal/config"
	"github.com/mikey/email-threat-widget/internal/core"
	"github.com/mikey/email-threat-widget/internal/factory"
	"github.com/mikey/email-threat-widget/internal/heuristic"
	"github.com/mikey/email-threat-widget/internal/logging"
	"github.com/mikey/email-threat-widget/internal/utils"
	"github.com/mikey/email-threat-widget/internal/widget"
	"go.uber.org/zap"
)

var (
	// Classifier flags
	provider    = flag.String("provider", "remote", "Classifier provider (remote, openai, gemini, bedrock, offline)")
	baseURL     = flag.String("base-url", "http://127.0.0.1:5000", "Base URL of the prediction service")
	timeout     = flag.Duration("timeout", 0, "HTTP timeout for the prediction service (0 = none)")
	maxTokens   = flag.Int("max-tokens", 500, "Maximum tokens for LLM response")
	temperature = flag.Float64("temperature", 0.1, "Temperature for LLM generation")
	topP        = flag.Float64("top-p", 0.9, "Top-p for LLM generation")
	maxTextSize = flag.Int("max-text-size", 4096, "Maximum email text size to send to an LLM")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Input flags
	inputText  = flag.String("text", "", "Email text to analyze (overrides -file and stdin)")
	inputFile  = flag.String("file", "", "Input file with email text (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	var cfg *config.Config
	var err error

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Load configuration from file if specified
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		// Create config from command line flags
		cfg = createConfigFromFlags()
	}

	// Initialize classifier
	textProcessor := utils.NewTextProcessor(logger)
	classifierFactory := factory.NewClassifierFactory(cfg, logger, textProcessor)
	classifier, err := classifierFactory.CreateClassifier()
	if err != nil {
		logger.Fatal("Failed to create classifier", zap.Error(err))
	}

	// Read email text
	emailText, err := readEmailText()
	if err != nil {
		logger.Fatal("Failed to read email text", zap.Error(err))
	}

	fmt.Printf("\n=== Analysis ===\n")
	fmt.Printf("Provider: %s\n", cfg.GetString("classifier.provider"))
	fmt.Printf("Text length: %d bytes\n", len(emailText))

	// One-shot analysis: no cache, no notifications
	service := core.NewAnalysisService(classifier, nil, notify.NewNoopNotifier(), logger, false, 0)
	fallback := heuristic.NewClassifier(textProcessor, logger)

	var health core.HealthChecker
	if checker, ok := classifier.(core.HealthChecker); ok {
		health = checker
	}

	presenter := term.NewPresenter(os.Stdout)
	w := widget.New(service, fallback, health, presenter, logger)

	startTime := time.Now()
	w.Analyze(context.Background(), emailText)
	duration := time.Since(startTime)

	state := w.State()
	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("State: %s\n", state.Phase)
	if state.Offline {
		fmt.Printf("Offline threat level: %s\n", state.Threat)
	}
	if state.Result != nil {
		fmt.Printf("Prediction: %d\n", state.Result.Prediction)
		fmt.Printf("Risk level: %s\n", state.Result.RiskLevel)
		fmt.Printf("Phishing confidence: %.4f\n", state.Result.Confidence.Phishing)
		fmt.Printf("Safe confidence: %.4f\n", state.Result.Confidence.Safe)
		fmt.Printf("Source: %s\n", state.Result.Source)
		fmt.Printf("Model: %s\n", state.Result.Model)
		fmt.Printf("Processing ID: %s\n", state.Result.ProcessingID)
	}
	fmt.Printf("Processing time: %v\n", duration)

	// Close any resources that need closing
	if closer, ok := classifier.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close classifier", zap.Error(err))
		}
	}

	if state.Phase == widget.PhaseError {
		os.Exit(1)
	}
}

// readEmailText reads the email text from the -text flag, the -file flag,
// or stdin, in that order of preference
func readEmailText() (string, error) {
	if *inputText != "" {
		return *inputText, nil
	}

	var reader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			return "", fmt.Errorf("failed to open input file %s: %w", *inputFile, err)
		}
		defer file.Close()
		reader = file
	} else {
		reader = os.Stdin
	}

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return string(raw), nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	// Set classifier provider
	v.Set("classifier.provider", *provider)

	// Set provider-specific configuration
	switch *provider {
	case "remote":
		v.Set("service.base_url", *baseURL)
		v.Set("service.timeout", timeout.String())
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_text_size", *maxTextSize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_text_size", *maxTextSize)
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_text_size", *maxTextSize)
	}

	return config.NewFromViper(v)
}
