package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockClassifier struct {
	mock.Mock
}

func (m *mockClassifier) Classify(ctx context.Context, emailText string) (*AnalysisResult, error) {
	args := m.Called(ctx, emailText)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*AnalysisResult), args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, textHash string) (*CacheEntry, error) {
	args := m.Called(ctx, textHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CacheEntry), args.Error(1)
}

func (m *mockCache) Set(ctx context.Context, entry *CacheEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *mockCache) Delete(ctx context.Context, textHash string) error {
	args := m.Called(ctx, textHash)
	return args.Error(0)
}

func (m *mockCache) Cleanup(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyAnalyzed(ctx context.Context, event *AnalysisEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func TestAnalyzeCacheHitSkipsClassifier(t *testing.T) {
	const emailText = "please verify your account"
	textHash := TextHash(emailText)

	classifier := new(mockClassifier)
	cache := new(mockCache)
	cache.On("Get", mock.Anything, textHash).Return(&CacheEntry{
		TextHash:           textHash,
		Prediction:         1,
		PhishingConfidence: 0.92,
		SafeConfidence:     0.08,
		RiskLevel:          RiskHigh,
		ExpiresAt:          time.Now().Add(time.Hour),
	}, nil)

	service := NewAnalysisService(classifier, cache, nil, zap.NewNop(), true, time.Hour)
	result, err := service.Analyze(context.Background(), emailText)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Prediction)
	assert.Equal(t, 0.92, result.Confidence.Phishing)
	assert.Equal(t, RiskHigh, result.RiskLevel)
	assert.Equal(t, SourceCache, result.Source)
	classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything)
}

func TestAnalyzeCacheMissClassifiesAndStores(t *testing.T) {
	const emailText = "quarterly report attached"
	textHash := TextHash(emailText)

	classifier := new(mockClassifier)
	classifier.On("Classify", mock.Anything, emailText).Return(&AnalysisResult{
		Prediction: 0,
		Confidence: Confidence{Phishing: 0.05, Safe: 0.95},
		RiskLevel:  RiskLow,
		Source:     SourceRemote,
	}, nil)

	cache := new(mockCache)
	cache.On("Get", mock.Anything, textHash).Return(nil, errors.New("not found"))
	cache.On("Set", mock.Anything, mock.MatchedBy(func(entry *CacheEntry) bool {
		return entry.TextHash == textHash &&
			entry.Prediction == 0 &&
			entry.RiskLevel == RiskLow &&
			entry.ExpiresAt.After(entry.LastSeen)
	})).Return(nil)

	notifier := new(mockNotifier)
	notifier.On("NotifyAnalyzed", mock.Anything, mock.MatchedBy(func(event *AnalysisEvent) bool {
		return event.TextHash == textHash && event.Prediction == 0
	})).Return(nil)

	service := NewAnalysisService(classifier, cache, notifier, zap.NewNop(), true, time.Hour)
	result, err := service.Analyze(context.Background(), emailText)

	require.NoError(t, err)
	assert.Equal(t, SourceRemote, result.Source)
	assert.NotEmpty(t, result.ProcessingID)
	cache.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestAnalyzeClassifierErrorPropagates(t *testing.T) {
	classifier := new(mockClassifier)
	wantErr := &TransportError{Op: "predict", Err: errors.New("connection refused")}
	classifier.On("Classify", mock.Anything, mock.Anything).Return(nil, wantErr)

	cache := new(mockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("not found"))

	notifier := new(mockNotifier)

	service := NewAnalysisService(classifier, cache, notifier, zap.NewNop(), true, time.Hour)
	_, err := service.Analyze(context.Background(), "some text")

	require.Error(t, err)
	assert.True(t, IsTransportError(err))
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
	notifier.AssertNotCalled(t, "NotifyAnalyzed", mock.Anything, mock.Anything)
}

func TestAnalyzeCacheAndNotifierFailuresAreNonFatal(t *testing.T) {
	classifier := new(mockClassifier)
	classifier.On("Classify", mock.Anything, mock.Anything).Return(&AnalysisResult{
		Prediction: 1,
		Confidence: Confidence{Phishing: 0.88, Safe: 0.12},
		RiskLevel:  RiskHigh,
		Source:     SourceRemote,
	}, nil)

	cache := new(mockCache)
	cache.On("Get", mock.Anything, mock.Anything).Return(nil, errors.New("not found"))
	cache.On("Set", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	notifier := new(mockNotifier)
	notifier.On("NotifyAnalyzed", mock.Anything, mock.Anything).Return(errors.New("broker down"))

	service := NewAnalysisService(classifier, cache, notifier, zap.NewNop(), true, time.Hour)
	result, err := service.Analyze(context.Background(), "some text")

	require.NoError(t, err)
	assert.Equal(t, 1, result.Prediction)
}

func TestAnalyzeCacheDisabled(t *testing.T) {
	classifier := new(mockClassifier)
	classifier.On("Classify", mock.Anything, mock.Anything).Return(&AnalysisResult{
		Prediction: 0,
		Confidence: Confidence{Safe: 0.9},
		RiskLevel:  RiskLow,
		Source:     SourceRemote,
	}, nil)

	cache := new(mockCache)

	service := NewAnalysisService(classifier, cache, nil, zap.NewNop(), false, 0)
	_, err := service.Analyze(context.Background(), "some text")

	require.NoError(t, err)
	cache.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything)
}

func TestTextHashIsStable(t *testing.T) {
	assert.Equal(t, TextHash("hello"), TextHash("hello"))
	assert.NotEqual(t, TextHash("hello"), TextHash("hello "))
	assert.Len(t, TextHash("hello"), 64)
}
