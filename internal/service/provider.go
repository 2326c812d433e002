package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"mstress/internal/config"
	"mstress/internal/model"
)

// ModalityProvider is the external scoring collaborator, one call per channel.
// Implementations must honor the passed context's deadline.
type ModalityProvider interface {
	ScoreQuestionnaire(ctx context.Context, responses map[string]int) (*model.ProviderOutput, error)
	AnalyzeFacial(ctx context.Context, imageFrame string) (*model.ProviderOutput, error)
	AnalyzeVoice(ctx context.Context, audioClip string) (*model.ProviderOutput, error)
	AnalyzeSentiment(ctx context.Context, text string) (*model.ProviderOutput, error)
}

// ProviderClient calls the modality scoring provider over HTTP.
type ProviderClient struct {
	config *config.ProviderConfig
	client *http.Client
}

// NewProviderClient creates a new provider client
func NewProviderClient(cfg *config.ProviderConfig) *ProviderClient {
	return &ProviderClient{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

func (c *ProviderClient) ScoreQuestionnaire(ctx context.Context, responses map[string]int) (*model.ProviderOutput, error) {
	body := map[string]interface{}{"responses": responses}
	var payload model.QuestionnaireProviderOutput
	version, err := c.call(ctx, c.config.Paths.Questionnaire, body, &payload)
	if err != nil {
		return nil, err
	}
	if payload.Responses == nil {
		payload.Responses = responses
	}
	return &model.ProviderOutput{Questionnaire: &payload, Version: version}, nil
}

func (c *ProviderClient) AnalyzeFacial(ctx context.Context, imageFrame string) (*model.ProviderOutput, error) {
	body := map[string]interface{}{"image": imageFrame}
	var payload model.FacialProviderOutput
	version, err := c.call(ctx, c.config.Paths.Facial, body, &payload)
	if err != nil {
		return nil, err
	}
	return &model.ProviderOutput{Facial: &payload, Version: version}, nil
}

func (c *ProviderClient) AnalyzeVoice(ctx context.Context, audioClip string) (*model.ProviderOutput, error) {
	body := map[string]interface{}{"audio": audioClip}
	var payload model.VoiceProviderOutput
	version, err := c.call(ctx, c.config.Paths.Voice, body, &payload)
	if err != nil {
		return nil, err
	}
	return &model.ProviderOutput{Voice: &payload, Version: version}, nil
}

func (c *ProviderClient) AnalyzeSentiment(ctx context.Context, text string) (*model.ProviderOutput, error) {
	body := map[string]interface{}{"text": text}
	var payload model.SentimentProviderOutput
	version, err := c.call(ctx, c.config.Paths.Sentiment, body, &payload)
	if err != nil {
		return nil, err
	}
	return &model.ProviderOutput{Sentiment: &payload, Version: version}, nil
}

// call posts the request body and decodes the channel payload. All transport
// and decode failures collapse into the provider error taxonomy; the caller
// recovers via fallback synthesis and never surfaces these.
func (c *ProviderClient) call(ctx context.Context, path string, body interface{}, out interface{}) (string, error) {
	if !c.config.IsEnabled() {
		return "", ErrProviderUnavailable
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.config.Endpoint(path), bytes.NewBuffer(jsonBody))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.config.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", ErrProviderTimeout
		}
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}

	// Provider responses carry the payload under "result" with a version tag.
	var envelope struct {
		Result  json.RawMessage `json:"result"`
		Version string          `json:"version"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	if envelope.Result == nil {
		// Some deployments return the payload at the top level.
		envelope.Result = data
	}
	if err := json.Unmarshal(envelope.Result, out); err != nil {
		return "", fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	return envelope.Version, nil
}
