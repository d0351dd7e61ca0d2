package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"google.golang.org/genai"
)

// GeminiProvider 基于 genai SDK 调用 generateContent
type GeminiProvider struct {
	APIKey      string
	BaseURL     string
	Model       string
	ImageModel  string
	Temperature float64
	Timeout     time.Duration

	mu     sync.Mutex
	client *genai.Client
}

var _ Provider = (*GeminiProvider)(nil)

func NewGeminiProvider(apiKey, baseURL, model, imageModel string, temperature float64, timeout time.Duration) *GeminiProvider {
	return &GeminiProvider{
		APIKey:      apiKey,
		BaseURL:     baseURL,
		Model:       model,
		ImageModel:  imageModel,
		Temperature: temperature,
		Timeout:     timeout,
	}
}

// genaiClient 首次调用时创建；SDK 在没有密钥时拒绝创建客户端，所以密钥在这里先检查
func (g *GeminiProvider) genaiClient(ctx context.Context) (*genai.Client, error) {
	if g.APIKey == "" {
		return nil, ErrMissingAPIKey
	}

	g.mu.Lock()
	defer g.mu.Unlock()
	if g.client != nil {
		return g.client, nil
	}

	cc := &genai.ClientConfig{
		APIKey:     g.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: g.Timeout},
	}
	if g.BaseURL != "" {
		cc.HTTPOptions.BaseURL = strings.TrimRight(g.BaseURL, "/") + "/"
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g.client = client
	return client, nil
}

func (g *GeminiProvider) Generate(ctx context.Context, prompt string, opts ...Option) (string, error) {
	options := buildOptions(g.Temperature, opts)

	model := g.Model
	if options.Model != "" {
		model = options.Model
	}

	genCfg := &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(float32(options.Temperature)),
		MaxOutputTokens: int32(options.MaxTokens),
	}
	if options.JSON {
		genCfg.ResponseMIMEType = "application/json"
	}

	resp, err := g.generateContent(ctx, model, prompt, genCfg)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", ErrEmptyResponse
	}
	return text, nil
}

func (g *GeminiProvider) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := g.generateContent(ctx, g.ImageModel, prompt, &genai.GenerateContentConfig{
		ResponseModalities: []string{string(genai.ModalityText), string(genai.ModalityImage)},
	})
	if err != nil {
		return nil, err
	}

	for _, p := range resp.Candidates[0].Content.Parts {
		if p.InlineData == nil || len(p.InlineData.Data) == 0 {
			continue
		}
		return &Image{Data: p.InlineData.Data, MIMEType: p.InlineData.MIMEType}, nil
	}
	return nil, ErrEmptyResponse
}

// generateContent 返回至少带一个候选内容的响应
func (g *GeminiProvider) generateContent(ctx context.Context, model, prompt string, genCfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	client, err := g.genaiClient(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), genCfg)
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}
	return resp, nil
}
