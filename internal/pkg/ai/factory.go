package ai

import (
	"fmt"
	"time"

	"github.com/qs3c/predict_admin_server/config"
)

// NewProvider 按配置创建 Provider；缺少密钥不在这里报错，调用时返回 ErrMissingAPIKey
func NewProvider(cfg *config.AIConfig) (Provider, error) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	switch cfg.Provider {
	case "gemini", "":
		return NewGeminiProvider(cfg.APIKey, cfg.BaseURL, cfg.Model, cfg.ImageModel, cfg.Temperature, timeout), nil
	case "ollama":
		return NewOllamaProvider(cfg.BaseURL, cfg.Model, cfg.Temperature, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}
