package ai

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
)

var (
	ErrMissingAPIKey    = errors.New("ai api key is not configured")
	ErrImageUnsupported = errors.New("provider does not support image generation")
	ErrEmptyResponse    = errors.New("ai provider returned an empty response")
)

// NoPostSentinel 模型表示"不发布"时返回的字面量
const NoPostSentinel = "NO_POST"

// Option 单次调用参数
type Option func(*Options)

type Options struct {
	Temperature float64
	MaxTokens   int
	Model       string
	// JSON 要求模型直接输出 application/json
	JSON bool
}

func WithTemperature(temp float64) Option {
	return func(o *Options) {
		o.Temperature = temp
	}
}

func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

func WithJSON() Option {
	return func(o *Options) {
		o.JSON = true
	}
}

func buildOptions(defaultTemp float64, opts []Option) *Options {
	o := &Options{Temperature: defaultTemp}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Image 生成的图片
type Image struct {
	Data     []byte
	MIMEType string
}

// Provider 文本补全与图片生成
type Provider interface {
	Generate(ctx context.Context, prompt string, opts ...Option) (string, error)
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// PostDecision 模型对"是否发布"的结构化回答
type PostDecision struct {
	Post bool   `json:"post"`
	Text string `json:"text"`
}

// ParsePostDecision 解析模型的发布决定。
// 回复是合法 JSON 时只按 JSON 解释：字符串先去引号再判断 NO_POST，
// 对象必须带布尔类型的 post 字段，否则视为不发布。非 JSON 回复按原文处理，
// 原文为空或等于 NO_POST 表示不发布
func ParsePostDecision(raw string) PostDecision {
	cleaned := StripCodeFence(raw)

	var value interface{}
	if err := json.Unmarshal([]byte(cleaned), &value); err != nil {
		return textDecision(cleaned)
	}

	switch v := value.(type) {
	case string:
		return textDecision(v)
	case map[string]interface{}:
		post, ok := v["post"].(bool)
		if !ok || !post {
			return PostDecision{}
		}
		text, _ := v["text"].(string)
		return textDecision(text)
	default:
		// 数字、数组、null
		return PostDecision{}
	}
}

func textDecision(text string) PostDecision {
	text = strings.TrimSpace(text)
	if text == "" || text == NoPostSentinel {
		return PostDecision{}
	}
	return PostDecision{Post: true, Text: text}
}

// StripCodeFence 去掉 ```json ... ``` 包裹
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```JSON")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
