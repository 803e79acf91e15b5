// Package llm 封装了与 OpenAI 兼容的大模型接口（默认 DeepSeek）的交互。
package llm

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sashabaranov/go-openai"

	"leaf-care-go/internal/config"
)

// ErrNetwork 表示请求没有拿到上游的 HTTP 响应（连接失败、超时等）。
var ErrNetwork = errors.New("llm network error")

// ErrEmptyResponse 表示上游返回成功但没有任何候选结果。
var ErrEmptyResponse = errors.New("llm returned no choices")

// UpstreamError 表示上游返回了非 2xx 状态码。
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("llm upstream returned status %d: %s", e.StatusCode, e.Body)
}

// MessageWriter defines an interface for writing WebSocket messages.
type MessageWriter interface {
	WriteMessage(messageType int, data []byte) error
}

// Message 表示一条角色消息
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// GenerationParams 控制生成行为，为 nil 的字段使用配置中的默认值。
type GenerationParams struct {
	Temperature *float64
	MaxTokens   *int
}

type Usage struct {
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Completion 是一次非流式调用的结果。
type Completion struct {
	Content string
	Model   string
	Usage   Usage
}

// Client defines the interface for an LLM client.
type Client interface {
	// Chat 发起一次阻塞式调用。
	Chat(ctx context.Context, messages []Message, gen *GenerationParams) (*Completion, error)
	// StreamChatMessages 将流式分块逐条写入 writer，返回已下发分块拼接的回复。
	// writer 返回错误时立即停止读取上游，错误会被包装后返回。
	StreamChatMessages(ctx context.Context, messages []Message, gen *GenerationParams, writer MessageWriter) (string, error)
}

type openaiClient struct {
	cfg    config.LLMConfig
	client *openai.Client
}

// NewClient 根据配置创建客户端。BaseURL 不含 /chat/completions 后缀。
func NewClient(cfg config.LLMConfig) Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	oc.HTTPClient = &http.Client{Timeout: cfg.Timeout()}

	return &openaiClient{
		cfg:    cfg,
		client: openai.NewClientWithConfig(oc),
	}
}

func (c *openaiClient) request(messages []Message, gen *GenerationParams, stream bool) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    make([]openai.ChatCompletionMessage, len(messages)),
		MaxTokens:   c.cfg.Generation.MaxTokens,
		Temperature: float32(c.cfg.Generation.Temperature),
		Stream:      stream,
	}
	for i, m := range messages {
		req.Messages[i] = openai.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}
	if gen != nil {
		if gen.Temperature != nil {
			req.Temperature = float32(*gen.Temperature)
		}
		if gen.MaxTokens != nil {
			req.MaxTokens = *gen.MaxTokens
		}
	}
	return req
}

func (c *openaiClient) Chat(ctx context.Context, messages []Message, gen *GenerationParams) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.request(messages, gen, false))
	if err != nil {
		return nil, classify(err)
	}
	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	return &Completion{
		Content: resp.Choices[0].Message.Content,
		Model:   resp.Model,
		Usage: Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (c *openaiClient) StreamChatMessages(ctx context.Context, messages []Message, gen *GenerationParams, writer MessageWriter) (string, error) {
	stream, err := c.client.CreateChatCompletionStream(ctx, c.request(messages, gen, true))
	if err != nil {
		return "", classify(err)
	}
	defer stream.Close()

	var full []byte
	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return string(full), classify(err)
		}
		if len(resp.Choices) == 0 {
			continue
		}
		delta := resp.Choices[0].Delta.Content
		if delta == "" {
			continue
		}
		// 只累计已成功下发的内容
		if err := writer.WriteMessage(websocket.TextMessage, []byte(delta)); err != nil {
			return string(full), fmt.Errorf("failed to write message to websocket: %w", err)
		}
		full = append(full, delta...)
	}
	return string(full), nil
}

// classify 把 go-openai 的错误归为上游错误或网络错误。
func classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &UpstreamError{StatusCode: apiErr.HTTPStatusCode, Body: apiErr.Message}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		body := http.StatusText(reqErr.HTTPStatusCode)
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &UpstreamError{StatusCode: reqErr.HTTPStatusCode, Body: body}
	}
	return fmt.Errorf("%w: %v", ErrNetwork, err)
}
