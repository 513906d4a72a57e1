package llm

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"servicedesk-backend/apperr"
	"servicedesk-backend/config"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/utils"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator 对话模型客户端接口，方便测试替换
type Generator interface {
	Generate(ctx context.Context, purpose, systemPrompt, userPrompt string) (string, error)
	ModelName() string
}

// Client 对话模型客户端，启动时构造一次，注入到需要的服务中
type Client struct {
	llm   llms.Model
	model string
}

var _ Generator = &Client{}

func NewClient() (*Client, error) {
	apiKey := dao.GetSettingOrDefault(model.SettingKeyModelAPIKey, config.Cfg.Model.APIKey)
	if apiKey == "" {
		return nil, apperr.Configuration("model api key is not set")
	}

	modelName := dao.GetSettingOrDefault(model.SettingKeyChatModel, config.Cfg.Model.ChatModel)
	if modelName == "" {
		return nil, apperr.Configuration("chat model is not set")
	}

	// 配置 120s 超时时间处理长文本生成
	httpClient := utils.NewHTTPClient(
		utils.WithTimeout(120 * time.Second),
	)

	client, err := openai.New(
		openai.WithModel(modelName),
		openai.WithToken(apiKey),
		openai.WithBaseURL(config.Cfg.Model.BaseURL),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create llm client: %v", err)
	}

	return &Client{
		llm:   client,
		model: modelName,
	}, nil
}

func (c *Client) ModelName() string {
	return c.model
}

// Generate 调用对话模型，每次调用（成功或失败）都写一条请求日志
func (c *Client) Generate(ctx context.Context, purpose, systemPrompt, userPrompt string) (string, error) {
	start := time.Now()

	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := c.llm.GenerateContent(ctx, messages)
	duration := time.Since(start).Milliseconds()

	requestLog := &model.LLMRequestLog{
		Purpose:    purpose,
		Model:      c.model,
		Request:    userPrompt,
		DurationMS: duration,
	}

	if err != nil {
		requestLog.Error = err.Error()
		c.saveRequestLog(requestLog)
		return "", apperr.Upstream("llm call error: %v", err)
	}

	if len(resp.Choices) == 0 {
		requestLog.Error = "llm returned no choices"
		c.saveRequestLog(requestLog)
		return "", apperr.Upstream("llm returned no choices")
	}

	content := resp.Choices[0].Content
	requestLog.Response = content
	requestLog.Success = true
	c.saveRequestLog(requestLog)

	return content, nil
}

func (c *Client) saveRequestLog(requestLog *model.LLMRequestLog) {
	if err := dao.CreateLLMRequestLog(requestLog); err != nil {
		slog.Error("Failed to save llm request log",
			"purpose", requestLog.Purpose,
			"err", err,
		)
	}
}
