package embedding

import (
	"context"
	"fmt"
	"time"

	"servicedesk-backend/apperr"
	"servicedesk-backend/config"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"
	"servicedesk-backend/utils"

	"github.com/avast/retry-go/v4"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	embeddingBatchSize = 10
	embedAttempts      = 3
)

// Embedder 向量化客户端接口，方便测试替换
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelName() string
}

// Client 向量化客户端，启动时构造一次，注入到需要的服务中
type Client struct {
	embedder embeddings.Embedder
	model    string
}

var _ Embedder = &Client{}

func NewClient() (*Client, error) {
	apiKey := dao.GetSettingOrDefault(model.SettingKeyModelAPIKey, config.Cfg.Model.APIKey)
	if apiKey == "" {
		return nil, apperr.Configuration("model api key is not set")
	}

	modelName := dao.GetSettingOrDefault(model.SettingKeyEmbeddingModel, config.Cfg.Model.EmbeddingModel)
	if modelName == "" {
		return nil, apperr.Configuration("embedding model is not set")
	}

	httpClient := utils.NewHTTPClient(
		utils.WithTimeout(60 * time.Second),
	)

	client, err := openai.New(
		openai.WithEmbeddingModel(modelName),
		openai.WithToken(apiKey),
		openai.WithBaseURL(config.Cfg.Model.BaseURL),
		openai.WithHTTPClient(httpClient),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder client: %v", err)
	}

	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithBatchSize(embeddingBatchSize),
		embeddings.WithStripNewLines(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %v", err)
	}

	return &Client{
		embedder: embedder,
		model:    modelName,
	}, nil
}

func (c *Client) ModelName() string {
	return c.model
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vector, err := retry.DoWithData(func() ([]float32, error) {
		return c.embedder.EmbedQuery(ctx, text)
	},
		retry.Context(ctx),
		retry.Attempts(embedAttempts),
	)
	if err != nil {
		return nil, apperr.Upstream("embedding call error: %v", err)
	}
	return vector, nil
}
