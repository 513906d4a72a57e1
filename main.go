package main

import (
	"context"
	"log/slog"
	"os"

	"servicedesk-backend/config"
	"servicedesk-backend/controller"
	"servicedesk-backend/dao"
	"servicedesk-backend/router"
	"servicedesk-backend/service/article"
	"servicedesk-backend/service/attachment"
	"servicedesk-backend/service/embedding"
	"servicedesk-backend/service/indexing"
	"servicedesk-backend/service/llm"
	"servicedesk-backend/service/mq"
	"servicedesk-backend/service/normalization"
	"servicedesk-backend/service/search"
	"servicedesk-backend/service/suggestion"
	"servicedesk-backend/service/vault"
	"servicedesk-backend/service/vectorindex"
)

func main() {
	if err := config.Load(); err != nil {
		slog.Error("Failed to load config", "err", err)
		os.Exit(1)
	}

	if err := dao.Init(); err != nil {
		slog.Error("Failed to init database", "err", err)
		os.Exit(1)
	}

	ctx := context.Background()

	// 外部客户端启动时构造一次，注入到需要的服务中
	llmClient, err := llm.NewClient()
	if err != nil {
		slog.Error("Failed to create llm client", "err", err)
		os.Exit(1)
	}

	embedder, err := embedding.NewClient()
	if err != nil {
		slog.Error("Failed to create embedding client", "err", err)
		os.Exit(1)
	}

	vectors, err := vectorindex.NewClient(ctx)
	if err != nil {
		slog.Error("Failed to create vector index client", "err", err)
		os.Exit(1)
	}
	defer func() {
		if err := vectors.Close(ctx); err != nil {
			slog.Error("Failed to close vector index client", "err", err)
		}
	}()

	indexer := indexing.NewIndexer(embedder, vectors)

	// MQ开启时确认规范化后经MQ异步触发索引，否则进程内异步触发
	var indexTrigger normalization.IndexTrigger = indexer
	if config.Cfg.MQ.Enabled {
		mqService, err := mq.NewService(indexer)
		if err != nil {
			slog.Error("Failed to create mq service", "err", err)
			os.Exit(1)
		}
		if err := mqService.Run(); err != nil {
			slog.Error("Failed to start mq service", "err", err)
			os.Exit(1)
		}
		defer mqService.Shutdown()
		indexTrigger = mqService
	}

	attachments, err := attachment.NewService()
	if err != nil {
		slog.Error("Failed to create attachment service", "err", err)
		os.Exit(1)
	}

	ctls := router.Controllers{
		Article: controller.NewArticleController(
			article.NewService(vectors),
			normalization.NewService(llmClient, indexTrigger),
		),
		Search:     controller.NewSearchController(search.NewService()),
		Index:      controller.NewIndexController(indexer),
		Credential: controller.NewCredentialController(vault.NewVault()),
		Suggestion: controller.NewSuggestionController(
			suggestion.NewService(embedder, vectors, llmClient),
		),
		Attachment: controller.NewAttachmentController(attachments),
	}

	r := router.Register(ctls)
	if err := r.Run(config.Cfg.Server.Addr); err != nil {
		slog.Error("Failed to run server", "err", err)
		os.Exit(1)
	}
}
