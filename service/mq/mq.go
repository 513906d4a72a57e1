package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"servicedesk-backend/config"
	"servicedesk-backend/service/indexing"

	"github.com/apache/rocketmq-client-go/v2"
	c "github.com/apache/rocketmq-client-go/v2/consumer"
	"github.com/apache/rocketmq-client-go/v2/primitive"
	"github.com/apache/rocketmq-client-go/v2/producer"
	"github.com/apache/rocketmq-client-go/v2/rlog"
	"github.com/avast/retry-go/v4"
)

const (
	TopicKnowledgeIndex = "topic_knowledge_index"
	TagIndex            = "tag_index"

	consumeGroupKnowledgeIndex = "cg_knowledge_index"

	sendMessageAttempts  = 3
	maxReconsumeTimes    = 5
	consumeGoroutineNums = 10
)

type IndexMessage struct {
	ArticleID uint `json:"article_id"`
}

// Service 索引任务队列：规范化确认后经MQ异步触发向量索引
type Service struct {
	producer rocketmq.Producer
	consumer rocketmq.PushConsumer
	indexer  *indexing.Indexer
}

func NewService(indexer *indexing.Indexer) (*Service, error) {
	// 设置RocketMQ客户端（使用rlog）的日志级别
	rlog.SetLogLevel("warn")

	consumer, err := rocketmq.NewPushConsumer(
		c.WithNameServer(config.Cfg.MQ.NameServer),
		c.WithGroupName(consumeGroupKnowledgeIndex),
		c.WithConsumerModel(c.Clustering),
		c.WithConsumeFromWhere(c.ConsumeFromLastOffset),
		c.WithMaxReconsumeTimes(maxReconsumeTimes),
		c.WithConsumeGoroutineNums(consumeGoroutineNums),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create consumer: %v", err)
	}

	producerInstance, err := rocketmq.NewProducer(
		producer.WithNameServer(config.Cfg.MQ.NameServer),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create producer: %v", err)
	}

	return &Service{
		producer: producerInstance,
		consumer: consumer,
		indexer:  indexer,
	}, nil
}

func (s *Service) Run() error {
	selector := c.MessageSelector{
		Type:       c.TAG,
		Expression: TagIndex,
	}
	err := s.consumer.Subscribe(TopicKnowledgeIndex, selector,
		func(ctx context.Context, msgs ...*primitive.MessageExt) (c.ConsumeResult, error) {
			for _, msg := range msgs {
				if err := s.handleIndexMessage(ctx, msg); err != nil {
					slog.Error("Failed to handle index message",
						"msg_id", msg.MsgId,
						"err", err,
					)
					return c.ConsumeRetryLater, nil
				}
			}
			return c.ConsumeSuccess, nil
		},
	)
	if err != nil {
		return fmt.Errorf("failed to subscribe topic %s: %v", TopicKnowledgeIndex, err)
	}

	if err := s.consumer.Start(); err != nil {
		return fmt.Errorf("failed to start consumer: %v", err)
	}
	if err := s.producer.Start(); err != nil {
		return fmt.Errorf("failed to start producer: %v", err)
	}
	return nil
}

func (s *Service) Shutdown() {
	if err := s.consumer.Shutdown(); err != nil {
		slog.Error("Failed to shutdown consumer", "err", err)
	}
	if err := s.producer.Shutdown(); err != nil {
		slog.Error("Failed to shutdown producer", "err", err)
	}
}

// TriggerIndex 发送索引任务，发送失败时降级为进程内直接索引
func (s *Service) TriggerIndex(articleID uint) {
	payload, err := json.Marshal(IndexMessage{ArticleID: articleID})
	if err != nil {
		slog.Error("Failed to marshal index message", "article_id", articleID, "err", err)
		return
	}

	msg := &primitive.Message{
		Topic: TopicKnowledgeIndex,
		Body:  payload,
	}
	msg.WithTag(TagIndex)

	err = retry.Do(func() error {
		_, err := s.producer.SendSync(context.Background(), msg)
		return err
	},
		retry.Attempts(sendMessageAttempts),
	)
	if err != nil {
		slog.Error("Failed to send index message, falling back to in-process indexing",
			"article_id", articleID,
			"err", err,
		)
		s.indexer.TriggerIndex(articleID)
	}
}

func (s *Service) handleIndexMessage(ctx context.Context, msg *primitive.MessageExt) error {
	var indexMessage IndexMessage
	if err := json.Unmarshal(msg.Body, &indexMessage); err != nil {
		return fmt.Errorf("failed to unmarshal message body: %v", err)
	}
	return s.indexer.IndexArticle(ctx, indexMessage.ArticleID)
}
