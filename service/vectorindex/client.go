package vectorindex

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"servicedesk-backend/apperr"
	"servicedesk-backend/config"
	"servicedesk-backend/dao"
	"servicedesk-backend/model"

	"github.com/avast/retry-go/v4"
	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"
)

const (
	fieldArticleID       = "article_id"
	fieldVector          = "vector"
	fieldEquipmentIDs    = "equipment_ids"
	fieldConfidenceScore = "confidence_score"
	fieldStatus          = "status"
	fieldUpdatedAt       = "updated_at"

	upsertAttempts = 3
)

// Payload 向量库中随向量存储的元数据
type Payload struct {
	ArticleID       uint
	EquipmentIDs    []uint
	ConfidenceScore int
	Status          model.ArticleStatus
	UpdatedAt       time.Time
}

// Client 向量库客户端，封装集合管理、写入、部分更新和过滤检索
type Client struct {
	client     *milvusclient.Client
	collection string
}

func NewClient(ctx context.Context) (*Client, error) {
	endpoint := dao.GetSettingOrDefault(model.SettingKeyMilvusEndpoint, config.Cfg.Milvus.Endpoint)
	if endpoint == "" {
		return nil, apperr.Configuration("milvus endpoint is not set")
	}

	collection := dao.GetSettingOrDefault(model.SettingKeyMilvusCollectionName, config.Cfg.Milvus.CollectionName)

	client, err := milvusclient.New(ctx, &milvusclient.ClientConfig{
		Address: endpoint,
		APIKey:  config.Cfg.Milvus.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %v", err)
	}

	return &Client{
		client:     client,
		collection: collection,
	}, nil
}

func (c *Client) CollectionName() string {
	return c.collection
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Close(ctx)
}

// EnsureCollection 确认目标集合存在且向量维度匹配
// 维度不一致时显式报错，不做静默迁移
func (c *Client) EnsureCollection(ctx context.Context, dim int) error {
	has, err := c.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(c.collection))
	if err != nil {
		return apperr.Upstream("failed to check collection %s: %v", c.collection, err)
	}

	if has {
		desc, err := c.client.DescribeCollection(ctx, milvusclient.NewDescribeCollectionOption(c.collection))
		if err != nil {
			return apperr.Upstream("failed to describe collection %s: %v", c.collection, err)
		}
		for _, field := range desc.Schema.Fields {
			if field.DataType != entity.FieldTypeFloatVector {
				continue
			}
			existingDim, err := strconv.Atoi(field.TypeParams[entity.TypeParamDim])
			if err != nil {
				return apperr.Upstream("failed to parse dim of collection %s: %v", c.collection, err)
			}
			if existingDim != dim {
				return apperr.Validation(
					"dimension mismatch on collection %s: existing %d, embedding %d, requires new collection",
					c.collection, existingDim, dim,
				)
			}
			return nil
		}
		return apperr.Validation("collection %s has no vector field", c.collection)
	}

	schema := entity.NewSchema().
		WithField(entity.NewField().
			WithName(fieldArticleID).
			WithDataType(entity.FieldTypeInt64).
			WithIsPrimaryKey(true)).
		WithField(entity.NewField().
			WithName(fieldVector).
			WithDataType(entity.FieldTypeFloatVector).
			WithDim(int64(dim))).
		WithField(entity.NewField().
			WithName(fieldEquipmentIDs).
			WithDataType(entity.FieldTypeJSON)).
		WithField(entity.NewField().
			WithName(fieldConfidenceScore).
			WithDataType(entity.FieldTypeInt64)).
		WithField(entity.NewField().
			WithName(fieldStatus).
			WithDataType(entity.FieldTypeVarChar).
			WithMaxLength(32)).
		WithField(entity.NewField().
			WithName(fieldUpdatedAt).
			WithDataType(entity.FieldTypeInt64))

	vectorIndex := index.NewHNSWIndex(entity.COSINE, 16, 200)
	createOption := milvusclient.NewCreateCollectionOption(c.collection, schema).
		WithIndexOptions(milvusclient.NewCreateIndexOption(c.collection, fieldVector, vectorIndex))

	if err := c.client.CreateCollection(ctx, createOption); err != nil {
		return apperr.Upstream("failed to create collection %s: %v", c.collection, err)
	}

	task, err := c.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(c.collection))
	if err != nil {
		return apperr.Upstream("failed to load collection %s: %v", c.collection, err)
	}
	if err := task.Await(ctx); err != nil {
		return apperr.Upstream("failed to await collection load %s: %v", c.collection, err)
	}

	return nil
}

// Upsert 按article_id覆盖写入向量和元数据
func (c *Client) Upsert(ctx context.Context, vector []float32, payload Payload) error {
	columns, err := payloadColumns(payload)
	if err != nil {
		return err
	}
	columns = append(columns, column.NewColumnFloatVector(fieldVector, len(vector), [][]float32{vector}))

	err = retry.Do(func() error {
		upsertOption := milvusclient.NewColumnBasedInsertOption(c.collection).WithColumns(columns...)
		_, err := c.client.Upsert(ctx, upsertOption)
		return err
	},
		retry.Context(ctx),
		retry.Attempts(upsertAttempts),
	)
	if err != nil {
		return apperr.Upstream("failed to upsert article %d: %v", payload.ArticleID, err)
	}
	return nil
}

// UpdatePayload 只刷新元数据，复用已存储的向量，不重新向量化
func (c *Client) UpdatePayload(ctx context.Context, payload Payload) error {
	queryOption := milvusclient.NewQueryOption(c.collection).
		WithFilter(fmt.Sprintf("%s == %d", fieldArticleID, payload.ArticleID)).
		WithOutputFields(fieldVector)

	rs, err := c.client.Query(ctx, queryOption)
	if err != nil {
		return apperr.Upstream("failed to query article %d: %v", payload.ArticleID, err)
	}

	vectorColumn, ok := rs.GetColumn(fieldVector).(*column.ColumnFloatVector)
	if !ok || vectorColumn.Len() == 0 {
		return apperr.NotFound("article %d is not in the vector index", payload.ArticleID)
	}

	return c.Upsert(ctx, vectorColumn.Data()[0], payload)
}

// Search 近邻检索，返回按相似度排序的文章id
// equipmentID 非空时只检索 equipment_ids 包含该设备的文章
func (c *Client) Search(ctx context.Context, vector []float32, topK int, equipmentID *uint) ([]uint, error) {
	searchOption := milvusclient.NewSearchOption(c.collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(fieldVector).
		WithOutputFields(fieldArticleID)

	if equipmentID != nil {
		searchOption = searchOption.WithFilter(
			fmt.Sprintf("json_contains(%s, %d)", fieldEquipmentIDs, *equipmentID),
		)
	}

	resultSets, err := c.client.Search(ctx, searchOption)
	if err != nil {
		return nil, apperr.Upstream("failed to search vector index: %v", err)
	}

	var articleIDs []uint
	for _, rs := range resultSets {
		idColumn := rs.GetColumn(fieldArticleID)
		if idColumn == nil {
			continue
		}
		for i := 0; i < idColumn.Len(); i++ {
			id, err := idColumn.GetAsInt64(i)
			if err != nil {
				return nil, fmt.Errorf("failed to read article id: %v", err)
			}
			articleIDs = append(articleIDs, uint(id))
		}
	}
	return articleIDs, nil
}

// Delete 删除文章对应的向量
func (c *Client) Delete(ctx context.Context, articleID uint) error {
	deleteOption := milvusclient.NewDeleteOption(c.collection).
		WithInt64IDs(fieldArticleID, []int64{int64(articleID)})
	if _, err := c.client.Delete(ctx, deleteOption); err != nil {
		return apperr.Upstream("failed to delete article %d from vector index: %v", articleID, err)
	}
	return nil
}

func payloadColumns(payload Payload) ([]column.Column, error) {
	equipmentIDs, err := json.Marshal(payload.EquipmentIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal equipment ids: %v", err)
	}

	return []column.Column{
		column.NewColumnInt64(fieldArticleID, []int64{int64(payload.ArticleID)}),
		column.NewColumnJSONBytes(fieldEquipmentIDs, [][]byte{equipmentIDs}),
		column.NewColumnInt64(fieldConfidenceScore, []int64{int64(payload.ConfidenceScore)}),
		column.NewColumnVarChar(fieldStatus, []string{string(payload.Status)}),
		column.NewColumnInt64(fieldUpdatedAt, []int64{payload.UpdatedAt.Unix()}),
	}, nil
}
