package model

import "time"

// Setting 键值配置项，运行时覆盖配置文件中的默认值
type Setting struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Key       string    `gorm:"size:100;not null;uniqueIndex" json:"key"`
	Value     string    `gorm:"type:text" json:"value"`
}

func (Setting) TableName() string {
	return "setting"
}

// 配置项键常量
const (
	SettingKeyModelAPIKey          = "model.api_key"
	SettingKeyChatModel            = "model.chat_model"
	SettingKeyEmbeddingModel       = "model.embedding_model"
	SettingKeyMilvusEndpoint       = "milvus.endpoint"
	SettingKeyMilvusCollectionName = "milvus.collection_name"
)
