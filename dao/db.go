package dao

import (
	"fmt"
	"servicedesk-backend/config"
	"servicedesk-backend/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// DB 全局数据库连接，main中初始化一次
var DB *gorm.DB

func Init() error {
	db, err := gorm.Open(mysql.Open(config.Cfg.MySQL.DSN), &gorm.Config{})
	if err != nil {
		return fmt.Errorf("failed to connect to mysql: %v", err)
	}

	err = db.AutoMigrate(
		&model.KnowledgeArticle{},
		&model.KnowledgeArticleIndex{},
		&model.KnowledgeArticleFeedback{},
		&model.SearchQuery{},
		&model.Credential{},
		&model.CredentialAccessLog{},
		&model.LLMRequestLog{},
		&model.TicketSuggestionLog{},
		&model.Ticket{},
		&model.Setting{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate tables: %v", err)
	}

	DB = db
	return nil
}
