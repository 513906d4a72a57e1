package dao

import (
	"errors"
	"time"

	"servicedesk-backend/model"

	"gorm.io/gorm"
)

func CreateArticle(article *model.KnowledgeArticle) error {
	return DB.Create(article).Error
}

func GetArticleByID(id uint) (*model.KnowledgeArticle, error) {
	var article model.KnowledgeArticle
	if err := DB.Where("id = ?", id).First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &article, nil
}

type ArticleListFilter struct {
	Status      model.ArticleStatus
	Category    string
	ArticleType string
	Difficulty  string
	Limit       int
	Offset      int
}

func ListArticles(filter ArticleListFilter) ([]model.KnowledgeArticle, int64, error) {
	query := DB.Model(&model.KnowledgeArticle{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}
	if filter.ArticleType != "" {
		query = query.Where("article_type = ?", filter.ArticleType)
	}
	if filter.Difficulty != "" {
		query = query.Where("difficulty = ?", filter.Difficulty)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var articles []model.KnowledgeArticle
	if err := query.Order("pinned DESC, updated_at DESC").
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&articles).Error; err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

func UpdateArticle(article *model.KnowledgeArticle) error {
	return DB.Save(article).Error
}

func IncrementArticleViews(id uint) error {
	return DB.Model(&model.KnowledgeArticle{}).
		Where("id = ?", id).
		UpdateColumn("views", gorm.Expr("views + 1")).Error
}

// DeleteArticle 删除文章及其索引记录和反馈记录
func DeleteArticle(id uint) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("article_id = ?", id).
			Delete(&model.KnowledgeArticleIndex{}).Error; err != nil {
			return err
		}
		if err := tx.Where("article_id = ?", id).
			Delete(&model.KnowledgeArticleFeedback{}).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).Delete(&model.KnowledgeArticle{}).Error
	})
}

func GetArticleIndexByArticleID(articleID uint) (*model.KnowledgeArticleIndex, error) {
	var index model.KnowledgeArticleIndex
	if err := DB.Where("article_id = ?", articleID).First(&index).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &index, nil
}

// SaveArticleIndex 按article_id覆盖写入索引记录，后写的成功结果生效
func SaveArticleIndex(index *model.KnowledgeArticleIndex) error {
	existing, err := GetArticleIndexByArticleID(index.ArticleID)
	if err != nil {
		return err
	}
	if existing != nil {
		index.ID = existing.ID
		index.CreatedAt = existing.CreatedAt
	}
	return DB.Save(index).Error
}

func ListArticlesByStatus(status model.ArticleStatus) ([]model.KnowledgeArticle, error) {
	var articles []model.KnowledgeArticle
	if err := DB.Where("status = ?", status).
		Order("id ASC").
		Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

func ListArticlesByIDs(ids []uint) ([]model.KnowledgeArticle, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	var articles []model.KnowledgeArticle
	if err := DB.Where("id IN ?", ids).Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// AppendFeedback 在一个事务内追加反馈并更新计数和置信分
func AppendFeedback(articleID uint, userEmail string, helped bool) error {
	return DB.Transaction(func(tx *gorm.DB) error {
		feedback := model.KnowledgeArticleFeedback{
			ArticleID: articleID,
			UserEmail: userEmail,
			Helped:    helped,
		}
		if err := tx.Create(&feedback).Error; err != nil {
			return err
		}

		updates := map[string]any{
			"updated_at": time.Now(),
		}
		if helped {
			updates["helpful_count"] = gorm.Expr("helpful_count + 1")
			updates["confidence_score"] = gorm.Expr("confidence_score + 1")
		} else {
			updates["not_helpful_count"] = gorm.Expr("not_helpful_count + 1")
			updates["confidence_score"] = gorm.Expr("confidence_score - 1")
		}
		return tx.Model(&model.KnowledgeArticle{}).
			Where("id = ?", articleID).
			Updates(updates).Error
	})
}
