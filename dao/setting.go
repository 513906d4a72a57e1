package dao

import (
	"errors"

	"servicedesk-backend/model"

	"gorm.io/gorm"
)

// GetSetting 读取配置项，不存在时返回nil
func GetSetting(key string) (*string, error) {
	var setting model.Setting
	if err := DB.Where("`key` = ?", key).First(&setting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &setting.Value, nil
}

// GetSettingOrDefault 读取配置项，不存在或读取失败时返回默认值
func GetSettingOrDefault(key, fallback string) string {
	value, err := GetSetting(key)
	if err != nil || value == nil || *value == "" {
		return fallback
	}
	return *value
}
