package dao

import (
	"errors"

	"servicedesk-backend/model"

	"gorm.io/gorm"
)

func CreateCredential(credential *model.Credential) error {
	return DB.Create(credential).Error
}

func GetCredentialByID(id string) (*model.Credential, error) {
	var credential model.Credential
	if err := DB.Where("id = ?", id).First(&credential).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &credential, nil
}

func ListCredentials(entityKind, entityID string) ([]model.Credential, error) {
	query := DB.Model(&model.Credential{})
	if entityKind != "" {
		query = query.Where("entity_kind = ?", entityKind)
	}
	if entityID != "" {
		query = query.Where("entity_id = ?", entityID)
	}

	var credentials []model.Credential
	if err := query.Order("created_at DESC").Find(&credentials).Error; err != nil {
		return nil, err
	}
	return credentials, nil
}

func UpdateCredential(credential *model.Credential) error {
	return DB.Save(credential).Error
}

func DeleteCredential(id string) error {
	return DB.Where("id = ?", id).Delete(&model.Credential{}).Error
}

func CreateCredentialAccessLog(log *model.CredentialAccessLog) error {
	return DB.Create(log).Error
}
