package dao

import (
	"errors"

	"servicedesk-backend/model"

	"gorm.io/gorm"
)

func GetTicketByID(id uint) (*model.Ticket, error) {
	var ticket model.Ticket
	if err := DB.Where("id = ?", id).First(&ticket).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &ticket, nil
}
