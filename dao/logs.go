package dao

import "servicedesk-backend/model"

func CreateLLMRequestLog(log *model.LLMRequestLog) error {
	return DB.Create(log).Error
}

func CreateTicketSuggestionLog(log *model.TicketSuggestionLog) error {
	return DB.Create(log).Error
}

func UpdateTicketSuggestionLog(log *model.TicketSuggestionLog) error {
	return DB.Save(log).Error
}
