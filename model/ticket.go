package model

import "time"

type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "open"
	TicketStatusInProgress TicketStatus = "in_progress"
	TicketStatusClosed     TicketStatus = "closed"
)

// Ticket 工单读模型，工单生命周期由外部服务维护，本服务只读
type Ticket struct {
	ID          uint         `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
	Title       string       `gorm:"not null" json:"title"`
	Description string       `gorm:"type:text" json:"description"`
	EquipmentID *uint        `json:"equipment_id,omitempty"`
	Status      TicketStatus `gorm:"not null" json:"status"`
}

func (Ticket) TableName() string {
	return "ticket"
}
