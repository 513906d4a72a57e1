package model

import "time"

// EntityRef 凭据归属的多态引用，保险库不理解其含义，也不建立外键
type EntityRef struct {
	EntityKind string `gorm:"not null;index:idx_entity" json:"entity_kind"`
	EntityID   string `gorm:"not null;index:idx_entity" json:"entity_id"`
}

// Credential 凭据记录
// encrypted_secret 为打包格式 v1:<salt>:<nonce>:<ciphertext>（各部分base64），
// 明文密钥和主密码均不落库
type Credential struct {
	ID        string    `gorm:"primarykey;size:36" json:"id"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`

	EntityRef EntityRef `gorm:"embedded" json:"entity_ref"`

	Username        string `json:"username,omitempty"`
	EncryptedSecret string `gorm:"type:text;not null" json:"-"`
}

func (Credential) TableName() string {
	return "credential"
}

type CredentialAction string

const (
	CredentialActionCreate CredentialAction = "create"
	CredentialActionReveal CredentialAction = "reveal"
	CredentialActionUpdate CredentialAction = "update"
	CredentialActionDelete CredentialAction = "delete"
	CredentialActionList   CredentialAction = "list"
)

// CredentialAccessLog 凭据访问审计，每次操作（包括失败）都写一条
type CredentialAccessLog struct {
	ID           uint             `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time        `gorm:"not null;index" json:"created_at"`
	CredentialID string           `gorm:"size:36;index" json:"credential_id"`
	Actor        string           `gorm:"not null" json:"actor"`
	Action       CredentialAction `gorm:"not null" json:"action"`
	Success      bool             `gorm:"not null" json:"success"`
}

func (CredentialAccessLog) TableName() string {
	return "credential_access_log"
}
