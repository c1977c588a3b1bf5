package model

import "time"

// クライアント状態の永続化（namespace + セッションIDで1行）
type ClientState struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Namespace string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_client_states_ns_owner" json:"namespace"`
	OwnerKey  string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_client_states_ns_owner" json:"owner_key"`
	Payload   string    `gorm:"type:text;not null" json:"payload"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}
