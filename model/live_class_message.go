package model

import (
	"time"
)

// LiveClassMessage is a chat message tied to a live class and author.
// Messages are immutable once created and ordered by creation time.
type LiveClassMessage struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	LiveClassID uint      `gorm:"not null;index" json:"live_class_id"`
	UserID      uint      `gorm:"not null;index" json:"user_id"`
	Message     string    `gorm:"type:text;not null" json:"message"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`

	// Relationships
	LiveClass LiveClass `gorm:"foreignKey:LiveClassID;constraint:OnDelete:CASCADE" json:"-"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for LiveClassMessage
func (LiveClassMessage) TableName() string {
	return "live_class_messages"
}
