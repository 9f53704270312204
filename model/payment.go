package model

import (
	"time"

	"gorm.io/datatypes"
)

// PaymentTransaction records a payment initiation with the wallet gateway.
// The service only builds and signs the payload; settlement happens on the
// gateway side, so status stays "initiated" until a callback flow exists.
type PaymentTransaction struct {
	ID          uint           `gorm:"primaryKey" json:"id"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	UserID      uint           `gorm:"not null;index" json:"user_id"`
	CourseID    uint           `gorm:"not null;index" json:"course_id"`
	TxnRef      string         `gorm:"type:varchar(100);uniqueIndex;not null" json:"txn_ref"`
	AmountPaisa int64          `gorm:"not null" json:"amount_paisa"`
	Currency    string         `gorm:"type:varchar(10);default:'PKR'" json:"currency"`
	Status      string         `gorm:"type:varchar(20);default:'initiated'" json:"status"`
	Payload     datatypes.JSON `gorm:"type:jsonb" json:"payload"`

	// Relationships
	User   User   `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Course Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName specifies the table name for PaymentTransaction
func (PaymentTransaction) TableName() string {
	return "payment_transactions"
}
