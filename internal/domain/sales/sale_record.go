package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/domain/user"
	"gorm.io/gorm"
)

// Sale channels.
const (
	ChannelAuction = "auction"
	ChannelDBA     = "dba"
	ChannelDirect  = "direct"
)

// SaleRecord captures a completed sale of a collection item.
type SaleRecord struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	ItemKind string    `gorm:"column:item_kind;not null" json:"item_kind"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`

	// Prices in DKK øre.
	SalePrice int64 `gorm:"column:sale_price;not null" json:"sale_price"`
	Fees      int64 `gorm:"column:fees" json:"fees"`

	Channel string    `gorm:"column:channel;not null;default:'direct'" json:"channel"`
	Buyer   string    `gorm:"column:buyer" json:"buyer"`
	SoldAt  time.Time `gorm:"column:sold_at;not null;index" json:"sold_at"`

	Notes string `gorm:"column:notes;type:text" json:"notes"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SaleRecord) TableName() string { return "sale_record" }
