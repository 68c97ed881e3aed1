package auctions

import (
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/domain/user"
	"gorm.io/gorm"
)

const (
	StatusDraft    = "draft"
	StatusExported = "exported"
	StatusClosed   = "closed"
)

// Auction is a batch of collection items prepared for an auction house.
type Auction struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Title       string `gorm:"not null;column:title" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`
	Status      string `gorm:"column:status;not null;default:'draft';index" json:"status"`

	// Prices in DKK øre.
	ReservePrice  int64 `gorm:"column:reserve_price" json:"reserve_price"`
	TotalEstimate int64 `gorm:"column:total_estimate" json:"total_estimate"`

	ExportedAt *time.Time `gorm:"column:exported_at" json:"exported_at,omitempty"`
	ClosedAt   *time.Time `gorm:"column:closed_at" json:"closed_at,omitempty"`

	Items []AuctionItem `gorm:"foreignKey:AuctionID;references:ID" json:"items,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Auction) TableName() string { return "auction" }
