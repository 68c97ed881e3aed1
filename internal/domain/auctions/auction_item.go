package auctions

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Item kinds an auction lot can reference.
const (
	ItemKindGraded = "graded"
	ItemKindRaw    = "raw"
	ItemKindSealed = "sealed"
)

// AuctionItem is one lot in an auction, referencing a collection item by
// kind + id (graded/raw/sealed live in separate tables).
type AuctionItem struct {
	ID        uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuctionID uuid.UUID `gorm:"type:uuid;not null;index" json:"auction_id"`

	ItemKind string    `gorm:"column:item_kind;not null" json:"item_kind"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`

	LotNumber int `gorm:"column:lot_number;not null" json:"lot_number"`

	// Price in DKK øre.
	StartingPrice int64 `gorm:"column:starting_price" json:"starting_price"`

	Notes string `gorm:"column:notes;type:text" json:"notes"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AuctionItem) TableName() string { return "auction_item" }
