package activity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Event kinds shown in the dashboard activity feed.
const (
	KindItemAdded      = "item_added"
	KindItemUpdated    = "item_updated"
	KindItemSold       = "item_sold"
	KindAuctionCreated = "auction_created"
	KindAuctionClosed  = "auction_closed"
	KindDraftCreated   = "draft_created"
	KindDraftExported  = "draft_exported"
	KindCatalogSynced  = "catalog_synced"
)

// ActivityEvent is an append-only feed entry. No soft delete: the feed is
// pruned by age, not edited.
type ActivityEvent struct {
	ID     uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`

	Kind    string `gorm:"column:kind;not null;index" json:"kind"`
	Subject string `gorm:"column:subject" json:"subject"`

	Metadata datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata,omitempty"`

	CreatedAt time.Time `gorm:"not null;default:now();index" json:"created_at"`
}

func (ActivityEvent) TableName() string { return "activity_event" }
