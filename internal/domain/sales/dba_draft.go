package sales

import (
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DraftStatusDraft    = "draft"
	DraftStatusExported = "exported"
)

// DbaDraft is a DBA.dk listing draft generated from a collection item.
// Payload holds the rendered listing fields exactly as they will be
// exported.
type DbaDraft struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	ItemKind string    `gorm:"column:item_kind;not null" json:"item_kind"`
	ItemID   uuid.UUID `gorm:"type:uuid;not null;index" json:"item_id"`

	Title       string `gorm:"not null;column:title" json:"title"`
	Description string `gorm:"column:description;type:text" json:"description"`

	// Asking price in DKK øre.
	Price int64 `gorm:"column:price;not null" json:"price"`

	Status  string         `gorm:"column:status;not null;default:'draft';index" json:"status"`
	Payload datatypes.JSON `gorm:"column:payload;type:jsonb" json:"payload,omitempty"`

	ExportedAt *time.Time `gorm:"column:exported_at" json:"exported_at,omitempty"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (DbaDraft) TableName() string { return "dba_draft" }
