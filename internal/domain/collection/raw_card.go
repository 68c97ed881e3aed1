package collection

import (
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/domain/catalog"
	"github.com/sorenkv/cardvault-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// RawCard is an ungraded single in the collection.
type RawCard struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	CardDefinitionID *uuid.UUID              `gorm:"type:uuid;column:card_definition_id;index" json:"card_definition_id,omitempty"`
	CardDefinition   *catalog.CardDefinition `gorm:"foreignKey:CardDefinitionID;references:ID" json:"card_definition,omitempty"`

	// NM, LP, MP, HP, DMG.
	Condition string `gorm:"column:condition;not null;default:'NM'" json:"condition"`
	Quantity  int    `gorm:"column:quantity;not null;default:1" json:"quantity"`

	// Prices in DKK øre.
	PurchasePrice  int64 `gorm:"column:purchase_price" json:"purchase_price"`
	EstimatedValue int64 `gorm:"column:estimated_value" json:"estimated_value"`

	Status string     `gorm:"column:status;not null;default:'owned';index" json:"status"`
	SoldAt *time.Time `gorm:"column:sold_at" json:"sold_at,omitempty"`

	ImageBucketKey string         `gorm:"column:image_bucket_key" json:"image_bucket_key"`
	ImageURL       string         `gorm:"column:image_url" json:"image_url"`
	OCRCandidates  datatypes.JSON `gorm:"column:ocr_candidates;type:jsonb" json:"ocr_candidates,omitempty"`

	Notes string `gorm:"column:notes;type:text" json:"notes"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (RawCard) TableName() string { return "raw_card" }
