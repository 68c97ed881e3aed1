package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardDefinition is one printable card within a set (catalog data, not an
// owned item).
type CardDefinition struct {
	ID       uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SetID    uuid.UUID `gorm:"type:uuid;not null;index" json:"set_id"`
	Set      *CardSet  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SetID;references:ID" json:"set,omitempty"`
	SourceID string    `gorm:"uniqueIndex;not null;column:source_id" json:"source_id"`

	Name    string `gorm:"not null;column:name;index" json:"name"`
	Number  string `gorm:"not null;column:number" json:"number"`
	Rarity  string `gorm:"column:rarity" json:"rarity"`
	Variety string `gorm:"column:variety" json:"variety"`

	ImageURL string `gorm:"column:image_url" json:"image_url"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CardDefinition) TableName() string { return "card_definition" }
