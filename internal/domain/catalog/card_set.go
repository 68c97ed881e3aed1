package catalog

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardSet is a Pokémon TCG expansion synced from the card-index backend.
// SourceID is the upstream identifier (the mapped "_id").
type CardSet struct {
	ID          uuid.UUID `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	SourceID    string    `gorm:"uniqueIndex;not null;column:source_id" json:"source_id"`
	Name        string    `gorm:"not null;column:name;index" json:"name"`
	Series      string    `gorm:"column:series" json:"series"`
	Language    string    `gorm:"column:language;not null;default:'en'" json:"language"`
	ReleaseYear int       `gorm:"column:release_year" json:"release_year"`
	TotalCards  int       `gorm:"column:total_cards" json:"total_cards"`
	SymbolURL   string    `gorm:"column:symbol_url" json:"symbol_url"`
	SyncedAt    time.Time `gorm:"column:synced_at" json:"synced_at"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (CardSet) TableName() string { return "card_set" }
