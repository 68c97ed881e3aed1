package collection

import (
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/domain/catalog"
	"github.com/sorenkv/cardvault-backend/internal/domain/user"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Item status values shared by all collection item kinds.
const (
	StatusOwned  = "owned"
	StatusListed = "listed"
	StatusSold   = "sold"
)

// GradedCard is a slabbed, professionally graded card in the collection.
type GradedCard struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	CardDefinitionID *uuid.UUID              `gorm:"type:uuid;column:card_definition_id;index" json:"card_definition_id,omitempty"`
	CardDefinition   *catalog.CardDefinition `gorm:"foreignKey:CardDefinitionID;references:ID" json:"card_definition,omitempty"`

	GradingCompany string `gorm:"column:grading_company;not null;default:'PSA'" json:"grading_company"`
	Grade          int    `gorm:"column:grade;not null" json:"grade"`
	CertNumber     string `gorm:"uniqueIndex;not null;column:cert_number" json:"cert_number"`

	// Prices in DKK øre.
	PurchasePrice  int64 `gorm:"column:purchase_price" json:"purchase_price"`
	EstimatedValue int64 `gorm:"column:estimated_value" json:"estimated_value"`

	Status string     `gorm:"column:status;not null;default:'owned';index" json:"status"`
	SoldAt *time.Time `gorm:"column:sold_at" json:"sold_at,omitempty"`

	ImageBucketKey string `gorm:"column:image_bucket_key" json:"image_bucket_key"`
	ImageURL       string `gorm:"column:image_url" json:"image_url"`

	// Ranked catalog candidates from the OCR matching workflow.
	OCRCandidates datatypes.JSON `gorm:"column:ocr_candidates;type:jsonb" json:"ocr_candidates,omitempty"`

	Notes string `gorm:"column:notes;type:text" json:"notes"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (GradedCard) TableName() string { return "graded_card" }
