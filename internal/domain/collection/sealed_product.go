package collection

import (
	"time"

	"github.com/google/uuid"
	"github.com/sorenkv/cardvault-backend/internal/domain/catalog"
	"github.com/sorenkv/cardvault-backend/internal/domain/user"
	"gorm.io/gorm"
)

// SealedProduct is an unopened product (booster box, ETB, tin, ...).
type SealedProduct struct {
	ID     uuid.UUID  `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	UserID uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	User   *user.User `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`

	Name        string `gorm:"not null;column:name" json:"name"`
	ProductType string `gorm:"column:product_type;not null" json:"product_type"`
	Language    string `gorm:"column:language;not null;default:'en'" json:"language"`

	SetID *uuid.UUID       `gorm:"type:uuid;column:set_id;index" json:"set_id,omitempty"`
	Set   *catalog.CardSet `gorm:"foreignKey:SetID;references:ID" json:"set,omitempty"`

	Quantity int `gorm:"column:quantity;not null;default:1" json:"quantity"`

	// Prices in DKK øre.
	PurchasePrice  int64 `gorm:"column:purchase_price" json:"purchase_price"`
	EstimatedValue int64 `gorm:"column:estimated_value" json:"estimated_value"`

	Status string     `gorm:"column:status;not null;default:'owned';index" json:"status"`
	SoldAt *time.Time `gorm:"column:sold_at" json:"sold_at,omitempty"`

	ImageBucketKey string `gorm:"column:image_bucket_key" json:"image_bucket_key"`
	ImageURL       string `gorm:"column:image_url" json:"image_url"`

	Notes string `gorm:"column:notes;type:text" json:"notes"`

	CreatedAt time.Time      `gorm:"not null;default:now()" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null;default:now()" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (SealedProduct) TableName() string { return "sealed_product" }
