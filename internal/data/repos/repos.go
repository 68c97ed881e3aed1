// Package repos re-exports every repository interface and constructor so
// the wiring layer has a single import.
package repos

import (
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos/activity"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/auctions"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/auth"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/catalog"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/collection"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/sales"
	"github.com/sorenkv/cardvault-backend/internal/data/repos/user"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type UserTokenRepo = auth.UserTokenRepo

type CardSetRepo = catalog.CardSetRepo
type CardDefinitionRepo = catalog.CardDefinitionRepo

type GradedCardRepo = collection.GradedCardRepo
type RawCardRepo = collection.RawCardRepo
type SealedProductRepo = collection.SealedProductRepo
type ListFilter = collection.ListFilter
type ValueTotals = collection.ValueTotals

type AuctionRepo = auctions.AuctionRepo
type AuctionItemRepo = auctions.AuctionItemRepo

type SaleRecordRepo = sales.SaleRecordRepo
type DbaDraftRepo = sales.DbaDraftRepo
type MonthlyTotal = sales.MonthlyTotal

type ActivityEventRepo = activity.ActivityEventRepo

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }
func NewUserTokenRepo(db *gorm.DB, baseLog *logger.Logger) UserTokenRepo {
	return auth.NewUserTokenRepo(db, baseLog)
}

func NewCardSetRepo(db *gorm.DB, baseLog *logger.Logger) CardSetRepo {
	return catalog.NewCardSetRepo(db, baseLog)
}
func NewCardDefinitionRepo(db *gorm.DB, baseLog *logger.Logger) CardDefinitionRepo {
	return catalog.NewCardDefinitionRepo(db, baseLog)
}

func NewGradedCardRepo(db *gorm.DB, baseLog *logger.Logger) GradedCardRepo {
	return collection.NewGradedCardRepo(db, baseLog)
}
func NewRawCardRepo(db *gorm.DB, baseLog *logger.Logger) RawCardRepo {
	return collection.NewRawCardRepo(db, baseLog)
}
func NewSealedProductRepo(db *gorm.DB, baseLog *logger.Logger) SealedProductRepo {
	return collection.NewSealedProductRepo(db, baseLog)
}

func NewAuctionRepo(db *gorm.DB, baseLog *logger.Logger) AuctionRepo {
	return auctions.NewAuctionRepo(db, baseLog)
}
func NewAuctionItemRepo(db *gorm.DB, baseLog *logger.Logger) AuctionItemRepo {
	return auctions.NewAuctionItemRepo(db, baseLog)
}

func NewSaleRecordRepo(db *gorm.DB, baseLog *logger.Logger) SaleRecordRepo {
	return sales.NewSaleRecordRepo(db, baseLog)
}
func NewDbaDraftRepo(db *gorm.DB, baseLog *logger.Logger) DbaDraftRepo {
	return sales.NewDbaDraftRepo(db, baseLog)
}

func NewActivityEventRepo(db *gorm.DB, baseLog *logger.Logger) ActivityEventRepo {
	return activity.NewActivityEventRepo(db, baseLog)
}
