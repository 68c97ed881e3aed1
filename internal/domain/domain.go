// Package domain re-exports the model types of every area so repos and
// services can refer to them through a single import.
package domain

import (
	"github.com/sorenkv/cardvault-backend/internal/domain/activity"
	"github.com/sorenkv/cardvault-backend/internal/domain/auctions"
	"github.com/sorenkv/cardvault-backend/internal/domain/auth"
	"github.com/sorenkv/cardvault-backend/internal/domain/catalog"
	"github.com/sorenkv/cardvault-backend/internal/domain/collection"
	"github.com/sorenkv/cardvault-backend/internal/domain/sales"
	"github.com/sorenkv/cardvault-backend/internal/domain/user"
)

type User = user.User
type UserToken = auth.UserToken

type CardSet = catalog.CardSet
type CardDefinition = catalog.CardDefinition

type GradedCard = collection.GradedCard
type RawCard = collection.RawCard
type SealedProduct = collection.SealedProduct

type Auction = auctions.Auction
type AuctionItem = auctions.AuctionItem

type SaleRecord = sales.SaleRecord
type DbaDraft = sales.DbaDraft

type ActivityEvent = activity.ActivityEvent

// Collection item status values.
const (
	ItemStatusOwned  = collection.StatusOwned
	ItemStatusListed = collection.StatusListed
	ItemStatusSold   = collection.StatusSold
)

// Auction lifecycle.
const (
	AuctionStatusDraft    = auctions.StatusDraft
	AuctionStatusExported = auctions.StatusExported
	AuctionStatusClosed   = auctions.StatusClosed
)

// Lot item kinds.
const (
	ItemKindGraded = auctions.ItemKindGraded
	ItemKindRaw    = auctions.ItemKindRaw
	ItemKindSealed = auctions.ItemKindSealed
)

// Sale channels.
const (
	SaleChannelAuction = sales.ChannelAuction
	SaleChannelDBA     = sales.ChannelDBA
	SaleChannelDirect  = sales.ChannelDirect
)

// DBA draft lifecycle.
const (
	DbaDraftStatusDraft    = sales.DraftStatusDraft
	DbaDraftStatusExported = sales.DraftStatusExported
)

// Activity feed kinds.
const (
	ActivityItemAdded      = activity.KindItemAdded
	ActivityItemUpdated    = activity.KindItemUpdated
	ActivityItemSold       = activity.KindItemSold
	ActivityAuctionCreated = activity.KindAuctionCreated
	ActivityAuctionClosed  = activity.KindAuctionClosed
	ActivityDraftCreated   = activity.KindDraftCreated
	ActivityDraftExported  = activity.KindDraftExported
	ActivityCatalogSynced  = activity.KindCatalogSynced
)
