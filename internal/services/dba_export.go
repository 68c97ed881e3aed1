package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

// DraftInput creates or updates a DBA.dk listing draft. Title and
// Description override the generated text when non-empty.
type DraftInput struct {
	ItemKind    string
	ItemID      uuid.UUID
	Price       int64
	Title       string
	Description string
}

// dbaPayload is the exported listing shape, field names matching the
// DBA.dk bulk upload format.
type dbaPayload struct {
	Overskrift  string `json:"overskrift"`
	Beskrivelse string `json:"beskrivelse"`
	PrisDKK     string `json:"pris"`
	Kategori    string `json:"kategori"`
}

type DbaExportService interface {
	CreateDraft(ctx context.Context, userID uuid.UUID, input DraftInput) (*types.DbaDraft, error)
	UpdateDraft(ctx context.Context, userID uuid.UUID, draftID uuid.UUID, input DraftInput) (*types.DbaDraft, error)
	ListDrafts(ctx context.Context, userID uuid.UUID, status string) ([]*types.DbaDraft, error)
	DeleteDraft(ctx context.Context, userID uuid.UUID, draftID uuid.UUID) error
	ExportJSON(ctx context.Context, userID uuid.UUID, draftIDs []uuid.UUID) ([]byte, error)
	ExportCSV(ctx context.Context, userID uuid.UUID, draftIDs []uuid.UUID) ([]byte, error)
}

type dbaExportService struct {
	db  *gorm.DB
	log *logger.Logger

	draftRepo  repos.DbaDraftRepo
	gradedRepo repos.GradedCardRepo
	rawRepo    repos.RawCardRepo
	sealedRepo repos.SealedProductRepo
	setRepo    repos.CardSetRepo

	activity ActivityService
	emitter  Emitter
}

func NewDbaExportService(
	db *gorm.DB,
	log *logger.Logger,
	draftRepo repos.DbaDraftRepo,
	gradedRepo repos.GradedCardRepo,
	rawRepo repos.RawCardRepo,
	sealedRepo repos.SealedProductRepo,
	setRepo repos.CardSetRepo,
	activity ActivityService,
	emitter Emitter,
) DbaExportService {
	return &dbaExportService{
		db:         db,
		log:        log.With("service", "DbaExportService"),
		draftRepo:  draftRepo,
		gradedRepo: gradedRepo,
		rawRepo:    rawRepo,
		sealedRepo: sealedRepo,
		setRepo:    setRepo,
		activity:   activity,
		emitter:    emitter,
	}
}

func (s *dbaExportService) CreateDraft(ctx context.Context, userID uuid.UUID, input DraftInput) (*types.DbaDraft, error) {
	if input.Price <= 0 {
		return nil, fmt.Errorf("asking price must be positive")
	}
	existing, err := s.draftRepo.GetOpenByItem(ctx, nil, input.ItemKind, input.ItemID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("item already has an open draft")
	}

	title, description, err := s.listingText(ctx, userID, input.ItemKind, input.ItemID, input.Price)
	if err != nil {
		return nil, err
	}
	if input.Title != "" {
		title = input.Title
	}
	if input.Description != "" {
		description = input.Description
	}

	draft := &types.DbaDraft{
		ID:          uuid.New(),
		UserID:      userID,
		ItemKind:    input.ItemKind,
		ItemID:      input.ItemID,
		Title:       title,
		Description: description,
		Price:       roundToWholeKroner(input.Price),
		Status:      types.DbaDraftStatusDraft,
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.draftRepo.Create(ctx, tx, []*types.DbaDraft{draft}); err != nil {
			return fmt.Errorf("failed to create draft: %w", err)
		}
		return s.activity.Record(ctx, tx, userID, types.ActivityDraftCreated, title,
			map[string]any{"draft_id": draft.ID, "item_id": input.ItemID})
	})
	if err != nil {
		return nil, err
	}
	return draft, nil
}

func (s *dbaExportService) UpdateDraft(ctx context.Context, userID uuid.UUID, draftID uuid.UUID, input DraftInput) (*types.DbaDraft, error) {
	draft, err := s.ownedDraft(ctx, userID, draftID)
	if err != nil {
		return nil, err
	}
	if draft.Status != types.DbaDraftStatusDraft {
		return nil, fmt.Errorf("exported drafts cannot be edited")
	}
	if input.Title != "" {
		draft.Title = input.Title
	}
	if input.Description != "" {
		draft.Description = input.Description
	}
	if input.Price > 0 {
		draft.Price = roundToWholeKroner(input.Price)
	}
	return s.draftRepo.Update(ctx, nil, draft)
}

func (s *dbaExportService) ListDrafts(ctx context.Context, userID uuid.UUID, status string) ([]*types.DbaDraft, error) {
	return s.draftRepo.ListByUserID(ctx, nil, userID, status)
}

func (s *dbaExportService) DeleteDraft(ctx context.Context, userID uuid.UUID, draftID uuid.UUID) error {
	if _, err := s.ownedDraft(ctx, userID, draftID); err != nil {
		return err
	}
	return s.draftRepo.SoftDeleteByIDs(ctx, nil, []uuid.UUID{draftID})
}

// ExportJSON renders the selected drafts as a DBA.dk bulk upload array
// and marks them exported. Already exported drafts are rejected.
func (s *dbaExportService) ExportJSON(ctx context.Context, userID uuid.UUID, draftIDs []uuid.UUID) ([]byte, error) {
	drafts, payloads, err := s.prepareExport(ctx, userID, draftIDs)
	if err != nil {
		return nil, err
	}
	out, err := json.MarshalIndent(payloads, "", "  ")
	if err != nil {
		return nil, err
	}
	if err := s.markExported(ctx, userID, drafts, payloads); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *dbaExportService) ExportCSV(ctx context.Context, userID uuid.UUID, draftIDs []uuid.UUID) ([]byte, error) {
	drafts, payloads, err := s.prepareExport(ctx, userID, draftIDs)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"overskrift", "beskrivelse", "pris", "kategori"})
	for _, p := range payloads {
		_ = w.Write([]string{p.Overskrift, p.Beskrivelse, p.PrisDKK, p.Kategori})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := s.markExported(ctx, userID, drafts, payloads); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *dbaExportService) prepareExport(ctx context.Context, userID uuid.UUID, draftIDs []uuid.UUID) ([]*types.DbaDraft, []dbaPayload, error) {
	if len(draftIDs) == 0 {
		return nil, nil, fmt.Errorf("no drafts selected")
	}
	drafts, err := s.draftRepo.GetByIDs(ctx, nil, draftIDs)
	if err != nil {
		return nil, nil, err
	}
	if len(drafts) != len(draftIDs) {
		return nil, nil, fmt.Errorf("one or more drafts not found")
	}
	payloads := make([]dbaPayload, 0, len(drafts))
	for _, draft := range drafts {
		if draft.UserID != userID {
			return nil, nil, fmt.Errorf("draft not found")
		}
		if draft.Status != types.DbaDraftStatusDraft {
			return nil, nil, fmt.Errorf("draft %s already exported", draft.ID)
		}
		payloads = append(payloads, dbaPayload{
			Overskrift:  draft.Title,
			Beskrivelse: draft.Description,
			PrisDKK:     formatWholeDKK(draft.Price),
			Kategori:    "Samlerkort",
		})
	}
	return drafts, payloads, nil
}

func (s *dbaExportService) markExported(ctx context.Context, userID uuid.UUID, drafts []*types.DbaDraft, payloads []dbaPayload) error {
	exportedAt := time.Now().UTC()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := make([]uuid.UUID, 0, len(drafts))
		for i, draft := range drafts {
			raw, err := json.Marshal(payloads[i])
			if err != nil {
				return err
			}
			draft.Payload = datatypes.JSON(raw)
			if _, err := s.draftRepo.Update(ctx, tx, draft); err != nil {
				return err
			}
			ids = append(ids, draft.ID)
		}
		if err := s.draftRepo.MarkExported(ctx, tx, ids, exportedAt); err != nil {
			return err
		}
		return s.activity.Record(ctx, tx, userID, types.ActivityDraftExported, "",
			map[string]any{"count": len(ids)})
	})
	if err != nil {
		return err
	}

	s.emitter.Emit(ctx, realtime.Message{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.EventDraftExported,
		Data:    map[string]any{"count": len(drafts)},
	})
	return nil
}

func (s *dbaExportService) ownedDraft(ctx context.Context, userID uuid.UUID, draftID uuid.UUID) (*types.DbaDraft, error) {
	rows, err := s.draftRepo.GetByIDs(ctx, nil, []uuid.UUID{draftID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 || rows[0].UserID != userID {
		return nil, fmt.Errorf("draft not found")
	}
	return rows[0], nil
}

// listingText builds the Danish listing title and description for an
// item. Titles follow the convention buyers search for on DBA.dk:
// card name, set, number, then grading info.
func (s *dbaExportService) listingText(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID, price int64) (string, string, error) {
	switch itemKind {
	case types.ItemKindGraded:
		rows, err := s.gradedRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return "", "", fmt.Errorf("graded card %s not found", itemID)
		}
		g := rows[0]
		name, setName, number := s.cardNaming(ctx, g.CardDefinition)
		title := joinNonEmpty(" ", "Pokemon", name, setName, number,
			fmt.Sprintf("%s %d", g.GradingCompany, g.Grade))
		desc := joinNonEmpty("\n",
			fmt.Sprintf("%s %s fra %s.", name, number, orText(setName, "ukendt set")),
			fmt.Sprintf("Graded af %s, karakter %d. Certifikatnummer %s.", g.GradingCompany, g.Grade, g.CertNumber),
			"Sendes forsikret eller afhentes efter aftale.",
			fmt.Sprintf("Pris: %s kr.", formatWholeDKK(roundToWholeKroner(price))),
		)
		return title, desc, nil
	case types.ItemKindRaw:
		rows, err := s.rawRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return "", "", fmt.Errorf("raw card %s not found", itemID)
		}
		r := rows[0]
		name, setName, number := s.cardNaming(ctx, r.CardDefinition)
		title := joinNonEmpty(" ", "Pokemon", name, setName, number, conditionDanish(r.Condition))
		desc := joinNonEmpty("\n",
			fmt.Sprintf("%s %s fra %s.", name, number, orText(setName, "ukendt set")),
			fmt.Sprintf("Stand: %s.", conditionDanish(r.Condition)),
			"Sendes i toploader eller afhentes efter aftale.",
			fmt.Sprintf("Pris: %s kr.", formatWholeDKK(roundToWholeKroner(price))),
		)
		return title, desc, nil
	case types.ItemKindSealed:
		rows, err := s.sealedRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return "", "", fmt.Errorf("sealed product %s not found", itemID)
		}
		p := rows[0]
		title := joinNonEmpty(" ", "Pokemon", p.Name, "- uåbnet", p.ProductType)
		desc := joinNonEmpty("\n",
			fmt.Sprintf("%s, helt ny og uåbnet.", p.Name),
			"Sendes forsikret eller afhentes efter aftale.",
			fmt.Sprintf("Pris: %s kr.", formatWholeDKK(roundToWholeKroner(price))),
		)
		return title, desc, nil
	default:
		return "", "", fmt.Errorf("unknown item kind %q", itemKind)
	}
}

func (s *dbaExportService) cardNaming(ctx context.Context, def *types.CardDefinition) (name, setName, number string) {
	if def == nil {
		return "kort", "", ""
	}
	name = def.Name
	number = def.Number
	if def.Set != nil {
		setName = def.Set.Name
	} else if def.SetID != uuid.Nil {
		sets, err := s.setRepo.GetByIDs(ctx, nil, []uuid.UUID{def.SetID})
		if err == nil && len(sets) > 0 {
			setName = sets[0].Name
		}
	}
	return name, setName, number
}

// conditionDanish maps the condition codes used internally to the
// phrases Danish buyers expect.
func conditionDanish(code string) string {
	switch strings.ToUpper(code) {
	case "NM", "M":
		return "Near Mint"
	case "LP":
		return "Let brugt"
	case "MP":
		return "Brugt"
	case "HP", "DMG":
		return "Slidt"
	default:
		return code
	}
}

// roundToWholeKroner rounds øre up to the nearest whole krone; DBA
// listings do not carry øre amounts.
func roundToWholeKroner(ore int64) int64 {
	if rem := ore % 100; rem != 0 {
		return ore + (100 - rem)
	}
	return ore
}

func formatWholeDKK(ore int64) string {
	return fmt.Sprintf("%d", ore/100)
}

func joinNonEmpty(sep string, parts ...string) string {
	kept := parts[:0:0]
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

func orText(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
