package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/sorenkv/cardvault-backend/internal/clients/gcp"
	"github.com/sorenkv/cardvault-backend/internal/data/repos"
	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
	"github.com/sorenkv/cardvault-backend/internal/realtime"
)

// CardCandidate is one scored catalog match, persisted on the item as
// jsonb and shown in the UI for the user to confirm.
type CardCandidate struct {
	CardDefinitionID uuid.UUID `json:"card_definition_id"`
	Name             string    `json:"name"`
	Number           string    `json:"number"`
	SetID            uuid.UUID `json:"set_id"`
	ImageURL         string    `json:"image_url,omitempty"`
	Score            float64   `json:"score"`
}

type OcrMatchService interface {
	MatchCardImage(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID, img []byte, mimeType string) ([]CardCandidate, error)
	MatchText(ctx context.Context, text string) ([]CardCandidate, error)
	ConfirmMatch(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID, cardDefinitionID uuid.UUID) error
}

type ocrMatchService struct {
	db  *gorm.DB
	log *logger.Logger

	vision     gcp.Vision
	defRepo    repos.CardDefinitionRepo
	gradedRepo repos.GradedCardRepo
	rawRepo    repos.RawCardRepo

	emitter Emitter
}

func NewOcrMatchService(
	db *gorm.DB,
	log *logger.Logger,
	vision gcp.Vision,
	defRepo repos.CardDefinitionRepo,
	gradedRepo repos.GradedCardRepo,
	rawRepo repos.RawCardRepo,
	emitter Emitter,
) OcrMatchService {
	return &ocrMatchService{
		db:         db,
		log:        log.With("service", "OcrMatchService"),
		vision:     vision,
		defRepo:    defRepo,
		gradedRepo: gradedRepo,
		rawRepo:    rawRepo,
		emitter:    emitter,
	}
}

const maxCandidates = 5

// cardNumberPattern matches the "12/102" style collector numbers printed
// in the bottom corner of the card.
var cardNumberPattern = regexp.MustCompile(`\b(\d{1,3})\s*/\s*\d{1,3}\b`)

func (s *ocrMatchService) MatchCardImage(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID, img []byte, mimeType string) ([]CardCandidate, error) {
	if err := s.checkOwnership(ctx, userID, itemKind, itemID); err != nil {
		return nil, err
	}
	if s.vision == nil {
		return nil, apierr.New(http.StatusServiceUnavailable, "OCR_NOT_CONFIGURED",
			fmt.Errorf("image text recognition is not configured"))
	}

	result, err := s.vision.OCRImageBytes(ctx, img, mimeType)
	if err != nil {
		return nil, fmt.Errorf("failed to OCR card image: %w", err)
	}
	if result == nil || strings.TrimSpace(result.PrimaryText) == "" {
		s.log.Info("no text detected on card image", "item_id", itemID)
		return nil, nil
	}

	candidates, err := s.matchLines(ctx, result.Lines)
	if err != nil {
		return nil, err
	}
	if err := s.persistCandidates(ctx, itemKind, itemID, candidates); err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, realtime.Message{
		Channel: realtime.UserChannel(userID),
		Event:   realtime.EventOCRMatchUpdated,
		Data:    map[string]any{"item_id": itemID, "candidates": len(candidates)},
	})
	return candidates, nil
}

func (s *ocrMatchService) MatchText(ctx context.Context, text string) ([]CardCandidate, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}
	return s.matchLines(ctx, strings.Split(text, "\n"))
}

// ConfirmMatch binds the item to the chosen catalog card and clears the
// stored candidate list.
func (s *ocrMatchService) ConfirmMatch(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID, cardDefinitionID uuid.UUID) error {
	defs, err := s.defRepo.GetByIDs(ctx, nil, []uuid.UUID{cardDefinitionID})
	if err != nil {
		return err
	}
	if len(defs) == 0 {
		return fmt.Errorf("card definition not found")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		switch itemKind {
		case types.ItemKindGraded:
			rows, err := s.gradedRepo.GetByIDs(ctx, tx, []uuid.UUID{itemID})
			if err != nil || len(rows) == 0 || rows[0].UserID != userID {
				return fmt.Errorf("graded card %s not found", itemID)
			}
			rows[0].CardDefinitionID = &cardDefinitionID
			rows[0].OCRCandidates = nil
			_, err = s.gradedRepo.Update(ctx, tx, rows[0])
			return err
		case types.ItemKindRaw:
			rows, err := s.rawRepo.GetByIDs(ctx, tx, []uuid.UUID{itemID})
			if err != nil || len(rows) == 0 || rows[0].UserID != userID {
				return fmt.Errorf("raw card %s not found", itemID)
			}
			rows[0].CardDefinitionID = &cardDefinitionID
			rows[0].OCRCandidates = nil
			_, err = s.rawRepo.Update(ctx, tx, rows[0])
			return err
		default:
			return fmt.Errorf("item kind %q does not support card matching", itemKind)
		}
	})
}

// matchLines runs a catalog search per plausible name line and scores
// the union of results against everything the OCR saw.
func (s *ocrMatchService) matchLines(ctx context.Context, lines []string) ([]CardCandidate, error) {
	number := extractCardNumber(lines)
	seen := make(map[uuid.UUID]*CardCandidate)

	for _, line := range lines {
		query := cleanOCRLine(line)
		if len(query) < 3 || !plausibleNameLine(query) {
			continue
		}
		defs, err := s.defRepo.Search(ctx, nil, query, 10)
		if err != nil {
			return nil, err
		}
		for _, def := range defs {
			score := scoreCandidate(def, query, number)
			if existing, ok := seen[def.ID]; ok {
				if score > existing.Score {
					existing.Score = score
				}
				continue
			}
			seen[def.ID] = &CardCandidate{
				CardDefinitionID: def.ID,
				Name:             def.Name,
				Number:           def.Number,
				SetID:            def.SetID,
				ImageURL:         def.ImageURL,
				Score:            score,
			}
		}
	}

	candidates := make([]CardCandidate, 0, len(seen))
	for _, c := range seen {
		candidates = append(candidates, *c)
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].Name < candidates[j].Name
	})
	if len(candidates) > maxCandidates {
		candidates = candidates[:maxCandidates]
	}
	return candidates, nil
}

func (s *ocrMatchService) persistCandidates(ctx context.Context, itemKind string, itemID uuid.UUID, candidates []CardCandidate) error {
	raw, err := json.Marshal(candidates)
	if err != nil {
		return err
	}
	switch itemKind {
	case types.ItemKindGraded:
		return s.gradedRepo.UpdateOCRCandidates(ctx, nil, itemID, datatypes.JSON(raw))
	case types.ItemKindRaw:
		return s.rawRepo.UpdateOCRCandidates(ctx, nil, itemID, datatypes.JSON(raw))
	default:
		return fmt.Errorf("item kind %q does not support card matching", itemKind)
	}
}

func (s *ocrMatchService) checkOwnership(ctx context.Context, userID uuid.UUID, itemKind string, itemID uuid.UUID) error {
	switch itemKind {
	case types.ItemKindGraded:
		rows, err := s.gradedRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return fmt.Errorf("graded card %s not found", itemID)
		}
	case types.ItemKindRaw:
		rows, err := s.rawRepo.GetByIDs(ctx, nil, []uuid.UUID{itemID})
		if err != nil || len(rows) == 0 || rows[0].UserID != userID {
			return fmt.Errorf("raw card %s not found", itemID)
		}
	default:
		return fmt.Errorf("item kind %q does not support card matching", itemKind)
	}
	return nil
}

// scoreCandidate weighs how well a catalog card explains the OCR text.
// An exact name hit dominates; a collector number match breaks ties
// between prints of the same card in different sets.
func scoreCandidate(def *types.CardDefinition, query, number string) float64 {
	name := strings.ToLower(def.Name)
	q := strings.ToLower(query)

	var score float64
	switch {
	case name == q:
		score = 1.0
	case strings.HasPrefix(q, name) || strings.HasPrefix(name, q):
		score = 0.8
	case strings.Contains(q, name) || strings.Contains(name, q):
		score = 0.6
	default:
		score = 0.3
	}
	if number != "" && leadingNumber(def.Number) == number {
		score += 0.5
	}
	return score
}

// extractCardNumber pulls the numerator of the first "12/102" token
// found in the OCR lines.
func extractCardNumber(lines []string) string {
	for _, line := range lines {
		if m := cardNumberPattern.FindStringSubmatch(line); m != nil {
			return strings.TrimLeft(m[1], "0")
		}
	}
	return ""
}

func leadingNumber(number string) string {
	i := 0
	for i < len(number) && number[i] >= '0' && number[i] <= '9' {
		i++
	}
	return strings.TrimLeft(number[:i], "0")
}

// cleanOCRLine strips the noise Vision picks up around card names
// (HP values, energy symbols rendered as stray punctuation).
func cleanOCRLine(line string) string {
	line = strings.TrimSpace(line)
	if i := strings.Index(strings.ToUpper(line), " HP"); i > 0 {
		line = line[:i]
	}
	return strings.Trim(line, " .,*·|")
}

// plausibleNameLine filters out lines that are clearly not a card name:
// pure numbers, attack text, flavor text sentences.
func plausibleNameLine(line string) bool {
	if cardNumberPattern.MatchString(line) {
		return false
	}
	letters := 0
	for _, r := range line {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	if letters < 3 {
		return false
	}
	return len(strings.Fields(line)) <= 4
}
