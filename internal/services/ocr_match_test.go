package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/sorenkv/cardvault-backend/internal/domain"
	"github.com/sorenkv/cardvault-backend/internal/platform/apierr"
	"github.com/sorenkv/cardvault-backend/internal/platform/logger"
)

type fakeDefRepo struct {
	defs []*types.CardDefinition
}

func (f *fakeDefRepo) Upsert(ctx context.Context, tx *gorm.DB, defs []*types.CardDefinition) ([]*types.CardDefinition, error) {
	return defs, nil
}

func (f *fakeDefRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.CardDefinition, error) {
	var out []*types.CardDefinition
	for _, def := range f.defs {
		for _, id := range ids {
			if def.ID == id {
				out = append(out, def)
			}
		}
	}
	return out, nil
}

func (f *fakeDefRepo) GetBySourceIDs(ctx context.Context, tx *gorm.DB, sourceIDs []string) ([]*types.CardDefinition, error) {
	return nil, nil
}

func (f *fakeDefRepo) ListBySetIDs(ctx context.Context, tx *gorm.DB, setIDs []uuid.UUID) ([]*types.CardDefinition, error) {
	return nil, nil
}

func (f *fakeDefRepo) Search(ctx context.Context, tx *gorm.DB, query string, limit int) ([]*types.CardDefinition, error) {
	var out []*types.CardDefinition
	q := strings.ToLower(query)
	for _, def := range f.defs {
		name := strings.ToLower(def.Name)
		if strings.Contains(name, q) || strings.Contains(q, name) {
			out = append(out, def)
		}
	}
	return out, nil
}

func (f *fakeDefRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	return int64(len(f.defs)), nil
}

func newTestMatcher(t *testing.T, defs []*types.CardDefinition) *ocrMatchService {
	t.Helper()
	log, err := logger.New("debug")
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return &ocrMatchService{
		log:     log,
		defRepo: &fakeDefRepo{defs: defs},
	}
}

func TestMatchText_RanksExactNameWithNumberFirst(t *testing.T) {
	setA := uuid.New()
	setB := uuid.New()
	defs := []*types.CardDefinition{
		{ID: uuid.New(), SetID: setA, Name: "Charizard", Number: "4/102"},
		{ID: uuid.New(), SetID: setB, Name: "Charizard", Number: "11/108"},
		{ID: uuid.New(), SetID: setA, Name: "Charmeleon", Number: "24/102"},
	}
	svc := newTestMatcher(t, defs)

	candidates, err := svc.MatchText(context.Background(), "Charizard HP 120\nStage 2\n4/102")
	if err != nil {
		t.Fatalf("MatchText: %v", err)
	}
	if len(candidates) == 0 {
		t.Fatal("expected candidates, got none")
	}
	top := candidates[0]
	if top.Name != "Charizard" || top.Number != "4/102" {
		t.Fatalf("expected Charizard 4/102 first, got %s %s", top.Name, top.Number)
	}
	if top.Score <= candidates[len(candidates)-1].Score {
		t.Fatalf("expected descending scores, got %v", candidates)
	}
}

func TestMatchText_EmptyInput(t *testing.T) {
	svc := newTestMatcher(t, nil)
	candidates, err := svc.MatchText(context.Background(), "   ")
	if err != nil {
		t.Fatalf("MatchText: %v", err)
	}
	if candidates != nil {
		t.Fatalf("expected nil candidates, got %v", candidates)
	}
}

func TestMatchText_CapsCandidateCount(t *testing.T) {
	defs := make([]*types.CardDefinition, 0, 8)
	for i := 0; i < 8; i++ {
		defs = append(defs, &types.CardDefinition{
			ID: uuid.New(), SetID: uuid.New(), Name: "Pikachu", Number: "25/102",
		})
	}
	svc := newTestMatcher(t, defs)

	candidates, err := svc.MatchText(context.Background(), "Pikachu")
	if err != nil {
		t.Fatalf("MatchText: %v", err)
	}
	if len(candidates) > maxCandidates {
		t.Fatalf("expected at most %d candidates, got %d", maxCandidates, len(candidates))
	}
}

func TestExtractCardNumber(t *testing.T) {
	cases := []struct {
		name  string
		lines []string
		want  string
	}{
		{"standard", []string{"Charizard", "4/102"}, "4"},
		{"padded", []string{"025/198"}, "25"},
		{"spaced", []string{"58 / 102"}, "58"},
		{"absent", []string{"Charizard", "Fire Spin 100"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := extractCardNumber(tc.lines); got != tc.want {
				t.Fatalf("extractCardNumber(%v) = %q, want %q", tc.lines, got, tc.want)
			}
		})
	}
}

func TestCleanOCRLine(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Charizard HP 120", "Charizard"},
		{"  Pikachu · ", "Pikachu"},
		{"Blastoise", "Blastoise"},
	}
	for _, tc := range cases {
		if got := cleanOCRLine(tc.in); got != tc.want {
			t.Fatalf("cleanOCRLine(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestPlausibleNameLine(t *testing.T) {
	cases := []struct {
		line string
		want bool
	}{
		{"Charizard", true},
		{"Dark Dragonite", true},
		{"4/102", false},
		{"120", false},
		{"When this Pokemon is damaged by an attack", false},
	}
	for _, tc := range cases {
		if got := plausibleNameLine(tc.line); got != tc.want {
			t.Fatalf("plausibleNameLine(%q) = %v, want %v", tc.line, got, tc.want)
		}
	}
}

func TestMatchCardImage_FailsWithoutVision(t *testing.T) {
	svc := newTestMatcher(t, nil)
	userID := uuid.New()
	card := &types.GradedCard{ID: uuid.New(), UserID: userID}
	svc.gradedRepo = &stubGradedByID{card: card}

	_, err := svc.MatchCardImage(context.Background(), userID, types.ItemKindGraded, card.ID, []byte("jpeg-bytes"), "image/jpeg")

	var apiErr *apierr.Error
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected an api error, got %v", err)
	}
	if apiErr.Status != http.StatusServiceUnavailable || apiErr.Code != "OCR_NOT_CONFIGURED" {
		t.Fatalf("unexpected status/code: %d %s", apiErr.Status, apiErr.Code)
	}
}
