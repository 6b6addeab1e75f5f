package ingredients

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jordanblake/cartcompass-backend/pkg/db/models"
	pkgerrors "github.com/jordanblake/cartcompass-backend/pkg/errors"
	"gorm.io/gorm"
)

type stubRepo struct {
	byLookup map[string]*models.Ingredient
	upserts  int
}

func newStubRepo() *stubRepo {
	return &stubRepo{byLookup: map[string]*models.Ingredient{}}
}

func (s *stubRepo) FindByLookup(_ context.Context, lookup string) (*models.Ingredient, error) {
	if row, ok := s.byLookup[lookup]; ok {
		return row, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Ingredient, error) {
	for _, row := range s.byLookup {
		if row.ID == id {
			return row, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubRepo) Upsert(_ context.Context, name, lookup string) (*models.Ingredient, error) {
	s.upserts++
	if row, ok := s.byLookup[lookup]; ok {
		return row, nil
	}
	row := &models.Ingredient{ID: uuid.New(), Name: name, LookupName: lookup}
	s.byLookup[lookup] = row
	return row, nil
}

func (s *stubRepo) List(_ context.Context) ([]models.Ingredient, error) {
	out := make([]models.Ingredient, 0, len(s.byLookup))
	for _, row := range s.byLookup {
		out = append(out, *row)
	}
	return out, nil
}

func TestResolveRejectsBlankName(t *testing.T) {
	svc, err := NewService(newStubRepo())
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	for _, raw := range []string{"", "   ", "\t\n"} {
		_, err := svc.Resolve(context.Background(), raw)
		if err == nil {
			t.Fatalf("expected error for %q", raw)
		}
		if pkgerrors.As(err).Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation code, got %v", pkgerrors.As(err).Code())
		}
	}
}

func TestResolveIsIdempotentAcrossSpellings(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	first, err := svc.Resolve(context.Background(), "Chicken Breast")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	for _, raw := range []string{"chicken breast", "  CHICKEN   BREAST ", "Chicken\tBreast"} {
		got, err := svc.Resolve(context.Background(), raw)
		if err != nil {
			t.Fatalf("resolve %q: %v", raw, err)
		}
		if got.ID != first.ID {
			t.Fatalf("resolve %q returned %s, want %s", raw, got.ID, first.ID)
		}
	}

	if repo.upserts != 1 {
		t.Fatalf("expected a single upsert, got %d", repo.upserts)
	}
}

func TestResolvePreservesDisplayName(t *testing.T) {
	repo := newStubRepo()
	svc, _ := NewService(repo)

	got, err := svc.Resolve(context.Background(), "  Organic Eggs  ")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got.Name != "Organic Eggs" {
		t.Fatalf("display name = %q, want %q", got.Name, "Organic Eggs")
	}
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _ := NewService(newStubRepo())

	_, err := svc.GetByID(context.Background(), uuid.New())
	if err == nil {
		t.Fatal("expected error")
	}
	if pkgerrors.As(err).Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not-found code, got %v", pkgerrors.As(err).Code())
	}
}
