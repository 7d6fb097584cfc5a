package cache

import (
	"errors"
	"testing"
	"time"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/domain/season"
	seasonmock "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/mocks/domain/season"
	basecache "github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/platform/cache"
	"github.com/stretchr/testify/mock"
)

func TestSeasonRepository_GetCurrent_LoadsOnce(t *testing.T) {
	next := seasonmock.NewRepository(t)
	next.On("GetCurrent", mock.Anything).
		Return(season.Season{ID: "season-6", Name: "Season 6", IsCurrent: true}, true, nil).
		Once()

	repo := NewSeasonRepository(next, basecache.NewStore(time.Minute, 10))
	for range 3 {
		got, exists, err := repo.GetCurrent(t.Context())
		if err != nil {
			t.Fatalf("get current season: %v", err)
		}
		if !exists || got.ID != "season-6" {
			t.Fatalf("unexpected season: exists=%v got=%+v", exists, got)
		}
	}
}

func TestSeasonRepository_GetByID_CachesMissButNotError(t *testing.T) {
	next := seasonmock.NewRepository(t)
	next.On("GetByID", mock.Anything, "season-1").
		Return(season.Season{}, false, nil).
		Once()
	next.On("GetByID", mock.Anything, "season-2").
		Return(season.Season{}, false, errors.New("connection refused")).
		Twice()

	repo := NewSeasonRepository(next, basecache.NewStore(time.Minute, 10))
	for range 2 {
		if _, exists, err := repo.GetByID(t.Context(), "season-1"); err != nil || exists {
			t.Fatalf("expected cached miss, exists=%v err=%v", exists, err)
		}
		if _, _, err := repo.GetByID(t.Context(), "season-2"); err == nil {
			t.Fatalf("expected store error")
		}
	}
}
