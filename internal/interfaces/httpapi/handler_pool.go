package httpapi

import (
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MOODMNKY-LLC/POKE-MNKY-v2-sub004/internal/usecase"
)

type poolEntryDTO struct {
	PokemonID    *int          `json:"pokemon_id"`
	Name         string        `json:"name"`
	PointValue   int           `json:"point_value"`
	Status       string        `json:"status"`
	TeraEligible *bool         `json:"tera_eligible,omitempty"`
	Types        []string      `json:"types"`
	Generation   *int          `json:"generation"`
	BaseStats    *baseStatsDTO `json:"base_stats"`
	Tier         *string       `json:"tier"`
	SpriteURL    string        `json:"sprite_url,omitempty"`
}

type baseStatsDTO struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"special_attack"`
	SpecialDefense int `json:"special_defense"`
	Speed          int `json:"speed"`
}

type poolResponseDTO struct {
	Pokemon  []poolEntryDTO `json:"pokemon"`
	Total    int            `json:"total"`
	SeasonID string         `json:"season_id"`
}

func (h *Handler) ListPool(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPool")
	defer span.End()

	query, err := parsePoolQuery(r.URL.Query())
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.poolService.ListAvailable(ctx, query)
	if err != nil {
		h.logger.WarnContext(ctx, "list pool failed", "season_id", query.SeasonID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]poolEntryDTO, 0, len(result.Pokemon))
	for _, entry := range result.Pokemon {
		items = append(items, poolEntryToDTO(entry))
	}

	writeSuccess(ctx, w, http.StatusOK, poolResponseDTO{
		Pokemon:  items,
		Total:    result.Total,
		SeasonID: result.SeasonID,
	})
}

func parsePoolQuery(values url.Values) (usecase.PoolQuery, error) {
	query := usecase.PoolQuery{
		SeasonID: strings.TrimSpace(values.Get("season_id")),
		Search:   strings.TrimSpace(values.Get("search")),
	}

	var err error
	if query.MinPoints, err = optionalIntParam(values, "min_points"); err != nil {
		return usecase.PoolQuery{}, err
	}
	if query.MaxPoints, err = optionalIntParam(values, "max_points"); err != nil {
		return usecase.PoolQuery{}, err
	}
	if query.Generation, err = optionalIntParam(values, "generation"); err != nil {
		return usecase.PoolQuery{}, err
	}

	limit, err := optionalIntParam(values, "limit")
	if err != nil {
		return usecase.PoolQuery{}, err
	}
	if limit != nil {
		query.Limit = *limit
	}

	return query, nil
}

func optionalIntParam(values url.Values, key string) (*int, error) {
	raw := strings.TrimSpace(values.Get(key))
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return &value, nil
}

func poolEntryToDTO(entry usecase.EnrichedPoolEntry) poolEntryDTO {
	out := poolEntryDTO{
		PokemonID:    entry.PokemonID,
		Name:         entry.Name,
		PointValue:   entry.PointValue,
		Status:       string(entry.Status),
		TeraEligible: entry.TeraEligible,
		Types:        entry.Types,
		Generation:   entry.Generation,
		Tier:         entry.Tier,
		SpriteURL:    entry.SpriteURL,
	}
	if out.Types == nil {
		out.Types = []string{}
	}
	if entry.BaseStats != nil {
		out.BaseStats = &baseStatsDTO{
			HP:             entry.BaseStats.HP,
			Attack:         entry.BaseStats.Attack,
			Defense:        entry.BaseStats.Defense,
			SpecialAttack:  entry.BaseStats.SpecialAttack,
			SpecialDefense: entry.BaseStats.SpecialDefense,
			Speed:          entry.BaseStats.Speed,
		}
	}
	return out
}
