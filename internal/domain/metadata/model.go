package metadata

import (
	"errors"
	"strings"
)

var ErrEmptyTypes = errors.New("metadata record has no types")

// BaseStats holds the six base stats of a Pokémon.
type BaseStats struct {
	HP             int `json:"hp"`
	Attack         int `json:"attack"`
	Defense        int `json:"defense"`
	SpecialAttack  int `json:"special_attack"`
	SpecialDefense int `json:"special_defense"`
	Speed          int `json:"speed"`
}

func (b BaseStats) Total() int {
	return b.HP + b.Attack + b.Defense + b.SpecialAttack + b.SpecialDefense + b.Speed
}

// Complete reports whether every stat has been populated.
func (b BaseStats) Complete() bool {
	return b.HP > 0 && b.Attack > 0 && b.Defense > 0 &&
		b.SpecialAttack > 0 && b.SpecialDefense > 0 && b.Speed > 0
}

// Record is the cached display metadata of one Pokémon.
type Record struct {
	PokemonID  int
	Name       string
	Slug       string
	Types      []string
	Generation int
	BaseStats  BaseStats
	Tier       string
	SpriteURL  string
}

// Ref identifies a Pokémon to resolve. PokemonID is nil when only the name is known.
type Ref struct {
	Name      string
	PokemonID *int
}

func (r Record) HasTypes() bool {
	return len(r.Types) > 0
}

func (r Record) IsComplete() bool {
	return r.PokemonID > 0 && strings.TrimSpace(r.Name) != "" && r.HasTypes() && r.BaseStats.Complete()
}

// Better reports whether r carries more resolved data than other.
func (r Record) Better(other Record) bool {
	if r.HasTypes() != other.HasTypes() {
		return r.HasTypes()
	}
	if r.BaseStats.Complete() != other.BaseStats.Complete() {
		return r.BaseStats.Complete()
	}
	return r.PokemonID > 0 && other.PokemonID == 0
}

// Merge overlays the populated fields of fresh on top of r.
func (r Record) Merge(fresh Record) Record {
	out := r
	if fresh.PokemonID > 0 {
		out.PokemonID = fresh.PokemonID
	}
	if strings.TrimSpace(out.Name) == "" {
		out.Name = fresh.Name
	}
	if fresh.Slug != "" {
		out.Slug = fresh.Slug
	}
	if len(fresh.Types) > 0 {
		out.Types = append([]string(nil), fresh.Types...)
	}
	if fresh.Generation > 0 {
		out.Generation = fresh.Generation
	}
	if fresh.BaseStats.Complete() {
		out.BaseStats = fresh.BaseStats
	}
	if fresh.Tier != "" {
		out.Tier = fresh.Tier
	}
	if fresh.SpriteURL != "" {
		out.SpriteURL = fresh.SpriteURL
	}
	if out.Tier == "" && out.BaseStats.Complete() {
		out.Tier = TierForStats(out.BaseStats)
	}
	return out
}

func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
