package metadata

import "strings"

// generationCeilings holds the last national dex number of each generation.
var generationCeilings = []int{151, 251, 386, 493, 649, 721, 809, 905, 1025}

// GenerationForSpecies derives the generation from a national dex species number.
// It returns 0 when the number is outside every known generation.
func GenerationForSpecies(speciesID int) int {
	if speciesID <= 0 {
		return 0
	}
	for i, ceiling := range generationCeilings {
		if speciesID <= ceiling {
			return i + 1
		}
	}
	return 0
}

// TierForStats buckets a Pokémon by base stat total.
func TierForStats(stats BaseStats) string {
	if !stats.Complete() {
		return ""
	}

	switch total := stats.Total(); {
	case total >= 600:
		return "S"
	case total >= 530:
		return "A"
	case total >= 460:
		return "B"
	case total >= 380:
		return "C"
	default:
		return "D"
	}
}

// Slug converts a display name into the provider's lookup form,
// e.g. "Mr. Mime" -> "mr-mime" and "Nidoran♀" -> "nidoran-f".
func Slug(name string) string {
	replacer := strings.NewReplacer(
		"♀", "-f",
		"♂", "-m",
		"é", "e",
		"'", "",
		"’", "",
		".", "",
		":", "",
	)
	value := replacer.Replace(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	lastDash := false
	for _, r := range value {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			lastDash = false
		case r == ' ' || r == '-' || r == '_':
			if b.Len() > 0 && !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
