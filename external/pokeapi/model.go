package pokeapi

type namedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type pokemonPayload struct {
	ID      int           `json:"id"`
	Name    string        `json:"name"`
	Species namedResource `json:"species"`
	Types   []typeSlot    `json:"types"`
	Stats   []statSlot    `json:"stats"`
	Sprites spriteSet     `json:"sprites"`
}

type typeSlot struct {
	Slot int           `json:"slot"`
	Type namedResource `json:"type"`
}

type statSlot struct {
	BaseStat int           `json:"base_stat"`
	Stat     namedResource `json:"stat"`
}

type spriteSet struct {
	FrontDefault string `json:"front_default"`
	Other        struct {
		OfficialArtwork struct {
			FrontDefault string `json:"front_default"`
		} `json:"official-artwork"`
	} `json:"other"`
}
