package season

import "fmt"

// Season scopes a draft pool and the teams competing for it.
type Season struct {
	ID        string
	Name      string
	IsCurrent bool
}

func (s Season) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("season id is required")
	}
	if s.Name == "" {
		return fmt.Errorf("season name is required")
	}

	return nil
}
