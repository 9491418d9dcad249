package engine

import (
	"encoding/json"
	"fmt"
	"os"
)

// Stage is one rung of the pet's evolution ladder. Threshold is the XP
// needed to leave the stage; the terminal stage's threshold is unused and
// conventionally 0. Image names the art asset a render surface shows.
type Stage struct {
	Name      string `json:"name"`
	Threshold int    `json:"threshold"`
	Image     string `json:"image"`
}

// DefaultStages is the built-in ladder, used unless a stage config file
// overrides it.
var DefaultStages = []Stage{
	{Name: "Egg", Threshold: 10, Image: "pet_egg"},
	{Name: "Hatchling", Threshold: 20, Image: "pet_hatchling"},
	{Name: "Sprite", Threshold: 35, Image: "pet_sprite"},
	{Name: "Juvenile", Threshold: 55, Image: "pet_juvenile"},
	{Name: "Guardian", Threshold: 80, Image: "pet_guardian"},
	{Name: "Elder", Threshold: 0, Image: "pet_elder"},
}

type stageConfig struct {
	Stages []Stage `json:"stages"`
}

// LoadStages reads a stage config file ({"stages": [...]}) and validates it.
func LoadStages(path string) ([]Stage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read stage config: %w", err)
	}
	var cfg stageConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse stage config: %w", err)
	}
	if err := ValidateStages(cfg.Stages); err != nil {
		return nil, err
	}
	return cfg.Stages, nil
}

// ValidateStages checks a ladder: at least one stage, and non-terminal
// thresholds positive and non-decreasing.
func ValidateStages(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("stage config: no stages")
	}
	prev := 0
	for i, s := range stages[:len(stages)-1] {
		if s.Threshold <= 0 {
			return fmt.Errorf("stage config: stage %d (%s) has non-positive threshold", i, s.Name)
		}
		if s.Threshold < prev {
			return fmt.Errorf("stage config: stage %d (%s) threshold decreases", i, s.Name)
		}
		prev = s.Threshold
	}
	return nil
}
