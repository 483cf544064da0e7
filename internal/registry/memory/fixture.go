package memory

import (
	"fmt"
	"io"
	"math/big"
	"os"
	"slices"

	"gopkg.in/yaml.v3"
)

// Fixture seeds a Registry. Rewards are raw registry units.
type Fixture struct {
	Tasks []FixtureTask `yaml:"tasks"`
}

type FixtureTask struct {
	Description  string   `yaml:"description"`
	Reward       string   `yaml:"reward"`
	Creator      string   `yaml:"creator"`
	Participants []string `yaml:"participants"`
	Completed    bool     `yaml:"completed"`
}

// LoadFixtureFile reads a YAML fixture from path.
func LoadFixtureFile(path string) (*Fixture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open fixture: %w", err)
	}
	defer f.Close()
	return LoadFixture(f)
}

func LoadFixture(r io.Reader) (*Fixture, error) {
	var fx Fixture
	if err := yaml.NewDecoder(r).Decode(&fx); err != nil {
		if err == io.EOF {
			return &fx, nil
		}
		return nil, fmt.Errorf("failed to decode fixture: %w", err)
	}
	return &fx, nil
}

// Seed appends the fixture's tasks in order. Task ids continue from the
// registry's current length. Nothing is appended unless every row is valid.
func (r *Registry) Seed(fx *Fixture) error {
	records := make([]*record, 0, len(fx.Tasks))
	for i, ft := range fx.Tasks {
		reward := new(big.Int)
		if ft.Reward != "" {
			if _, ok := reward.SetString(ft.Reward, 10); !ok || reward.Sign() < 0 {
				return fmt.Errorf("fixture task %d: invalid reward %q", i, ft.Reward)
			}
		}
		participants := slices.Clone(ft.Participants)
		if participants == nil {
			participants = []string{}
		}
		records = append(records, &record{
			description:  ft.Description,
			reward:       reward,
			creator:      ft.Creator,
			participants: participants,
			completed:    ft.Completed,
		})
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range records {
		rec.id = uint64(len(r.tasks))
		r.tasks = append(r.tasks, rec)
	}
	return nil
}
