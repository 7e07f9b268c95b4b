package main

import (
	"os"

	"github.com/charmbracelet/log"

	"github.com/srobinson/attention-matters/pkg/daeconfig"
	"github.com/srobinson/attention-matters/pkg/memory"
)

func loadConfig() (*daeconfig.Config, error) {
	return daeconfig.Load(configPath)
}

// loadSystem reads the snapshot at statePath if it exists, or constructs a
// fresh system seeded by --seed otherwise.
func loadSystem() (*memory.System, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := log.New(os.Stderr)

	data, err := os.ReadFile(statePath)
	if os.IsNotExist(err) {
		return memory.New("daebench", seed, cfg, logger), nil
	}
	if err != nil {
		return nil, err
	}

	s := memory.New("daebench", seed, cfg, logger)
	if err := s.Import(data); err != nil {
		return nil, err
	}
	return s, nil
}

// saveSystem writes s's snapshot back to statePath.
func saveSystem(s *memory.System) error {
	data, err := s.Export()
	if err != nil {
		return err
	}
	return os.WriteFile(statePath, data, 0644)
}
