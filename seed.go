package fdict

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tailscale/hujson"
)

// ParseSeed decodes a JSON document, with HuJSON comments and trailing
// commas allowed, into a seed for New or Open. The top level must be an
// object. Numbers decode as float64.
func ParseSeed(data []byte) (map[string]any, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		return nil, fmt.Errorf("fdict: invalid seed: %w", err)
	}
	var seed map[string]any
	if err := json.Unmarshal(std, &seed); err != nil {
		return nil, fmt.Errorf("fdict: invalid seed: %w", err)
	}
	return seed, nil
}

func LoadSeedFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, storageErrf("read", path, err)
	}
	seed, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return seed, nil
}
