// Package catalog loads the bootstrap list of partner casinos.
package catalog

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Entry struct {
	Name         string `yaml:"name"`
	ReferralCode string `yaml:"referral_code"`
	SignupURL    string `yaml:"signup_url"`
	URL          string `yaml:"url"`
	Banner       string `yaml:"banner"`
}

type File struct {
	Casinos []Entry `yaml:"casinos"`
}

// LoadFromFile reads a YAML catalog. Entries without a name are rejected.
func LoadFromFile(path string) ([]Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read casino catalog: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) ([]Entry, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse casino catalog: %w", err)
	}

	seen := make(map[string]bool, len(file.Casinos))
	for i, e := range file.Casinos {
		name := strings.TrimSpace(e.Name)
		if name == "" {
			return nil, fmt.Errorf("casino catalog entry %d: name is required", i)
		}
		key := strings.ToLower(name)
		if seen[key] {
			return nil, fmt.Errorf("casino catalog entry %d: duplicate name %q", i, name)
		}
		seen[key] = true
		file.Casinos[i].Name = name
	}
	return file.Casinos, nil
}
