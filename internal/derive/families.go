// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package derive

import (
	"fmt"
	"os"
	"strings"

	"go.yaml.in/yaml/v3"
)

// Families collapses historical party labels and candidate surnames into
// coarse political families. Lookup keys are uppercase.
type Families map[string]string

// defaultFamilies is the built-in table. It folds renamed parties onto
// their current label (FN became RN, UMP became LR) and maps presidential
// candidate surnames onto their party.
var defaultFamilies = Families{
	"FN": "RN", "LREM": "RE", "VEC": "EELV", "SOC": "PS", "UDI": "LR",
	"UMP": "LR", "FG": "LFI", "FI": "LFI", "NUP": "NUPES", "ENS": "RE",
	"COM": "PCF", "RDG": "PRG", "MDM": "MODEM", "UC": "LR", "DVD": "DVD",
	"DVG": "DVG", "EXG": "EXG", "EXD": "EXD", "DIV": "DIV", "REG": "REG",
	"HOLLANDE": "PS", "SARKOZY": "LR", "MACRON": "RE", "MELENCHON": "LFI",
	"LEPEN": "RN", "FILLON": "LR", "HAMON": "PS", "JADOT": "EELV",
	"PÉCRESSE": "LR", "ZEMMOUR": "EXD", "HIDALGO": "PS", "ROUSSEL": "PCF",
	"DUPONT-AIGNAN": "DLF", "POUTOU": "NPA", "ARTHAUD": "LO", "LASSALLE": "DIV",
}

// DefaultFamilies returns a copy of the built-in table.
func DefaultFamilies() Families {
	m := make(Families, len(defaultFamilies))
	for k, v := range defaultFamilies {
		m[k] = v
	}
	return m
}

// LoadFamilies reads a YAML mapping of party label to family and merges
// it over the built-in table. An empty path returns the built-in table.
func LoadFamilies(path string) (Families, error) {
	m := DefaultFamilies()
	if path == "" {
		return m, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading families file %s: %w", path, err)
	}
	var overrides map[string]string
	if err := yaml.Unmarshal(data, &overrides); err != nil {
		return nil, fmt.Errorf("parsing families file %s: %w", path, err)
	}
	for k, v := range overrides {
		m[strings.ToUpper(k)] = v
	}
	return m, nil
}

// Map returns the family for a party label. Unmapped labels pass through
// unchanged, which makes the mapping idempotent: a value that is already
// a family name maps to itself.
func (m Families) Map(label string) string {
	if label == "" {
		return ""
	}
	if fam, ok := m[strings.ToUpper(label)]; ok {
		return fam
	}
	return label
}
