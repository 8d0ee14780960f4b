// Package dataset names the remote documents the API serves and records where
// each one lives upstream.
package dataset

import (
	"fmt"
	"strings"
)

// Dataset identifies one remotely hosted document.
type Dataset int

const (
	Ports Dataset = iota
	Userstyles
	Categories
)

var names = [...]string{
	Ports:      "ports",
	Userstyles: "userstyles",
	Categories: "categories",
}

// All returns every known dataset in declaration order.
func All() []Dataset {
	return []Dataset{Ports, Userstyles, Categories}
}

func (d Dataset) String() string {
	if d < 0 || int(d) >= len(names) {
		return fmt.Sprintf("dataset(%d)", int(d))
	}
	return names[d]
}

// MarshalText renders the dataset by name so it reads well in JSON and logs.
func (d Dataset) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts the names produced by MarshalText.
func (d *Dataset) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Parse resolves a dataset name, ignoring case and surrounding whitespace.
func Parse(value string) (Dataset, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for i, name := range names {
		if name == normalized {
			return Dataset(i), nil
		}
	}
	return 0, fmt.Errorf("unknown dataset: %q", value)
}
