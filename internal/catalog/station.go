package catalog

import (
	"fmt"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
	"gopkg.in/yaml.v3"
)

// Station is one streamable radio source with display metadata.
type Station struct {
	ID       int    `yaml:"id"`
	Name     string `yaml:"name"`
	Genre    string `yaml:"genre"`
	URL      string `yaml:"url"`
	Icon     string `yaml:"icon"`
	Logo     string `yaml:"logo,omitempty"`
	Color    RGB    `yaml:"color"`
	Category string `yaml:"category"`
}

// RGB is a 24-bit colour used for station artwork accents.
type RGB struct {
	R, G, B uint8
}

// ParseRGB parses a "#rrggbb" string.
func ParseRGB(s string) (RGB, error) {
	c, err := colorful.Hex(strings.TrimSpace(s))
	if err != nil {
		return RGB{}, fmt.Errorf("parse color %q: %w", s, err)
	}
	r, g, b := c.RGB255()
	return RGB{R: r, G: g, B: b}, nil
}

// MustRGB is ParseRGB for compile-time constants.
func MustRGB(s string) RGB {
	c, err := ParseRGB(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex returns the colour as "#rrggbb".
func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// String implements fmt.Stringer.
func (c RGB) String() string {
	return c.Hex()
}

// UnmarshalYAML accepts "#rrggbb" scalars.
func (c *RGB) UnmarshalYAML(node *yaml.Node) error {
	var raw string
	if err := node.Decode(&raw); err != nil {
		return err
	}
	if strings.TrimSpace(raw) == "" {
		*c = RGB{}
		return nil
	}
	parsed, err := ParseRGB(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// MarshalYAML writes the colour as "#rrggbb".
func (c RGB) MarshalYAML() (any, error) {
	return c.Hex(), nil
}

// DisplayCategory returns the category used for grouping, "Other" when unset.
func (s Station) DisplayCategory() string {
	if cat := strings.TrimSpace(s.Category); cat != "" {
		return cat
	}
	return "Other"
}
