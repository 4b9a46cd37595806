// Package theme holds panel header colors and the hook that restyles panel
// headers when panels appear or the theme changes.
package theme

import (
	"fmt"
	"math"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

const (
	Black = "#000000"
	White = "#FFFFFF"
)

// Colors are the theme's base colors as "#rrggbb" strings. Text and
// TextWidget are optional; when empty a contrasting color is chosen.
type Colors struct {
	NormalWindow string `yaml:"normal_window" json:"normal_window"`
	WidgetWindow string `yaml:"widget_window" json:"widget_window"`
	Accent       string `yaml:"accent" json:"accent"`
	Text         string `yaml:"text,omitempty" json:"text,omitempty"`
	TextWidget   string `yaml:"text_widget,omitempty" json:"text_widget,omitempty"`
}

// Transparency is the header opacity in [0, 1].
type Transparency struct {
	Windows float64 `yaml:"windows" json:"windows"`
	Widgets float64 `yaml:"widgets" json:"widgets"`
}

// Theme is a named color scheme.
type Theme struct {
	Name         string       `yaml:"name" json:"name"`
	Colors       Colors       `yaml:"colors" json:"colors"`
	Transparency Transparency `yaml:"transparency" json:"transparency"`
}

// Default returns the stock dark theme.
func Default() Theme {
	return Theme{
		Name: "default",
		Colors: Colors{
			NormalWindow: "#1E1E1E",
			WidgetWindow: "#1E1E1E",
			Accent:       "#007BFF",
		},
		Transparency: Transparency{Windows: 0.95, Widgets: 0.90},
	}
}

// Validate checks that every color parses and opacities are in range.
func (t Theme) Validate() error {
	if strings.TrimSpace(t.Name) == "" {
		return fmt.Errorf("theme name is required")
	}
	fields := []struct {
		name     string
		value    string
		optional bool
	}{
		{"colors.normal_window", t.Colors.NormalWindow, false},
		{"colors.widget_window", t.Colors.WidgetWindow, false},
		{"colors.accent", t.Colors.Accent, false},
		{"colors.text", t.Colors.Text, true},
		{"colors.text_widget", t.Colors.TextWidget, true},
	}
	for _, f := range fields {
		if f.value == "" && f.optional {
			continue
		}
		if _, err := colorful.Hex(f.value); err != nil {
			return fmt.Errorf("%s: invalid color %q", f.name, f.value)
		}
	}
	if t.Transparency.Windows < 0 || t.Transparency.Windows > 1 {
		return fmt.Errorf("transparency.windows must be within [0, 1]")
	}
	if t.Transparency.Widgets < 0 || t.Transparency.Widgets > 1 {
		return fmt.Errorf("transparency.widgets must be within [0, 1]")
	}
	return nil
}

// ContrastColor picks black or white text for a background color. Very light
// and very dark backgrounds are decided by relative luminance; mid-range
// colors by their RGB distance from white.
func ContrastColor(background string) (string, error) {
	c, err := colorful.Hex(background)
	if err != nil {
		return "", fmt.Errorf("invalid color %q: %w", background, err)
	}
	luminance := 0.2126*c.R + 0.7152*c.G + 0.0722*c.B
	distance := c.DistanceRgb(colorful.Color{R: 1, G: 1, B: 1}) * 255

	switch {
	case luminance > 0.7:
		return Black, nil
	case luminance < 0.3:
		return White, nil
	case distance > 128:
		return Black, nil
	default:
		return White, nil
	}
}

// Derive builds a theme from a single accent color. Window backgrounds are
// dark tints of the accent and the widget background is shifted 30 degrees
// around the HCL hue circle.
func Derive(name, accent string) (Theme, error) {
	c, err := colorful.Hex(accent)
	if err != nil {
		return Theme{}, fmt.Errorf("invalid accent %q: %w", accent, err)
	}
	h, chroma, _ := c.Hcl()
	normal := colorful.Hcl(h, math.Min(chroma, 0.08), 0.16).Clamped()
	widget := colorful.Hcl(math.Mod(h+30, 360), math.Min(chroma, 0.1), 0.2).Clamped()

	t := Default()
	t.Name = name
	t.Colors = Colors{
		NormalWindow: strings.ToUpper(normal.Hex()),
		WidgetWindow: strings.ToUpper(widget.Hex()),
		Accent:       strings.ToUpper(c.Hex()),
	}
	return t, nil
}

// HeaderStyle is the computed look of one panel header.
type HeaderStyle struct {
	Background string `json:"background"`
	Border     string `json:"border"`
	Text       string `json:"text"`
}

// HeaderStyle computes the header style for a standard panel or a widget.
// Background and border carry an alpha suffix ("#rrggbbaa").
func (t Theme) HeaderStyle(widget bool) HeaderStyle {
	bg, opacity, text := t.Colors.NormalWindow, t.Transparency.Windows, t.Colors.Text
	if widget {
		bg, opacity, text = t.Colors.WidgetWindow, t.Transparency.Widgets, t.Colors.TextWidget
	}
	if text == "" {
		if c, err := ContrastColor(bg); err == nil {
			text = c
		} else {
			text = White
		}
	}
	alpha := int(math.Round(opacity * 255))
	return HeaderStyle{
		Background: fmt.Sprintf("%s%02x", bg, alpha),
		Border:     t.Colors.Accent + "30",
		Text:       text,
	}
}
