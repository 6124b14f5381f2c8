package settings

import (
	"encoding/json"
	"os"
)

// Theme color keys.
const (
	ColorBackground     = "background"
	ColorForeground     = "foreground"
	ColorButtonBg       = "button_bg"
	ColorButtonFg       = "button_fg"
	ColorButtonActiveBg = "button_active_bg"
	ColorSelectBg       = "select_bg"
	ColorTooltipBg      = "tooltip_bg"
	ColorTooltipFg      = "tooltip_fg"
)

// Theme maps color names to hex strings such as "#2e2e2e".
type Theme map[string]string

// LoadTheme reads theme.json. A missing or malformed file is an empty theme.
func LoadTheme(path string) Theme {
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return Theme{}
	}
	t := make(Theme, len(raw))
	for k, v := range raw {
		if s, ok := v.(string); ok && s != "" {
			t[k] = s
		}
	}
	return t
}

// Color returns the color for key, or fallback when the theme has none.
func (t Theme) Color(key, fallback string) string {
	if c, ok := t[key]; ok && c != "" {
		return c
	}
	return fallback
}
