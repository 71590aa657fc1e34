package render

import "strings"

// Theme 是静态的只读样式配置，不归属任何用户。
type Theme struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	PrimaryColor   string `json:"primaryColor"`
	SecondaryColor string `json:"secondaryColor"`
	BgColor        string `json:"bgColor"`
	TextColor      string `json:"textColor"`
}

// DefaultThemeID 是未指定主题时的回退。
const DefaultThemeID = "professional"

var themes = []Theme{
	{
		ID:             "classic",
		Name:           "Classic",
		PrimaryColor:   "#8B7355",
		SecondaryColor: "#A0826D",
		BgColor:        "#F5F5DC",
		TextColor:      "#2C2C2C",
	},
	{
		ID:             "modern",
		Name:           "Modern",
		PrimaryColor:   "#667eea",
		SecondaryColor: "#764ba2",
		BgColor:        "#FFFFFF",
		TextColor:      "#1a1a2e",
	},
	{
		ID:             "professional",
		Name:           "Professional",
		PrimaryColor:   "#2c3e50",
		SecondaryColor: "#34495e",
		BgColor:        "#FFFFFF",
		TextColor:      "#2c3e50",
	},
	{
		ID:             "creative",
		Name:           "Creative",
		PrimaryColor:   "#e74c3c",
		SecondaryColor: "#c0392b",
		BgColor:        "#FFFFFF",
		TextColor:      "#2c3e50",
	},
}

// Themes 返回全部内建主题（副本，调用方可随意持有）。
func Themes() []Theme {
	out := make([]Theme, len(themes))
	copy(out, themes)
	return out
}

// LookupTheme 按标识返回主题；未知标识回退到 professional。
func LookupTheme(id string) Theme {
	id = strings.ToLower(strings.TrimSpace(id))
	var fallback Theme
	for _, t := range themes {
		if t.ID == id {
			return t
		}
		if t.ID == DefaultThemeID {
			fallback = t
		}
	}
	return fallback
}
