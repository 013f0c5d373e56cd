package model

import "slices"

type Currency string

const (
	ZAR Currency = "ZAR"
	USD Currency = "USD"
	AUD Currency = "AUD"
	YEN Currency = "YEN"
)

var currencies = []Currency{ZAR, USD, AUD, YEN}

func (c Currency) Valid() bool { return slices.Contains(currencies, c) }

// ISOCode maps the stored code to ISO 4217. YEN is stored under its display name.
func (c Currency) ISOCode() string {
	if c == YEN {
		return "JPY"
	}
	return string(c)
}

type Language string

const (
	English   Language = "en-US"
	Spanish   Language = "es"
	Afrikaans Language = "af"
	Chinese   Language = "zh"
)

func (l Language) Valid() bool { return slices.Contains([]Language{English, Spanish, Afrikaans, Chinese}, l) }

type Theme string

const (
	ThemeLight Theme = "light"
	ThemeDark  Theme = "dark"
	ThemeAuto  Theme = "auto"
)

func (t Theme) Valid() bool { return slices.Contains([]Theme{ThemeLight, ThemeDark, ThemeAuto}, t) }

type Font string

const (
	FontInter   Font = "Inter"
	FontRoboto  Font = "Roboto"
	FontPoppins Font = "Poppins"
	FontSystem  Font = "System"
)

func (f Font) Valid() bool { return slices.Contains([]Font{FontInter, FontRoboto, FontPoppins, FontSystem}, f) }

type Layout string

const (
	LayoutSidebarLeft Layout = "sidebar-left"
	LayoutTopbar      Layout = "topbar"
)

func (l Layout) Valid() bool { return l == LayoutSidebarLeft || l == LayoutTopbar }

// UserSettings is the per-user singleton at users/{uid}/settings/main.
type UserSettings struct {
	Currency       Currency `json:"currency"`
	Language       Language `json:"language"`
	Theme          Theme    `json:"theme"`
	Accent         string   `json:"accent"`
	Font           Font     `json:"font"`
	Layout         Layout   `json:"layout"`
	RoundedCorners bool     `json:"roundedCorners"`
	CompactMode    bool     `json:"compactMode"`
}

// DefaultSettings is what a user sees before a settings record exists.
func DefaultSettings() UserSettings {
	return UserSettings{
		Currency:       ZAR,
		Language:       English,
		Theme:          ThemeDark,
		Accent:         "#16a34a",
		Font:           FontInter,
		Layout:         LayoutSidebarLeft,
		RoundedCorners: true,
		CompactMode:    false,
	}
}

// SettingsPatch is a partial settings update. Nil fields are left alone.
type SettingsPatch struct {
	Currency       *Currency `json:"currency,omitempty"`
	Language       *Language `json:"language,omitempty"`
	Theme          *Theme    `json:"theme,omitempty"`
	Accent         *string   `json:"accent,omitempty"`
	Font           *Font     `json:"font,omitempty"`
	Layout         *Layout   `json:"layout,omitempty"`
	RoundedCorners *bool     `json:"roundedCorners,omitempty"`
	CompactMode    *bool     `json:"compactMode,omitempty"`
}

func (p SettingsPatch) Validate() error {
	v := validator{record: "settings"}
	v.check(p.Currency == nil || p.Currency.Valid(), "currency", "must be one of ZAR, USD, AUD, YEN")
	v.check(p.Language == nil || p.Language.Valid(), "language", "must be one of en-US, es, af, zh")
	v.check(p.Theme == nil || p.Theme.Valid(), "theme", "must be light, dark or auto")
	v.check(p.Accent == nil || hexColor.MatchString(*p.Accent), "accent", "must be a #RRGGBB hex colour")
	v.check(p.Font == nil || p.Font.Valid(), "font", "must be one of Inter, Roboto, Poppins, System")
	v.check(p.Layout == nil || p.Layout.Valid(), "layout", "must be sidebar-left or topbar")
	return v.err()
}

// Empty reports whether the patch changes nothing.
func (p SettingsPatch) Empty() bool {
	return len(p.Fields()) == 0
}

// Fields returns the set fields keyed by their stored names, suitable for a merge write.
func (p SettingsPatch) Fields() map[string]any {
	out := make(map[string]any)
	if p.Currency != nil {
		out["currency"] = string(*p.Currency)
	}
	if p.Language != nil {
		out["language"] = string(*p.Language)
	}
	if p.Theme != nil {
		out["theme"] = string(*p.Theme)
	}
	if p.Accent != nil {
		out["accent"] = *p.Accent
	}
	if p.Font != nil {
		out["font"] = string(*p.Font)
	}
	if p.Layout != nil {
		out["layout"] = string(*p.Layout)
	}
	if p.RoundedCorners != nil {
		out["roundedCorners"] = *p.RoundedCorners
	}
	if p.CompactMode != nil {
		out["compactMode"] = *p.CompactMode
	}
	return out
}

// Apply shallow-merges the patch over s.
func (p SettingsPatch) Apply(s UserSettings) UserSettings {
	if p.Currency != nil {
		s.Currency = *p.Currency
	}
	if p.Language != nil {
		s.Language = *p.Language
	}
	if p.Theme != nil {
		s.Theme = *p.Theme
	}
	if p.Accent != nil {
		s.Accent = *p.Accent
	}
	if p.Font != nil {
		s.Font = *p.Font
	}
	if p.Layout != nil {
		s.Layout = *p.Layout
	}
	if p.RoundedCorners != nil {
		s.RoundedCorners = *p.RoundedCorners
	}
	if p.CompactMode != nil {
		s.CompactMode = *p.CompactMode
	}
	return s
}
