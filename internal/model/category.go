package model

import (
	"encoding/json"
	"regexp"
)

// CategoryIcon is the closed set of icons a category may carry.
type CategoryIcon string

const (
	IconUtensils    CategoryIcon = "Utensils"
	IconBus         CategoryIcon = "Bus"
	IconShoppingBag CategoryIcon = "ShoppingBag"
	IconHome        CategoryIcon = "Home"
	IconTicket      CategoryIcon = "Ticket"
	IconBriefcase   CategoryIcon = "Briefcase"
	IconPenTool     CategoryIcon = "PenTool"

	// IconFallback renders any name outside the known set.
	IconFallback CategoryIcon = "HelpCircle"
)

var knownIcons = map[CategoryIcon]struct{}{
	IconUtensils:    {},
	IconBus:         {},
	IconShoppingBag: {},
	IconHome:        {},
	IconTicket:      {},
	IconBriefcase:   {},
	IconPenTool:     {},
}

// KnownIcons lists the selectable icons in display order.
func KnownIcons() []CategoryIcon {
	return []CategoryIcon{IconUtensils, IconBus, IconShoppingBag, IconHome, IconTicket, IconBriefcase, IconPenTool}
}

// ParseIcon maps a stored icon name to the enum. Unknown names give IconFallback.
func ParseIcon(name string) CategoryIcon {
	if _, ok := knownIcons[CategoryIcon(name)]; ok {
		return CategoryIcon(name)
	}
	return IconFallback
}

// UnmarshalJSON decodes any stored name, mapping unknown ones to IconFallback.
func (i *CategoryIcon) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	*i = ParseIcon(name)
	return nil
}

// DefaultCategoryColor is used for breakdown slices whose category no longer exists.
const DefaultCategoryColor = "#8884d8"

var hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Category groups transactions. Transactions reference it by id and carry a
// copy of its name; deleting a category never touches them.
type Category struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          TransactionType `json:"type"`
	Color         string          `json:"color"`
	Icon          CategoryIcon    `json:"icon"`
	MonthlyBudget *float64        `json:"monthlyBudget,omitempty"`
}

// CategoryInput is the writable part of a category.
type CategoryInput struct {
	Name          string          `json:"name"`
	Type          TransactionType `json:"type"`
	Color         string          `json:"color"`
	Icon          string          `json:"icon"`
	MonthlyBudget *float64        `json:"monthlyBudget,omitempty"`
}

func (in CategoryInput) Validate() error {
	v := validator{record: "category"}
	v.check(in.Name != "", "name", "is required")
	v.check(in.Type.Valid(), "type", "must be income or expense")
	v.check(hexColor.MatchString(in.Color), "color", "must be a #RRGGBB hex colour")
	v.check(in.Icon != "", "icon", "is required")
	v.check(in.MonthlyBudget == nil || *in.MonthlyBudget >= 0, "monthlyBudget", "must not be negative")
	return v.err()
}

// FindCategory returns the category with the given id.
func FindCategory(categories []Category, id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}
