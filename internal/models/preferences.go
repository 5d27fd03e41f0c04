package models

import "time"

const (
	ThemeLight  = "light"
	ThemeDark   = "dark"
	ThemeSystem = "system"
)

const (
	ViewList     = "list"
	ViewBoard    = "board"
	ViewCalendar = "calendar"
)

const (
	SortByCreatedAt = "created_at"
	SortByDueDate   = "due_date"
	SortByPriority  = "priority"
	SortByPosition  = "position"
)

const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Preferences is a one-per-user singleton, created lazily
// on the first update.
type Preferences struct {
	ID            string
	UserID        string
	Theme         string
	DefaultView   string
	SortBy        string
	SortOrder     string
	ShowCompleted bool
	Notifications bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// DefaultPreferences returns the materialized defaults for a user
// that has no stored record yet. The empty ID marks it as not persisted.
func DefaultPreferences(userID string) *Preferences {
	return &Preferences{
		UserID:        userID,
		Theme:         ThemeSystem,
		DefaultView:   ViewList,
		SortBy:        SortByPosition,
		SortOrder:     SortOrderAsc,
		ShowCompleted: true,
		Notifications: true,
	}
}

func ValidTheme(theme string) bool {
	return theme == ThemeLight || theme == ThemeDark || theme == ThemeSystem
}

func ValidView(view string) bool {
	return view == ViewList || view == ViewBoard || view == ViewCalendar
}

func ValidSortBy(field string) bool {
	return field == SortByCreatedAt ||
		field == SortByDueDate ||
		field == SortByPriority ||
		field == SortByPosition
}

func ValidSortOrder(order string) bool {
	return order == SortOrderAsc || order == SortOrderDesc
}
