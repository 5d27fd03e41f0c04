package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/taskforge/taskforge/internal/models"
)

func newPreferenceFixture() (*fakePreferenceStore, *fakeLimiter, PreferenceService) {
	preferences := newFakePreferenceStore()
	limiter := newFakeLimiter()
	svc := NewPreferenceService(testLogger(), preferences, limiter)
	return preferences, limiter, svc
}

func TestGetPreferencesReturnsUnpersistedDefaults(t *testing.T) {
	preferences, _, svc := newPreferenceFixture()

	prefs, err := svc.GetPreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if prefs.ID != "" {
		t.Errorf("id = %q, defaults must carry an empty id", prefs.ID)
	}
	if prefs.Theme != models.ThemeSystem || prefs.SortBy != models.SortByPosition {
		t.Errorf("prefs = %+v, want the defaults", prefs)
	}
	if len(preferences.byUser) != 0 {
		t.Error("a plain read must not persist the defaults")
	}
}

func TestGetPreferencesReturnsStoredRecord(t *testing.T) {
	preferences, _, svc := newPreferenceFixture()
	preferences.byUser["user-1"] = models.Preferences{
		ID: "p1", UserID: "user-1",
		Theme: models.ThemeDark, DefaultView: models.ViewBoard,
		SortBy: models.SortByDueDate, SortOrder: models.SortOrderDesc,
	}

	prefs, err := svc.GetPreferences(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetPreferences: %v", err)
	}
	if prefs.ID != "p1" || prefs.Theme != models.ThemeDark {
		t.Errorf("prefs = %+v, want the stored record", prefs)
	}
}

func TestUpdatePreferencesCreatesSingletonOnFirstWrite(t *testing.T) {
	preferences, _, svc := newPreferenceFixture()

	theme := models.ThemeDark
	prefs, err := svc.UpdatePreferences(context.Background(), UpdatePreferencesParams{
		UserID: "user-1",
		Theme:  &theme,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if prefs.ID == "" {
		t.Error("the singleton must be persisted with an id")
	}
	if prefs.Theme != models.ThemeDark {
		t.Errorf("theme = %q, want %q", prefs.Theme, models.ThemeDark)
	}
	if prefs.DefaultView != models.ViewList {
		t.Errorf("default view = %q, untouched fields must keep their defaults", prefs.DefaultView)
	}
	if len(preferences.byUser) != 1 {
		t.Errorf("stored singletons = %d, want 1", len(preferences.byUser))
	}
}

func TestUpdatePreferencesPatchesExistingRecord(t *testing.T) {
	preferences, _, svc := newPreferenceFixture()
	preferences.byUser["user-1"] = models.Preferences{
		ID: "p1", UserID: "user-1",
		Theme: models.ThemeDark, DefaultView: models.ViewBoard,
		SortBy: models.SortByDueDate, SortOrder: models.SortOrderDesc,
		ShowCompleted: true, Notifications: true,
	}

	show := false
	prefs, err := svc.UpdatePreferences(context.Background(), UpdatePreferencesParams{
		UserID:        "user-1",
		ShowCompleted: &show,
	})
	if err != nil {
		t.Fatalf("UpdatePreferences: %v", err)
	}
	if prefs.ID != "p1" {
		t.Errorf("id = %q, the existing singleton must be reused", prefs.ID)
	}
	if prefs.ShowCompleted {
		t.Error("show completed must be patched to false")
	}
	if prefs.Theme != models.ThemeDark {
		t.Errorf("theme = %q, untouched fields must survive", prefs.Theme)
	}
}

func TestUpdatePreferencesValidatesEnums(t *testing.T) {
	preferences, _, svc := newPreferenceFixture()

	theme := "neon"
	order := "sideways"
	_, err := svc.UpdatePreferences(context.Background(), UpdatePreferencesParams{
		UserID:    "user-1",
		Theme:     &theme,
		SortOrder: &order,
	})

	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("err = %v, want *ValidationError", err)
	}
	if len(validationErr.Violations) != 2 {
		t.Errorf("violations = %v, want both enum failures reported", validationErr.Violations)
	}
	if preferences.getOrCreateCalls != 0 {
		t.Error("validation must run before the singleton is created")
	}
}

func TestUpdatePreferencesRateLimited(t *testing.T) {
	preferences, limiter, svc := newPreferenceFixture()
	limiter.deny(BucketPreferences, time.Second)

	theme := models.ThemeDark
	_, err := svc.UpdatePreferences(context.Background(), UpdatePreferencesParams{
		UserID: "user-1",
		Theme:  &theme,
	})
	var rateErr *RateLimitError
	if !errors.As(err, &rateErr) {
		t.Fatalf("err = %v, want *RateLimitError", err)
	}
	if len(preferences.byUser) != 0 {
		t.Error("a denied call must leave the store untouched")
	}
}

func TestPreferencesRequireAuthentication(t *testing.T) {
	_, _, svc := newPreferenceFixture()

	if _, err := svc.GetPreferences(context.Background(), ""); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("get err = %v, want ErrNotAuthenticated", err)
	}
	if _, err := svc.UpdatePreferences(context.Background(), UpdatePreferencesParams{}); !errors.Is(err, ErrNotAuthenticated) {
		t.Errorf("update err = %v, want ErrNotAuthenticated", err)
	}
}
