package services

import (
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/taskforge/taskforge/internal/models"
)

const (
	titleMaxLen          = 200
	descriptionMaxLen    = 2000
	tagsMaxCount         = 10
	tagMaxLen            = 50
	commentMaxLen        = 1000
	messageMaxLen        = 10000
	threadTitleMaxLen    = 200
	recentActivityLimit  = 50
	derivedReadListLimit = 10
)

// violations collects every failing field rule of one call so the
// caller sees them all at once instead of the first only.
type violations []string

func (v *violations) addf(format string, args ...any) {
	*v = append(*v, fmt.Sprintf(format, args...))
}

func (v violations) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{Violations: v}
}

func (v *violations) checkTitle(title string) {
	n := utf8.RuneCountInString(title)
	switch {
	case n == 0:
		v.addf("title must not be empty")
	case n > titleMaxLen:
		v.addf("title must be at most %d characters", titleMaxLen)
	}
}

func (v *violations) checkDescription(description string) {
	if utf8.RuneCountInString(description) > descriptionMaxLen {
		v.addf("description must be at most %d characters", descriptionMaxLen)
	}
}

func (v *violations) checkStatus(status string) {
	if !models.ValidStatus(status) {
		v.addf("status must be one of %s, %s, %s",
			models.StatusPending, models.StatusInProgress, models.StatusCompleted)
	}
}

func (v *violations) checkPriority(priority string) {
	if !models.ValidPriority(priority) {
		v.addf("priority must be one of %s, %s, %s",
			models.PriorityLow, models.PriorityMedium, models.PriorityHigh)
	}
}

// checkDueDate applies to newly supplied due dates only; dates
// already stored are never re-validated.
func (v *violations) checkDueDate(dueDate time.Time) {
	if dueDate.Before(time.Now()) {
		v.addf("due date must be in the future")
	}
}

func (v *violations) checkTags(tags []string) {
	if len(tags) > tagsMaxCount {
		v.addf("at most %d tags are allowed", tagsMaxCount)
	}
	for _, tag := range tags {
		n := utf8.RuneCountInString(tag)
		if n == 0 || n > tagMaxLen {
			v.addf("tag %q must be 1-%d characters", tag, tagMaxLen)
		}
	}
}

func (v *violations) checkCommentContent(content string) {
	n := utf8.RuneCountInString(content)
	switch {
	case n == 0:
		v.addf("comment content must not be empty")
	case n > commentMaxLen:
		v.addf("comment content must be at most %d characters", commentMaxLen)
	}
}

func (v *violations) checkMessageContent(content string) {
	n := utf8.RuneCountInString(content)
	switch {
	case n == 0:
		v.addf("message content must not be empty")
	case n > messageMaxLen:
		v.addf("message content must be at most %d characters", messageMaxLen)
	}
}

func (v *violations) checkThreadTitle(title string) {
	if utf8.RuneCountInString(title) > threadTitleMaxLen {
		v.addf("thread title must be at most %d characters", threadTitleMaxLen)
	}
}
