// Package validation checks message drafts and uploaded files before they
// reach storage.
package validation

import (
	"unicode/utf8"

	"github.com/impservers/impchat/internal/domain"
	"github.com/impservers/impchat/internal/errors"
)

type DraftValidator struct{}

func New() *DraftValidator {
	return &DraftValidator{}
}

// Draft checks the structural rules every message must satisfy: non-empty
// content (text or attachment) and text within the length cap. Whitespace
// trimming and sanitization happen before this runs.
func (v *DraftValidator) Draft(draft domain.MessageDraft) error {
	if draft.Empty() {
		return errors.NewValidation("Message needs text or an attachment")
	}
	if utf8.RuneCountInString(draft.Text) > domain.MaxTextLen {
		return errors.NewValidation("Text is too long")
	}
	return nil
}
