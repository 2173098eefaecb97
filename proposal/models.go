package proposal

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the profile_proposals row.
type Record struct {
	bun.BaseModel `bun:"table:profile_proposals"`

	ID              uuid.UUID         `bun:"id,pk,type:uuid"`
	TargetProfileID uuid.UUID         `bun:"target_profile_id,type:uuid,nullzero"`
	NewProfileName  string            `bun:"new_profile_name"`
	Biography       *string           `bun:"biography"`
	LinkFields      map[string]string `bun:"link_fields,type:jsonb"`
	ResolvedEntryID uuid.UUID         `bun:"resolved_entry_id,type:uuid,nullzero"`
	RawURL          string            `bun:"raw_url"`
	CanonicalURL    string            `bun:"canonical_url"`
	SubmitterEmail  string            `bun:"submitter_email,notnull"`
	SubmitterName   string            `bun:"submitter_name"`
	SubmissionNotes string            `bun:"submission_notes"`
	State           string            `bun:"state,notnull"`
	DecisionNotes   string            `bun:"decision_notes"`
	DecidedAt       *time.Time        `bun:"decided_at,nullzero"`
	DecidedBy       uuid.UUID         `bun:"decided_by,type:uuid,nullzero"`
	CreatedAt       time.Time         `bun:"created_at"`
	UpdatedAt       time.Time         `bun:"updated_at"`
}
