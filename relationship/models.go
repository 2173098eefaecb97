package relationship

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the profile_entries join row.
type Record struct {
	bun.BaseModel `bun:"table:profile_entries"`

	ProfileID  uuid.UUID `bun:"profile_id,pk,type:uuid"`
	EntryID    uuid.UUID `bun:"entry_id,pk,type:uuid"`
	ProposalID uuid.UUID `bun:"proposal_id,type:uuid,nullzero"`
	CreatedAt  time.Time `bun:"created_at"`
}
