package entry

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the catalog_entries row.
type Record struct {
	bun.BaseModel `bun:"table:catalog_entries"`

	ID           uuid.UUID `bun:"id,pk,type:uuid"`
	Title        string    `bun:"title"`
	URL          string    `bun:"url,notnull"`
	CanonicalURL string    `bun:"canonical_url,notnull"`
	CreatedAt    time.Time `bun:"created_at"`
}
