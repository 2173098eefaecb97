package profile

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Record models the profiles row.
type Record struct {
	bun.BaseModel `bun:"table:profiles"`

	ID               uuid.UUID `bun:"id,pk,type:uuid"`
	DisplayName      string    `bun:"display_name,notnull"`
	Biography        string    `bun:"biography"`
	CodeHostURL      string    `bun:"code_host_url"`
	PersonalSiteURL  string    `bun:"personal_site_url"`
	TwitterURL       string    `bun:"twitter_url"`
	LinkedInURL      string    `bun:"linkedin_url"`
	MastodonURL      string    `bun:"mastodon_url"`
	BlueskyURL       string    `bun:"bluesky_url"`
	YouTubeURL       string    `bun:"youtube_url"`
	InstagramURL     string    `bun:"instagram_url"`
	FacebookURL      string    `bun:"facebook_url"`
	StackOverflowURL string    `bun:"stack_overflow_url"`
	CreatedAt        time.Time `bun:"created_at"`
	UpdatedAt        time.Time `bun:"updated_at"`
}
