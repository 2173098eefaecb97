package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/goliatone/go-proposals/changeset"
	"github.com/goliatone/go-proposals/pkg/types"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// DefaultMinDisplayNameLength is the shortest display name a profile accepts.
const DefaultMinDisplayNameLength = 3

// RepositoryConfig wires the Bun-backed profile repository.
type RepositoryConfig struct {
	DB                   *bun.DB
	Clock                types.Clock
	IDGenerator          types.IDGenerator
	MinDisplayNameLength int
	MaxBiographyLength   int
}

// Repository implements types.ProfileRepository using Bun. Every write runs
// the profile-level validation rules.
type Repository struct {
	root    *bun.DB
	db      bun.IDB
	clock   types.Clock
	ids     types.IDGenerator
	minName int
	maxBio  int
}

// NewRepository constructs the default profile repository.
func NewRepository(cfg RepositoryConfig) (*Repository, error) {
	if cfg.DB == nil {
		return nil, errors.New("profile: db required")
	}
	clock := cfg.Clock
	if clock == nil {
		clock = types.SystemClock{}
	}
	ids := cfg.IDGenerator
	if ids == nil {
		ids = types.UUIDGenerator{}
	}
	minName := cfg.MinDisplayNameLength
	if minName <= 0 {
		minName = DefaultMinDisplayNameLength
	}
	maxBio := cfg.MaxBiographyLength
	if maxBio <= 0 {
		maxBio = changeset.DefaultMaxBiographyLength
	}
	return &Repository{
		root:    cfg.DB,
		db:      cfg.DB,
		clock:   clock,
		ids:     ids,
		minName: minName,
		maxBio:  maxBio,
	}, nil
}

var _ types.ProfileRepository = (*Repository)(nil)

// WithTx returns a copy of the repository bound to tx.
func (r *Repository) WithTx(tx bun.IDB) *Repository {
	clone := *r
	clone.db = tx
	return &clone
}

// FindProfile returns the profile or nil when it does not exist.
func (r *Repository) FindProfile(ctx context.Context, id uuid.UUID) (*types.Profile, error) {
	if id == uuid.Nil {
		return nil, nil
	}
	rec := &Record{}
	err := r.db.NewSelect().Model(rec).Where("id = ?", id).Limit(1).Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.root))
	}
	return toDomain(rec), nil
}

// CreateProfile validates and inserts a new profile.
func (r *Repository) CreateProfile(ctx context.Context, profile types.Profile) (*types.Profile, error) {
	profile.DisplayName = strings.TrimSpace(profile.DisplayName)
	if err := r.Validate(profile); err != nil {
		return nil, err
	}
	rec := fromDomain(profile)
	if rec.ID == uuid.Nil {
		rec.ID = r.ids.UUID()
	}
	now := r.clock.Now()
	rec.CreatedAt = now
	rec.UpdatedAt = now
	if _, err := r.db.NewInsert().Model(rec).Exec(ctx); err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.root))
	}
	return toDomain(rec), nil
}

// SaveProfile validates and updates an existing profile. A missing row
// returns ErrProfileNotFound.
func (r *Repository) SaveProfile(ctx context.Context, profile types.Profile) (*types.Profile, error) {
	if profile.ID == uuid.Nil {
		return nil, types.ErrProfileRequired
	}
	profile.DisplayName = strings.TrimSpace(profile.DisplayName)
	if err := r.Validate(profile); err != nil {
		return nil, err
	}
	rec := fromDomain(profile)
	rec.UpdatedAt = r.clock.Now()
	res, err := r.db.NewUpdate().Model(rec).
		ExcludeColumn("id", "created_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, repository.MapDatabaseError(err, repository.DetectDriver(r.root))
	}
	if err := repository.SQLExpectedCount(res, 1); err != nil {
		if repository.IsSQLExpectedCountViolation(err) {
			return nil, fmt.Errorf("%w: %s", types.ErrProfileNotFound, profile.ID)
		}
		return nil, err
	}
	return r.FindProfile(ctx, profile.ID)
}

// Validate enforces the profile-level rules applied on every write.
func (r *Repository) Validate(profile types.Profile) error {
	verr := &types.ValidationError{}
	name := strings.TrimSpace(profile.DisplayName)
	switch {
	case name == "":
		verr.Add("display_name", "is required")
	case utf8.RuneCountInString(name) < r.minName:
		verr.Add("display_name", fmt.Sprintf("must be at least %d characters", r.minName))
	}
	if utf8.RuneCountInString(profile.Biography) > r.maxBio {
		verr.Add("biography", fmt.Sprintf("must be at most %d characters", r.maxBio))
	}
	links := profile.Links()
	for _, field := range types.LinkFields() {
		value, ok := links[field]
		if !ok {
			continue
		}
		if !changeset.ValidURL(value) {
			verr.Add("links."+string(field), "must be a valid http(s) URL")
		}
	}
	return verr.Err()
}

func fromDomain(profile types.Profile) *Record {
	return &Record{
		ID:               profile.ID,
		DisplayName:      profile.DisplayName,
		Biography:        profile.Biography,
		CodeHostURL:      profile.CodeHostURL,
		PersonalSiteURL:  profile.PersonalSiteURL,
		TwitterURL:       profile.TwitterURL,
		LinkedInURL:      profile.LinkedInURL,
		MastodonURL:      profile.MastodonURL,
		BlueskyURL:       profile.BlueskyURL,
		YouTubeURL:       profile.YouTubeURL,
		InstagramURL:     profile.InstagramURL,
		FacebookURL:      profile.FacebookURL,
		StackOverflowURL: profile.StackOverflowURL,
		CreatedAt:        profile.CreatedAt,
		UpdatedAt:        profile.UpdatedAt,
	}
}

func toDomain(rec *Record) *types.Profile {
	if rec == nil {
		return nil
	}
	return &types.Profile{
		ID:               rec.ID,
		DisplayName:      rec.DisplayName,
		Biography:        rec.Biography,
		CodeHostURL:      rec.CodeHostURL,
		PersonalSiteURL:  rec.PersonalSiteURL,
		TwitterURL:       rec.TwitterURL,
		LinkedInURL:      rec.LinkedInURL,
		MastodonURL:      rec.MastodonURL,
		BlueskyURL:       rec.BlueskyURL,
		YouTubeURL:       rec.YouTubeURL,
		InstagramURL:     rec.InstagramURL,
		FacebookURL:      rec.FacebookURL,
		StackOverflowURL: rec.StackOverflowURL,
		CreatedAt:        rec.CreatedAt.UTC(),
		UpdatedAt:        rec.UpdatedAt.UTC(),
	}
}
