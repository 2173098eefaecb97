// Package changeset validates the whitelisted diff carried by a proposal and
// applies it onto a profile.
package changeset

import (
	"fmt"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
	"github.com/goliatone/go-proposals/pkg/types"
)

// DefaultMaxBiographyLength is the biography limit in characters.
const DefaultMaxBiographyLength = 500

const maxURLLength = 2048

var validate = validator.New()

// Input is the untyped diff accepted from submission forms.
type Input struct {
	Biography *string
	Links     map[string]string
}

// Config tunes change set validation.
type Config struct {
	MaxBiographyLength int
}

// Validator turns raw input into a typed, validated ChangeSet.
type Validator struct {
	maxBiography int
}

// NewValidator constructs a validator, defaulting unset limits.
func NewValidator(cfg Config) *Validator {
	limit := cfg.MaxBiographyLength
	if limit <= 0 {
		limit = DefaultMaxBiographyLength
	}
	return &Validator{maxBiography: limit}
}

// Build validates in and returns the typed change set. Field failures are
// appended to verr; the returned change set is only meaningful when verr
// stays empty. Unknown link keys are reported, never dropped. Blank values
// mean "no change" and are skipped.
func (v *Validator) Build(in Input, verr *types.ValidationError) types.ChangeSet {
	out := types.ChangeSet{}
	if in.Biography != nil {
		bio := strings.TrimSpace(*in.Biography)
		switch {
		case bio == "":
		case utf8.RuneCountInString(bio) > v.maxBiography:
			verr.Add("biography", fmt.Sprintf("must be at most %d characters", v.maxBiography))
		default:
			out.Biography = &bio
		}
	}

	for rawKey, rawValue := range in.Links {
		field, ok := types.ParseLinkField(rawKey)
		if !ok {
			verr.Add("links."+rawKey, "unknown link field")
			continue
		}
		value := strings.TrimSpace(rawValue)
		if value == "" {
			continue
		}
		if !ValidURL(value) {
			verr.Add("links."+string(field), "must be a valid http(s) URL")
			continue
		}
		if _, dup := out.Links[field]; dup {
			verr.Add("links."+string(field), "specified more than once")
			continue
		}
		if out.Links == nil {
			out.Links = make(map[types.LinkField]string)
		}
		out.Links[field] = value
	}
	return out
}

// Check re-validates an already typed change set, e.g. one loaded from storage.
func (v *Validator) Check(cs types.ChangeSet) error {
	verr := &types.ValidationError{}
	if cs.Biography != nil && utf8.RuneCountInString(*cs.Biography) > v.maxBiography {
		verr.Add("biography", fmt.Sprintf("must be at most %d characters", v.maxBiography))
	}
	for _, field := range cs.SortedLinkFields() {
		if !field.Valid() {
			verr.Add("links."+string(field), "unknown link field")
			continue
		}
		if !ValidURL(cs.Links[field]) {
			verr.Add("links."+string(field), "must be a valid http(s) URL")
		}
	}
	return verr.Err()
}

// Apply writes the change set onto profile. Biography is only touched when
// present. A link key outside the whitelist aborts with ErrUnknownLinkField
// before anything is written.
func Apply(profile *types.Profile, cs types.ChangeSet) error {
	if profile == nil {
		return types.ErrProfileRequired
	}
	fields := cs.SortedLinkFields()
	for _, field := range fields {
		if !field.Valid() {
			return fmt.Errorf("%w: %q", types.ErrUnknownLinkField, string(field))
		}
	}
	if cs.Biography != nil {
		profile.Biography = *cs.Biography
	}
	for _, field := range fields {
		if err := profile.SetLink(field, cs.Links[field]); err != nil {
			return err
		}
	}
	return nil
}

// ValidURL reports whether raw is an absolute http or https URL with a host.
func ValidURL(raw string) bool {
	if raw == "" || len(raw) > maxURLLength {
		return false
	}
	if err := validate.Var(raw, "required,url"); err != nil {
		return false
	}
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		return false
	}
	scheme := strings.ToLower(parsed.Scheme)
	return scheme == "http" || scheme == "https"
}

// ValidEmail reports whether raw is a syntactically valid email address.
func ValidEmail(raw string) bool {
	if raw == "" {
		return false
	}
	return validate.Var(raw, "required,email") == nil
}
