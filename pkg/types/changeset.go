package types

import (
	"sort"
	"strings"
)

// LinkField names one of the fixed link slots a proposal may change.
type LinkField string

const (
	LinkCodeHost      LinkField = "code_host"
	LinkPersonalSite  LinkField = "personal_site"
	LinkTwitter       LinkField = "twitter"
	LinkLinkedIn      LinkField = "linkedin"
	LinkMastodon      LinkField = "mastodon"
	LinkBluesky       LinkField = "bluesky"
	LinkYouTube       LinkField = "youtube"
	LinkInstagram     LinkField = "instagram"
	LinkFacebook      LinkField = "facebook"
	LinkStackOverflow LinkField = "stack_overflow"
)

var linkFields = []LinkField{
	LinkCodeHost,
	LinkPersonalSite,
	LinkTwitter,
	LinkLinkedIn,
	LinkMastodon,
	LinkBluesky,
	LinkYouTube,
	LinkInstagram,
	LinkFacebook,
	LinkStackOverflow,
}

// LinkFields returns the whitelist in declaration order.
func LinkFields() []LinkField {
	out := make([]LinkField, len(linkFields))
	copy(out, linkFields)
	return out
}

// Valid reports whether the field belongs to the whitelist.
func (f LinkField) Valid() bool {
	for _, known := range linkFields {
		if f == known {
			return true
		}
	}
	return false
}

// ParseLinkField normalizes a raw key and reports whether it is whitelisted.
func ParseLinkField(raw string) (LinkField, bool) {
	field := LinkField(strings.ToLower(strings.TrimSpace(raw)))
	return field, field.Valid()
}

// ChangeSet is the diff a proposal carries. A nil Biography means no change;
// only keys present in Links are applied.
type ChangeSet struct {
	Biography *string
	Links     map[LinkField]string
}

// HasBiography reports whether a biography change is present.
func (c ChangeSet) HasBiography() bool {
	return c.Biography != nil
}

// HasLinks reports whether at least one link slot is proposed.
func (c ChangeSet) HasLinks() bool {
	return len(c.Links) > 0
}

// IsEmpty reports whether the change set proposes nothing.
func (c ChangeSet) IsEmpty() bool {
	return !c.HasBiography() && !c.HasLinks()
}

// SortedLinkFields returns the proposed keys in a stable order.
func (c ChangeSet) SortedLinkFields() []LinkField {
	keys := make([]LinkField, 0, len(c.Links))
	for key := range c.Links {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone detaches the change set from the original map and pointer.
func (c ChangeSet) Clone() ChangeSet {
	clone := ChangeSet{}
	if c.Biography != nil {
		bio := *c.Biography
		clone.Biography = &bio
	}
	if len(c.Links) > 0 {
		clone.Links = make(map[LinkField]string, len(c.Links))
		for k, v := range c.Links {
			clone.Links[k] = v
		}
	}
	return clone
}
