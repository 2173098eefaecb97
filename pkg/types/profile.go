package types

import "fmt"

// SetLink writes value into the profile field backing the link slot.
// Unknown slots return ErrUnknownLinkField and leave the profile untouched.
func (p *Profile) SetLink(field LinkField, value string) error {
	if p == nil {
		return ErrProfileRequired
	}
	switch field {
	case LinkCodeHost:
		p.CodeHostURL = value
	case LinkPersonalSite:
		p.PersonalSiteURL = value
	case LinkTwitter:
		p.TwitterURL = value
	case LinkLinkedIn:
		p.LinkedInURL = value
	case LinkMastodon:
		p.MastodonURL = value
	case LinkBluesky:
		p.BlueskyURL = value
	case LinkYouTube:
		p.YouTubeURL = value
	case LinkInstagram:
		p.InstagramURL = value
	case LinkFacebook:
		p.FacebookURL = value
	case LinkStackOverflow:
		p.StackOverflowURL = value
	default:
		return fmt.Errorf("%w: %q", ErrUnknownLinkField, string(field))
	}
	return nil
}

// Links returns the non-empty link fields keyed by slot.
func (p Profile) Links() map[LinkField]string {
	values := map[LinkField]string{
		LinkCodeHost:      p.CodeHostURL,
		LinkPersonalSite:  p.PersonalSiteURL,
		LinkTwitter:       p.TwitterURL,
		LinkLinkedIn:      p.LinkedInURL,
		LinkMastodon:      p.MastodonURL,
		LinkBluesky:       p.BlueskyURL,
		LinkYouTube:       p.YouTubeURL,
		LinkInstagram:     p.InstagramURL,
		LinkFacebook:      p.FacebookURL,
		LinkStackOverflow: p.StackOverflowURL,
	}
	for key, value := range values {
		if value == "" {
			delete(values, key)
		}
	}
	return values
}
