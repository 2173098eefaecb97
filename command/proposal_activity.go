package command

import (
	"time"

	"github.com/goliatone/go-proposals/activity"
	"github.com/goliatone/go-proposals/pkg/types"
	"github.com/google/uuid"
)

const (
	activityChannel = "proposals"

	verbSubmitted = "proposal.submitted"
	verbApproved  = "proposal.approved"
	verbRejected  = "proposal.rejected"
	verbRematched = "proposal.entry.rematched"
)

func proposalActivity(verb string, proposal types.Proposal, actorID uuid.UUID, at time.Time, extra map[string]any) types.ActivityRecord {
	data := map[string]any{
		"state":           string(proposal.State),
		"submitter_email": proposal.SubmitterEmail,
		"new_profile":     proposal.IsNewProfileProposal(),
		"link_changes":    proposal.HasLinkChanges(),
		"bio_change":      proposal.HasBiographyChanges(),
	}
	if proposal.TargetProfileID != uuid.Nil {
		data["target_profile_id"] = proposal.TargetProfileID.String()
	}
	if proposal.IsEntryMatched() {
		data["entry_id"] = proposal.ResolvedEntryID.String()
	}
	for key, value := range extra {
		data[key] = value
	}
	return types.ActivityRecord{
		ActorID:    actorID,
		Verb:       verb,
		ObjectType: activity.ObjectTypeProposal,
		ObjectID:   proposal.ID.String(),
		Channel:    activityChannel,
		Data:       data,
		OccurredAt: at,
	}
}
