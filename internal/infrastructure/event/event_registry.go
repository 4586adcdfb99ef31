package event

import (
	"github.com/nia/backend/internal/domain/conversation"
	"github.com/nia/backend/internal/domain/lead"
	"github.com/nia/backend/internal/domain/meeting"
	"github.com/nia/backend/internal/domain/shared"
	"github.com/nia/backend/internal/domain/voice"
)

// RegisterAllEvents registers all domain event types with the serializer.
// This is required for the OutboxProcessor to deserialize events from the
// outbox table. Events whose schema has changed since their first release
// are registered with an upgrader chain so stored payloads written under
// an older schema still deserialize.
func RegisterAllEvents(serializer *VersionedSerializer) error {
	// Lead domain events
	serializer.Register(lead.EventTypeLeadCreated, &lead.LeadCreatedEvent{})
	serializer.Register(lead.EventTypeLeadStatusChanged, &lead.LeadStatusChangedEvent{})

	// LeadScored v1 carried the score explanation under "reasoning";
	// v2 renamed it to "rationale"
	if err := serializer.RegisterVersioned(
		lead.EventTypeLeadScored,
		lead.LeadScoredSchemaVersion,
		map[int]shared.DomainEvent{
			lead.LeadScoredSchemaVersion: &lead.LeadScoredEvent{},
		},
		CommonUpgraders{}.RenameField(1, "reasoning", "rationale"),
	); err != nil {
		return err
	}

	// Conversation domain events
	serializer.Register(conversation.EventTypeConversationAnalyzed, &conversation.AnalyzedEvent{})

	// Meeting domain events
	serializer.Register(meeting.EventTypeMeetingScheduled, &meeting.MeetingScheduledEvent{})
	serializer.Register(meeting.EventTypeMeetingCancelled, &meeting.MeetingCancelledEvent{})
	serializer.Register(meeting.EventTypeMeetingCompleted, &meeting.MeetingCompletedEvent{})

	// Voice domain events
	serializer.Register(voice.EventTypeSessionStarted, &voice.SessionStartedEvent{})
	serializer.Register(voice.EventTypeSessionCompleted, &voice.SessionCompletedEvent{})

	return nil
}
