package event

import (
	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/identity"
	"github.com/avocado/teamhub/internal/domain/meeting"
	"github.com/avocado/teamhub/internal/domain/review"
)

// RegisterAllEvents registers every event type the application raises.
// An event type missing here cannot be written to the outbox.
func RegisterAllEvents(serializer *EventSerializer) {
	Register[identity.UserRegisteredEvent](serializer, identity.EventTypeUserRegistered)

	Register[course.MemberEvaluationReleasedEvent](serializer, course.EventTypeMemberEvaluationReleased)
	Register[course.GroupEvaluationChangedEvent](serializer, course.EventTypeGroupEvaluationChanged)

	Register[meeting.MeetingScheduledEvent](serializer, meeting.EventTypeMeetingScheduled)
	Register[meeting.MeetingCompletedEvent](serializer, meeting.EventTypeMeetingCompleted)

	Register[review.PeerReviewsSubmittedEvent](serializer, review.EventTypePeerReviewsSubmitted)

	Register[channel.MessagePostedEvent](serializer, channel.EventTypeMessagePosted)
	Register[channel.AssistantMentionedEvent](serializer, channel.EventTypeAssistantMentioned)
}
