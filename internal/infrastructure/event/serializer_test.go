package event

import (
	"testing"
	"time"

	"github.com/avocado/teamhub/internal/domain/channel"
	"github.com/avocado/teamhub/internal/domain/course"
	"github.com/avocado/teamhub/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_RoundTrip(t *testing.T) {
	serializer := NewEventSerializer()
	Register[testEvent](serializer, "TestEvent")

	original := &testEvent{
		BaseDomainEvent: shared.BaseDomainEvent{
			ID:            uuid.New(),
			Type:          "TestEvent",
			Timestamp:     time.Date(2024, 9, 16, 10, 0, 0, 0, time.UTC),
			AggregateKey:  "z5550001",
			AggregateKind: "User",
		},
		Data: "standup notes",
	}

	data, err := serializer.Serialize(original)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "`+original.ID.String()+`",
		"type": "TestEvent",
		"timestamp": "2024-09-16T10:00:00Z",
		"aggregate_id": "z5550001",
		"aggregate_type": "User",
		"data": "standup notes"
	}`, string(data))

	decoded, err := serializer.Deserialize("TestEvent", data)
	require.NoError(t, err)
	require.IsType(t, &testEvent{}, decoded)
	assert.Equal(t, original, decoded)
}

func TestEventSerializer_RefusesUnregisteredTypes(t *testing.T) {
	serializer := NewEventSerializer()

	_, err := serializer.Serialize(newTestEvent("TestEvent"))
	assert.EqualError(t, err, `event type "TestEvent" is not registered`)

	_, err = serializer.Deserialize("TestEvent", []byte(`{}`))
	assert.EqualError(t, err, "unknown event type: TestEvent")
}

func TestEventSerializer_BadPayload(t *testing.T) {
	serializer := NewEventSerializer()
	Register[testEvent](serializer, "TestEvent")

	_, err := serializer.Deserialize("TestEvent", []byte(`{"data": 12`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal TestEvent")
}

func TestEventSerializer_EachDecodeIsAFreshValue(t *testing.T) {
	serializer := NewEventSerializer()
	Register[testEvent](serializer, "TestEvent")

	a, err := serializer.Deserialize("TestEvent", []byte(`{"data":"a"}`))
	require.NoError(t, err)
	b, err := serializer.Deserialize("TestEvent", []byte(`{"data":"b"}`))
	require.NoError(t, err)

	assert.Equal(t, "a", a.(*testEvent).Data)
	assert.Equal(t, "b", b.(*testEvent).Data)
}

func TestRegisterAllEvents(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	assert.Equal(t, []string{
		"AssistantMentioned",
		"GroupEvaluationChanged",
		"MeetingCompleted",
		"MeetingScheduled",
		"MemberEvaluationReleased",
		"MessagePosted",
		"PeerReviewsSubmitted",
		"UserRegistered",
	}, serializer.RegisteredTypes())
	assert.False(t, serializer.IsRegistered("TestEvent"))
}

func TestEventSerializer_EvaluationEventKeepsDecimalScore(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	score := decimal.RequireFromString("87.50")
	original := course.NewMemberEvaluationReleasedEvent(&course.GroupMember{
		GroupID:     7,
		MemberZid:   "z1111111",
		FinalScore:  &score,
		IsEvaluated: true,
	}, true)

	data, err := serializer.Serialize(original)
	require.NoError(t, err)

	decoded, err := serializer.Deserialize(course.EventTypeMemberEvaluationReleased, data)
	require.NoError(t, err)

	event := decoded.(*course.MemberEvaluationReleasedEvent)
	assert.Equal(t, "7", event.AggregateID())
	assert.True(t, event.GroupDone)
	require.NotNil(t, event.FinalScore)
	assert.True(t, score.Equal(*event.FinalScore))
}

func TestEventSerializer_AssistantMentionDecodesToItsType(t *testing.T) {
	serializer := NewEventSerializer()
	RegisterAllEvents(serializer)

	data := []byte(`{"type":"AssistantMentioned","aggregate_type":"Channel","message_id":41}`)
	decoded, err := serializer.Deserialize(channel.EventTypeAssistantMentioned, data)
	require.NoError(t, err)

	mention, ok := decoded.(*channel.AssistantMentionedEvent)
	require.True(t, ok)
	assert.Equal(t, int64(41), mention.MessageID)
	assert.Equal(t, "Channel", mention.AggregateType())
}
