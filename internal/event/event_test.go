package event

import (
	"encoding/json"
	"testing"

	"chatwire/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalWrapsDataInEnvelope(t *testing.T) {
	payload, err := Marshal(MessageDelivered, DeliveredNotice{MessageId: "m1", ChatId: "c1"})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(payload, &env))
	assert.Equal(t, MessageDelivered, env.Event)

	var notice DeliveredNotice
	require.NoError(t, json.Unmarshal(env.Data, &notice))
	assert.Equal(t, "m1", notice.MessageId)
	assert.Equal(t, "c1", notice.ChatId)
}

func TestSuccessAckCarriesMessageOnly(t *testing.T) {
	message := entity.Message{Id: "m1", ChatId: "c1", SenderId: "alice", Content: "hi"}
	payload, err := json.Marshal(Ack{Success: true, Message: &message})
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Contains(t, decoded, "message")
	assert.NotContains(t, decoded, "error")
}

func TestFailureAckCarriesErrorOnly(t *testing.T) {
	payload, err := json.Marshal(Ack{Success: false, Error: "chat not found"})
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Contains(t, decoded, "error")
	assert.NotContains(t, decoded, "message")
}

func TestEnvelopeDecodesClientEvent(t *testing.T) {
	raw := []byte(`{"event":"message:send","data":{"chatId":"c1","content":"hello"}}`)

	var env Envelope
	require.NoError(t, json.Unmarshal(raw, &env))
	require.Equal(t, MessageSend, env.Event)

	var req SendMessage
	require.NoError(t, json.Unmarshal(env.Data, &req))
	assert.Equal(t, "c1", req.ChatId)
	assert.Equal(t, "hello", req.Content)
	assert.Empty(t, req.Attachments)
}
