package line

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaowang-jiji/taskbot/internal/domain"
)

const sampleWebhook = `{
  "destination": "Ubot",
  "events": [
    {"type":"message","webhookEventId":"e1","timestamp":1757584800000,"replyToken":"rt1",
     "source":{"type":"user","userId":"U1"},"message":{"id":"m1","type":"text","text":"buy milk"}},
    {"type":"postback","webhookEventId":"e2","timestamp":1757584800001,"replyToken":"rt2",
     "source":{"type":"user","userId":"U1"},"postback":{"data":"{\"action\":\"complete\",\"taskId\":1757584800000}"}},
    {"type":"message","webhookEventId":"e3","timestamp":1757584800002,"replyToken":"rt3",
     "source":{"type":"user","userId":"U1"},"message":{"id":"m3","type":"text","text":"SYNC_TASKS:[{\"id\":1,\"text\":\"a\",\"completed\":false}]"}},
    {"type":"follow","webhookEventId":"e4","timestamp":1757584800003,"replyToken":"rt4","source":{"type":"user","userId":"U2"}},
    {"type":"message","webhookEventId":"e5","timestamp":1757584800004,"replyToken":"rt5",
     "source":{"type":"user","userId":"U1"},"message":{"id":"m5","type":"sticker"}},
    {"type":"postback","webhookEventId":"e6","timestamp":1757584800005,"replyToken":"rt6",
     "source":{"type":"user","userId":"U1"},"postback":{"data":"complete_task_123"}},
    {"type":"unfollow","webhookEventId":"e7","timestamp":1757584800006,"source":{"type":"user","userId":"U3"}}
  ]
}`

func TestParseWebhook(t *testing.T) {
	events, err := ParseWebhook([]byte(sampleWebhook))

	require.NoError(t, err)
	require.Len(t, events, 7)

	text, ok := events[0].(domain.TextMessage)
	require.True(t, ok, "got %T", events[0])
	assert.Equal(t, "buy milk", text.Text)
	assert.Equal(t, "e1", text.ID)
	assert.Equal(t, "U1", text.UserID)
	assert.Equal(t, "rt1", text.ReplyToken)
	assert.True(t, time.UnixMilli(1757584800000).Equal(text.Timestamp))

	pb, ok := events[1].(domain.Postback)
	require.True(t, ok, "got %T", events[1])
	assert.Equal(t, domain.PostbackData{Action: domain.ActionComplete, TaskID: 1757584800000}, pb.Data)

	sync, ok := events[2].(domain.SyncRequest)
	require.True(t, ok, "got %T", events[2])
	assert.Equal(t, `SYNC_TASKS:[{"id":1,"text":"a","completed":false}]`, sync.Payload)

	_, ok = events[3].(domain.Follow)
	assert.True(t, ok, "got %T", events[3])

	sticker, ok := events[4].(domain.Unsupported)
	require.True(t, ok, "got %T", events[4])
	assert.Equal(t, "sticker", sticker.Kind)
	assert.NoError(t, sticker.Err)

	legacy, ok := events[5].(domain.Unsupported)
	require.True(t, ok, "got %T", events[5])
	assert.ErrorIs(t, legacy.Err, domain.ErrInvalidPostback)

	unfollow, ok := events[6].(domain.Unsupported)
	require.True(t, ok, "got %T", events[6])
	assert.Equal(t, "unfollow", unfollow.Kind)
}

func TestParseWebhook_MessageIDFallback(t *testing.T) {
	body := `{"events":[{"type":"message","source":{"userId":"U1"},"message":{"id":"m9","type":"text","text":"hi"}}]}`

	events, err := ParseWebhook([]byte(body))

	require.NoError(t, err)
	assert.Equal(t, "m9", events[0].Base().ID)
}

func TestParseWebhook_Empty(t *testing.T) {
	events, err := ParseWebhook([]byte(`{"destination":"Ubot","events":[]}`))

	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestParseWebhook_InvalidJSON(t *testing.T) {
	_, err := ParseWebhook([]byte(`{"events":`))

	assert.Error(t, err)
}

func TestVerifySignature(t *testing.T) {
	body := []byte(sampleWebhook)
	sig := Sign("secret", body)

	tests := []struct {
		name      string
		secret    string
		signature string
		want      bool
	}{
		{"valid", "secret", sig, true},
		{"wrong secret", "other", sig, false},
		{"missing signature", "secret", "", false},
		{"tampered", "secret", sig[:len(sig)-2] + "AA", false},
		{"no secret configured", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, VerifySignature(tt.secret, body, tt.signature))
		})
	}
}
