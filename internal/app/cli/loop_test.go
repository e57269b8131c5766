package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"week-planner/internal/conversation"
	"week-planner/internal/runtime/session"
)

type fakeConversation struct {
	sent    []string
	failOn  string
	started int
}

func (f *fakeConversation) Start(ctx context.Context) (*session.TurnResult, error) {
	f.started++
	return &session.TurnResult{
		SessionID: "session-test",
		Messages:  []conversation.Message{conversation.Assistant{Content: "Hi Jordan! Today is Monday. Do you have any priorities for this week?"}},
	}, nil
}

func (f *fakeConversation) Send(ctx context.Context, id, text string) (*session.TurnResult, error) {
	f.sent = append(f.sent, text)
	if text == f.failOn {
		return nil, errors.New("model unavailable")
	}
	return &session.TurnResult{
		SessionID: id,
		Messages: []conversation.Message{
			conversation.Human{Content: text},
			conversation.Assistant{Content: "You said " + text},
		},
	}, nil
}

func TestIsExitWord(t *testing.T) {
	for _, w := range []string{"quit", "EXIT", " q ", "Quit"} {
		assert.True(t, IsExitWord(w), w)
	}
	for _, w := range []string{"", "quitting", "bye"} {
		assert.False(t, IsExitWord(w), w)
	}
}

func TestLoop_GreetsRepliesAndExits(t *testing.T) {
	conv := &fakeConversation{}
	var out bytes.Buffer
	l := New(conv, Options{In: strings.NewReader("gym\n\nQ\nnever sent\n"), Out: &out})

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, 1, conv.started)
	assert.Equal(t, []string{"gym"}, conv.sent)
	text := out.String()
	assert.Contains(t, text, "Assistant: Hi Jordan! Today is Monday.")
	assert.Contains(t, text, "Assistant: You said gym\n")
	assert.True(t, strings.HasSuffix(text, GoodbyeMessage+"\n"))
}

func TestLoop_TurnErrorContinues(t *testing.T) {
	conv := &fakeConversation{failOn: "boom"}
	var out bytes.Buffer
	l := New(conv, Options{In: strings.NewReader("boom\nagain\n"), Out: &out, Plain: true})

	require.NoError(t, l.Run(context.Background()))
	assert.Equal(t, []string{"boom", "again"}, conv.sent)
	assert.Contains(t, out.String(), "Error: model unavailable")
	assert.Contains(t, out.String(), "Assistant: You said again")
}

func TestLoop_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	l := New(&fakeConversation{}, Options{In: strings.NewReader("hello\n"), Out: &bytes.Buffer{}})
	assert.ErrorIs(t, l.Run(ctx), context.Canceled)
}
