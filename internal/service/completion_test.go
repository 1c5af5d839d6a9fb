package service_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/vitalchat/backend/internal/metrics"
	"github.com/pageza/vitalchat/backend/internal/mocks"
	"github.com/pageza/vitalchat/backend/internal/service"
)

func testChatContext() *service.ChatContext {
	return &service.ChatContext{
		ProfileText: service.NoProfileText,
		History: []service.Message{
			{Role: service.RoleUser, Text: service.NoProfileText},
			{Role: service.RoleUser, Text: "how much water?"},
			{Role: service.RoleModel, Text: "about two litres"},
		},
	}
}

func TestCompleteReturnsChatReply(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	cc := testChatContext()
	gen.On("Chat", mock.Anything, service.SystemPrompt, cc.History, "plan my week").Return("Here is a plan", nil)

	reply, err := service.NewCompletionGateway(gen, time.Second, nil).Complete(context.Background(), cc, "plan my week")
	require.NoError(t, err)
	assert.Equal(t, "Here is a plan", reply)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestCompleteTimeout(t *testing.T) {
	reg := prometheus.NewRegistry()
	gen := new(mocks.MockTextGenerator)
	gen.On("Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			<-args.Get(0).(context.Context).Done()
		}).
		Return("", context.DeadlineExceeded)

	gw := service.NewCompletionGateway(gen, 50*time.Millisecond, metrics.New(reg))
	start := time.Now()
	reply, err := gw.Complete(context.Background(), testChatContext(), "hello")

	require.NoError(t, err)
	assert.Equal(t, service.TimeoutReply, reply)
	assert.Less(t, time.Since(start), 5*time.Second)

	expected := `
# HELP vitalchat_completions_total Assistant completions by outcome
# TYPE vitalchat_completions_total counter
vitalchat_completions_total{outcome="timeout"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "vitalchat_completions_total"))
}

func TestCompleteFallsBackOnEmptyReply(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Chat", mock.Anything, mock.Anything, mock.Anything, "hello").Return("  ", nil)
	gen.On("Generate", mock.Anything, service.SystemPrompt, mock.MatchedBy(func(p string) bool {
		return strings.HasPrefix(p, service.NoProfileText) &&
			strings.Contains(p, "model: about two litres") &&
			strings.HasSuffix(p, "user: hello")
	})).Return("fallback answer", nil)

	reply, err := service.NewCompletionGateway(gen, time.Second, nil).Complete(context.Background(), testChatContext(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "fallback answer", reply)
	gen.AssertExpectations(t)
}

func TestCompleteApologisesWhenFallbackEmpty(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", nil)
	gen.On("Generate", mock.Anything, mock.Anything, mock.Anything).Return("", nil)

	reply, err := service.NewCompletionGateway(gen, time.Second, nil).Complete(context.Background(), testChatContext(), "hello")
	require.NoError(t, err)
	assert.Equal(t, service.ApologyReply, reply)
	gen.AssertNumberOfCalls(t, "Generate", 1)
}

func TestCompleteFailureIsNotRetried(t *testing.T) {
	gen := new(mocks.MockTextGenerator)
	gen.On("Chat", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", errors.New("401 unauthorized"))

	reply, err := service.NewCompletionGateway(gen, time.Second, nil).Complete(context.Background(), testChatContext(), "hello")
	assert.ErrorIs(t, err, service.ErrCompletionFailed)
	assert.Empty(t, reply)
	gen.AssertNumberOfCalls(t, "Chat", 1)
	gen.AssertNotCalled(t, "Generate", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlatPrompt(t *testing.T) {
	prompt := service.FlatPrompt(testChatContext(), "next?")
	assert.Equal(t, service.NoProfileText+"\n\nuser: how much water?\nmodel: about two litres\nuser: next?", prompt)
}
