package chatshare_test

import (
	"testing"

	"github.com/fwojciec/chatshare"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRole(t *testing.T) {
	t.Parallel()

	assert.Equal(t, chatshare.RoleAssistant, chatshare.ParseRole("assistant"))
	assert.Equal(t, chatshare.RoleUser, chatshare.ParseRole("user"))
	assert.Equal(t, chatshare.RoleUser, chatshare.ParseRole("system"))
	assert.Equal(t, chatshare.RoleUser, chatshare.ParseRole("Assistant"))
	assert.Equal(t, chatshare.RoleUser, chatshare.ParseRole(""))
}

func TestRole_Other(t *testing.T) {
	t.Parallel()

	assert.Equal(t, chatshare.RoleAssistant, chatshare.RoleUser.Other())
	assert.Equal(t, chatshare.RoleUser, chatshare.RoleAssistant.Other())
}

func TestNewMessages(t *testing.T) {
	t.Parallel()

	msgs := chatshare.NewMessages([]chatshare.Turn{
		{Role: chatshare.RoleUser, Text: "hello"},
		{Role: chatshare.RoleAssistant, Text: ""},
		{Role: chatshare.RoleAssistant, Text: "hi there"},
	})

	require.Len(t, msgs, 2)
	assert.Equal(t, chatshare.Message{Role: chatshare.RoleUser, Text: "hello", Index: 1}, msgs[0])
	assert.Equal(t, chatshare.Message{Role: chatshare.RoleAssistant, Text: "hi there", Index: 2}, msgs[1])
}

func TestTranscript_Empty(t *testing.T) {
	t.Parallel()

	var nilTranscript *chatshare.Transcript
	assert.True(t, nilTranscript.Empty())
	assert.True(t, (&chatshare.Transcript{}).Empty())
	assert.False(t, (&chatshare.Transcript{Messages: []chatshare.Message{{Text: "x"}}}).Empty())
}
