package history_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hrygo/chatrelay/history"
)

func TestParseOrdersByPosition(t *testing.T) {
	s := "<BOT>hello</BOT><br><USER>how are you</USER><br>"
	msgs := history.Parse(s)

	require.Len(t, msgs, 2)
	assert.Equal(t, history.RoleBot, msgs[0].Role)
	assert.Equal(t, "hello", msgs[0].Content)
	assert.Equal(t, history.RoleUser, msgs[1].Role)
	assert.Equal(t, "how are you", msgs[1].Content)
}

func TestParseDropsUnmatchedText(t *testing.T) {
	s := "garbage<br><USER>hi</USER><br>trailing junk"
	msgs := history.Parse(s)

	require.Len(t, msgs, 1)
	assert.Equal(t, "hi", msgs[0].Content)
}

func TestParseEmptyHistoryYieldsNoMessages(t *testing.T) {
	msgs := history.Parse("")
	assert.Empty(t, msgs)
}

func TestParseFailSafeTruncatesUnmarkedText(t *testing.T) {
	s := strings.Repeat("a", 20000)
	msgs := history.Parse(s)

	require.Len(t, msgs, 1)
	assert.Equal(t, history.RoleUser, msgs[0].Role)
	assert.Len(t, msgs[0].Content, 10000)
	assert.Equal(t, strings.Repeat("a", 10000), msgs[0].Content)
}

func TestParseSaleTag(t *testing.T) {
	s := "<SALE>discount applied</SALE><br>"
	msgs := history.Parse(s)

	require.Len(t, msgs, 1)
	assert.Equal(t, history.RoleSale, msgs[0].Role)
}
