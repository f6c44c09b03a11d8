package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeIntent_Presence(t *testing.T) {
	in, err := DecodeIntent([]byte(`{"type":"presence","file":"main.py","cursor":{"line":3,"column":7}}`))
	require.NoError(t, err)
	p, ok := in.(PresenceIntent)
	require.True(t, ok)
	assert.Equal(t, "main.py", p.File)
	assert.Equal(t, 3, p.Cursor.Line)
	assert.Equal(t, 7, p.Cursor.Column)
}

func TestDecodeIntent_Guess(t *testing.T) {
	in, err := DecodeIntent([]byte(`{"type":"guess","errorId":"err_1","guessedType":"typo"}`))
	require.NoError(t, err)
	g, ok := in.(GuessIntent)
	require.True(t, ok)
	assert.Equal(t, "err_1", g.ErrorID)
	assert.Equal(t, "typo", g.GuessedType)
}

func TestDecodeIntent_StartGameMapOptional(t *testing.T) {
	in, err := DecodeIntent([]byte(`{"type":"start_game"}`))
	require.NoError(t, err)
	assert.Equal(t, StartGameIntent{}, in)

	in, err = DecodeIntent([]byte(`{"type":"start_game","mapId":"todo"}`))
	require.NoError(t, err)
	assert.Equal(t, StartGameIntent{MapID: "todo"}, in)
}

func TestDecodeIntent_ChatTrimsText(t *testing.T) {
	in, err := DecodeIntent([]byte(`{"type":"chat","text":"  hi there  "}`))
	require.NoError(t, err)
	assert.Equal(t, ChatIntent{Text: "hi there"}, in)

	_, err = DecodeIntent([]byte(`{"type":"chat","text":"   "}`))
	assert.ErrorIs(t, err, ErrMalformedIntent)
}

func TestDecodeIntent_ReturnToLobby(t *testing.T) {
	in, err := DecodeIntent([]byte(`{"type":"return_to_lobby"}`))
	require.NoError(t, err)
	assert.Equal(t, ReturnToLobbyIntent{}, in)
}

func TestDecodeIntent_RejectsMalformedFrames(t *testing.T) {
	cases := []string{
		`not json`,
		`{"type":"warp_drive"}`,
		`{"type":"presence","file":"main.py"}`,
		`{"type":"presence","cursor":{"line":1,"column":1}}`,
		`{"type":"guess","errorId":"err_1"}`,
		`{"type":"guess","guessedType":"typo"}`,
		`{"type":"select_file"}`,
	}
	for _, c := range cases {
		_, err := DecodeIntent([]byte(c))
		assert.Error(t, err, c)
	}
}

func TestErrorViews_EmptySerializesAsPresent(t *testing.T) {
	views := ErrorViews(nil)
	require.NotNil(t, views)
	assert.Empty(t, *views)
}
