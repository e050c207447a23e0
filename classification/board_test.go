package classification

import (
	"testing"

	"github.com/lox/pokerkelly/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseCards(t *testing.T, s string) []poker.Card {
	t.Helper()
	cards, err := poker.ParseCards(s)
	require.NoError(t, err)
	return cards
}

func TestBoardTexture(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		board    string
		expected BoardTexture
	}{
		{name: "dry board", board: "Ks 7h 2c", expected: Dry},
		{name: "semi wet board", board: "Kh Qh 7c", expected: SemiWet},
		{name: "wet board", board: "9h 8h 7s", expected: Wet},
		{name: "very wet board", board: "Th 9h 8h", expected: VeryWet},
		{name: "paired board", board: "As Ah 7c", expected: SemiWet},
		{name: "too few cards", board: "Th 9h", expected: Dry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			board := poker.NewHand(parseCards(t, tt.board)...)
			assert.Equal(t, tt.expected, AnalyzeBoardTexture(board))
		})
	}
}

func TestFlopCategory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		board string
		want  string
	}{
		{board: "Ks Kd 7c", want: "PairedRainbow"},
		{board: "Ks Kd 7d", want: "PairedTwoTone"},
		{board: "7s 7d 7h", want: "PairedRainbow"},
		{board: "8h 7h 5c", want: "LowConnectedTwoTone"},
		{board: "Ah 9h 4h", want: "AceHighMonotone"},
		{board: "Ac 2d 3h", want: "AceHighConnectedRainbow"},
		{board: "Ac Kd Qh", want: "AceHighConnectedRainbow"},
		{board: "Qs Jd 9c", want: "HighConnectedRainbow"},
		{board: "Td 4s 2c", want: "MidRainbow"},
		{board: "9s 5s 2s", want: "LowMonotone"},
	}
	for _, tc := range tests {
		t.Run(tc.board, func(t *testing.T) {
			t.Parallel()
			got, err := FlopCategory(parseCards(t, tc.board))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAnalyzeFlop(t *testing.T) {
	t.Parallel()
	f, err := AnalyzeFlop(parseCards(t, "7s 7d 7h"))
	require.NoError(t, err)
	assert.True(t, f.Paired)
	assert.True(t, f.Trips)
	assert.False(t, f.Connected)
	assert.Equal(t, poker.Seven, f.TopRank)

	f, err = AnalyzeFlop(parseCards(t, "Th 9h 8h"))
	require.NoError(t, err)
	assert.Equal(t, Monotone, f.Suits)
	assert.Equal(t, Mid, f.Height)
	assert.True(t, f.Connected)
	assert.Equal(t, VeryWet, f.Texture)

	_, err = AnalyzeFlop(parseCards(t, "Th 9h"))
	assert.ErrorIs(t, err, poker.ErrInvalidInput)

	ten := poker.NewCard(poker.Ten, poker.Hearts)
	_, err = AnalyzeFlop([]poker.Card{ten, ten, poker.NewCard(poker.Two, poker.Clubs)})
	assert.ErrorIs(t, err, poker.ErrInvalidInput)
}
