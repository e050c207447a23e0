package classification

import (
	"testing"

	"github.com/lox/pokerkelly/poker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandClass(t *testing.T) {
	t.Parallel()
	tests := []struct {
		hole  string
		board string
		want  string
	}{
		{hole: "AsAd", board: "Ks 7c 2h", want: Overpair},
		{hole: "KhQh", board: "Ks 7c 2d", want: TopPair},
		{hole: "7h6h", board: "Ks 7c 2d", want: MiddlePair},
		{hole: "As2s", board: "Kd 7c 2d", want: WeakPair},
		{hole: "5c5d", board: "Ks 7c 2d", want: WeakPair},
		{hole: "7h7d", board: "Ks 7c 2d", want: Trips},
		{hole: "Ks7h", board: "Kd 7c 2d", want: TwoPair},
		{hole: "KcKh", board: "Ks Kd 2c", want: Quads},
		{hole: "KcTh", board: "Ks Kd 2c", want: Trips},
		{hole: "2h2d", board: "Ks Kd 2c", want: FullHouse},
		{hole: "AhKh", board: "Qh 7h 2h", want: Flush},
		{hole: "9d8c", board: "7s 6h 5c", want: Straight},
		{hole: "9h8h", board: "7h 6h 5h", want: StraightFlush},
		{hole: "AhKh", board: "Qh 7h 2c", want: FlushDraw},
		{hole: "9c8d", board: "7s 6h 2c", want: OESD},
		{hole: "9c8d", board: "7s 5h 2c", want: Gutshot},
		{hole: "Ac2d", board: "3s 4h 9c", want: Gutshot},
		{hole: "9c4d", board: "Ks Jh 2c", want: Air},
		{hole: "9c4d", board: "7s 7d 7h", want: Air},
		{hole: "9c4d", board: "Ks Kd 2h", want: Air},
	}
	for _, tc := range tests {
		t.Run(tc.hole+" on "+tc.board, func(t *testing.T) {
			t.Parallel()
			cards := parseCards(t, tc.hole)
			got, err := HandClass([2]poker.Card{cards[0], cards[1]}, parseCards(t, tc.board))
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestHandClassErrors(t *testing.T) {
	t.Parallel()
	hole := parseCards(t, "AsKs")
	_, err := HandClass([2]poker.Card{hole[0], hole[1]}, parseCards(t, "Qs Js"))
	assert.ErrorIs(t, err, poker.ErrInvalidInput)

	_, err = HandClass([2]poker.Card{hole[0], hole[1]}, parseCards(t, "As 7d 2c"))
	assert.ErrorIs(t, err, poker.ErrInvalidInput)
}
