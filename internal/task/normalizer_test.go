package task

import (
	"encoding/json"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_RewardConversion(t *testing.T) {
	tests := []struct {
		name   string
		reward any
		want   float64
	}{
		{name: "five units", reward: big.NewInt(500000000), want: 5.0},
		{name: "one tinybar", reward: big.NewInt(1), want: 0.00000001},
		{name: "plain int", reward: 200000000, want: 2.0},
		{name: "json number", reward: json.Number("150000000"), want: 1.5},
		{name: "integral float", reward: float64(250000000), want: 2.5},
		{name: "decimal string", reward: "100000000", want: 1.0},
		{name: "missing reward", reward: nil, want: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(RawTask{ID: 1, Description: "T", Reward: tt.reward})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Reward)
		})
	}
}

func TestNormalize_IDEncodings(t *testing.T) {
	huge, ok := new(big.Int).SetString("18446744073709551615", 10)
	require.True(t, ok)

	tests := []struct {
		name string
		id   any
		want uint64
	}{
		{name: "big int pointer", id: big.NewInt(7), want: 7},
		{name: "big int value", id: *big.NewInt(8), want: 8},
		{name: "hexutil big", id: (*hexutil.Big)(big.NewInt(9)), want: 9},
		{name: "uint64 max", id: huge, want: 18446744073709551615},
		{name: "int", id: 3, want: 3},
		{name: "float64", id: float64(42), want: 42},
		{name: "hex string", id: "0x10", want: 16},
		{name: "json number", id: json.Number("12"), want: 12},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Normalize(RawTask{ID: tt.id, Description: "T"})
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.ID)
		})
	}
}

func TestNormalize_Malformed(t *testing.T) {
	tooBig := new(big.Int).Lsh(big.NewInt(1), 64)
	tests := []struct {
		name string
		raw  RawTask
	}{
		{name: "nil id", raw: RawTask{Description: "T"}},
		{name: "negative id", raw: RawTask{ID: -1, Description: "T"}},
		{name: "id overflows uint64", raw: RawTask{ID: tooBig, Description: "T"}},
		{name: "fractional id", raw: RawTask{ID: 1.5, Description: "T"}},
		{name: "imprecise float id", raw: RawTask{ID: float64(1 << 60), Description: "T"}},
		{name: "id not a number", raw: RawTask{ID: "abc", Description: "T"}},
		{name: "description missing", raw: RawTask{ID: 1}},
		{name: "description blank", raw: RawTask{ID: 1, Description: "   "}},
		{name: "description wrong type", raw: RawTask{ID: 1, Description: 12}},
		{name: "negative reward", raw: RawTask{ID: 1, Description: "T", Reward: -5}},
		{name: "reward wrong type", raw: RawTask{ID: 1, Description: "T", Reward: true}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize(tt.raw)
			assert.ErrorIs(t, err, ErrMalformedRecord)
		})
	}
}

func TestNormalize_Participants(t *testing.T) {
	got, err := Normalize(RawTask{ID: 1, Description: "T"})
	require.NoError(t, err)
	assert.NotNil(t, got.Participants)
	assert.Empty(t, got.Participants)

	got, err = Normalize(RawTask{
		ID:           1,
		Description:  "T",
		Participants: []string{"0xBBB", "0xbbb", " ", "0xCCC"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"0xBBB", "0xCCC"}, got.Participants)
}

func TestNormalizeAll_DropsMalformed(t *testing.T) {
	raws := []RawTask{
		{ID: 1, Description: "first"},
		{ID: "nope", Description: "broken"},
		{ID: 3, Description: ""},
		{ID: 4, Description: "fourth"},
	}
	tasks, errs := NormalizeAll(raws)
	require.Len(t, tasks, 2)
	assert.Equal(t, uint64(1), tasks[0].ID)
	assert.Equal(t, uint64(4), tasks[1].ID)
	require.Len(t, errs, 2)
	for _, err := range errs {
		assert.ErrorIs(t, err, ErrMalformedRecord)
	}
}
