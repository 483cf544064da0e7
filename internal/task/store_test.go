package task

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_EmptyBeforeFetch(t *testing.T) {
	s := NewStore()
	assert.Empty(t, s.Current())
	assert.NotNil(t, s.Current())
	assert.Equal(t, uint64(0), s.Generation())
	_, ok := s.Get(1)
	assert.False(t, ok)
}

func TestStore_ReplaceIsWholesale(t *testing.T) {
	s := NewStore()
	s.Replace([]*Task{{ID: 1, Description: "a"}, {ID: 2, Description: "b"}})
	s.Replace([]*Task{{ID: 3, Description: "c"}})

	current := s.Current()
	require.Len(t, current, 1)
	assert.Equal(t, uint64(3), current[0].ID)
	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.Equal(t, uint64(2), s.Generation())
}

func TestStore_ReplaceCopiesInput(t *testing.T) {
	s := NewStore()
	input := []*Task{{ID: 1, Description: "a"}}
	s.Replace(input)
	input[0] = &Task{ID: 99, Description: "mutated"}

	got, ok := s.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a", got.Description)
}

func TestStore_ReplaceTwiceSamePartitions(t *testing.T) {
	snapshot := []*Task{
		{ID: 1, Creator: "0xAAA", Description: "T1"},
		{ID: 2, Creator: "0xBBB", Description: "T2", Completed: true},
		{ID: 3, Creator: "0xaaa", Description: "T3", Completed: true},
	}
	s := NewStore()
	s.Replace(snapshot)
	first := Partition(s.Current(), "0xaaa")
	s.Replace(snapshot)
	second := Partition(s.Current(), "0xaaa")
	assert.Equal(t, first, second)
}

func TestStore_ClearBumpsGeneration(t *testing.T) {
	s := NewStore()
	s.Replace([]*Task{{ID: 1, Description: "a"}})
	s.Clear()
	assert.Empty(t, s.Current())
	assert.Equal(t, uint64(2), s.Generation())
}
