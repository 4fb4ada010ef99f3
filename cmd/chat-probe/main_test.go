package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lanchat/internal/peer"
	"lanchat/internal/types"
)

func TestIndexParsesValidPosition(t *testing.T) {
	peers := []peer.Peer{
		{Profile: types.NewUserProfile("a", "a")},
		{Profile: types.NewUserProfile("b", "b")},
	}
	idx, ok := index([]string{"connect", "1"}, peers)
	require.True(t, ok)
	require.Equal(t, 1, idx)
}

func TestIndexRejectsOutOfRange(t *testing.T) {
	peers := []peer.Peer{{Profile: types.NewUserProfile("a", "a")}}
	_, ok := index([]string{"connect", "5"}, peers)
	require.False(t, ok)
}

func TestIndexRejectsMissingArgument(t *testing.T) {
	_, ok := index([]string{"connect"}, nil)
	require.False(t, ok)
}

func TestIndexRejectsNonNumeric(t *testing.T) {
	peers := []peer.Peer{{Profile: types.NewUserProfile("a", "a")}}
	_, ok := index([]string{"connect", "abc"}, peers)
	require.False(t, ok)
}
