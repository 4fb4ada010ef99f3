package discovery

import (
	"testing"

	"github.com/stretchr/testify/require"

	"lanchat/internal/event"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

func TestUpdateStatusIsVisibleToAnnounce(t *testing.T) {
	profile := types.NewUserProfile("alice", "Alice")
	registry := peer.NewRegistry()
	bus := event.NewBus()
	defer bus.Close()

	svc, err := New(profile, 37843, []byte("pem-bytes"), registry, bus)
	require.NoError(t, err)

	require.Equal(t, types.StatusOnline, svc.profile.Status)
	svc.UpdateStatus(types.StatusBusy)
	require.Equal(t, types.StatusBusy, svc.profile.Status)
}
