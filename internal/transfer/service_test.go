package transfer

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lanchat/internal/event"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

func waitForKind(t *testing.T, bus *event.Bus, kind event.Kind, timeout time.Duration) event.Event {
	t.Helper()
	deadline := time.After(timeout)
	for {
		select {
		case ev := <-bus.Events():
			if ev.Kind == kind {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for event kind %s", kind)
		}
	}
}

func TestTransferRequestAcceptAndCompleteRoundTrip(t *testing.T) {
	senderID := types.NewID()
	recipientID := types.NewID()

	srcDir := t.TempDir()
	dstDir := t.TempDir()

	srcPath := filepath.Join(srcDir, "notes.txt")
	content := []byte("the quick brown fox jumps over the lazy dog, repeated.\n")
	require.NoError(t, os.WriteFile(srcPath, content, 0o644))

	recipientBus := event.NewBus()
	recipientRegistry := peer.NewRegistry()
	recipientSvc := NewService(recipientID, recipientRegistry, recipientBus, dstDir)
	require.NoError(t, recipientSvc.startOn(fmt.Sprintf("127.0.0.1:%d", Port)))
	defer recipientSvc.Stop()

	senderBus := event.NewBus()
	senderRegistry := peer.NewRegistry()
	senderSvc := NewService(senderID, senderRegistry, senderBus, srcDir)

	tcpAddr := recipientSvc.ListenAddr().(*net.TCPAddr)
	recipientProfile := types.NewUserProfile("recipient", "Recipient")
	recipientProfile.UserID = recipientID
	senderRegistry.Upsert(peer.New(recipientProfile, types.NewNetworkAddress(tcpAddr.IP, tcpAddr.Port)))

	transferID, err := senderSvc.SendFile(recipientID, srcPath)
	require.NoError(t, err)

	requested := waitForKind(t, recipientBus, event.KindFileTransferRequested, 2*time.Second)
	require.Equal(t, "notes.txt", requested.FileTransferRequested.FileName)

	require.NoError(t, recipientSvc.AcceptTransfer(transferID))
	waitForKind(t, recipientBus, event.KindFileTransferAccepted, 2*time.Second)

	require.NoError(t, senderSvc.StartSending(transferID, srcPath))

	waitForKind(t, recipientBus, event.KindFileTransferCompleted, 2*time.Second)

	gotContent, err := os.ReadFile(filepath.Join(dstDir, "notes.txt"))
	require.NoError(t, err)
	require.Equal(t, content, gotContent)
}

func TestReceiveFileFailsOnHashMismatch(t *testing.T) {
	recipientID := types.NewID()
	dstDir := t.TempDir()
	bus := event.NewBus()
	registry := peer.NewRegistry()
	svc := NewService(recipientID, registry, bus, dstDir)
	require.NoError(t, svc.startOn("127.0.0.1:0"))
	defer svc.Stop()

	tcpAddr := svc.ListenAddr().(*net.TCPAddr)

	transferID := types.NewID()
	senderID := types.NewID()

	reqConn, err := net.Dial("tcp", tcpAddr.String())
	require.NoError(t, err)
	req := NewTransferRequest(transferID, senderID, "payload.bin", 4, "0000000000000000000000000000000000000000000000000000000000000000")
	require.NoError(t, sendTransferMessage(reqConn, req))
	reqConn.Close()

	waitForKind(t, bus, event.KindFileTransferRequested, 2*time.Second)
	require.NoError(t, svc.AcceptTransfer(transferID))
	waitForKind(t, bus, event.KindFileTransferAccepted, 2*time.Second)

	dataConn, err := net.Dial("tcp", tcpAddr.String())
	require.NoError(t, err)
	require.NoError(t, sendTransferMessage(dataConn, NewStartTransfer(transferID)))
	require.NoError(t, sendTransferMessage(dataConn, NewDataChunk(transferID, 0, []byte("oops"))))
	require.NoError(t, sendTransferMessage(dataConn, NewTransferComplete(transferID)))
	dataConn.Close()

	failed := waitForKind(t, bus, event.KindFileTransferFailed, 2*time.Second)
	require.Contains(t, failed.FileTransferFailed.Error, "hash mismatch")
}
