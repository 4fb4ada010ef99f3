package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/spf13/cobra"

	"lanchat/internal/event"
	"lanchat/internal/logging"
	"lanchat/internal/node"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		username    string
		displayName string
		tcpPort     int
		downloadDir string
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "lanchat-node",
		Short: "Run a LAN chat node: discovery, messaging, and file transfer",
		RunE: func(cmd *cobra.Command, args []string) error {
			if debug {
				logging.SetLevelDebug()
			} else {
				logging.SetLevelInfo()
			}
			if displayName == "" {
				displayName = username
			}
			return run(username, displayName, tcpPort, downloadDir)
		},
	}

	defaultDownloadDir, _ := os.UserHomeDir()
	if defaultDownloadDir != "" {
		defaultDownloadDir = filepath.Join(defaultDownloadDir, "Downloads")
	}

	flags := cmd.Flags()
	flags.StringVarP(&username, "username", "u", defaultUsername(), "username to announce on the network")
	flags.StringVarP(&displayName, "display-name", "d", "", "display name to announce (defaults to username)")
	flags.IntVarP(&tcpPort, "port", "p", 0, "TCP port for messaging (0 picks the protocol's fixed port)")
	flags.StringVar(&downloadDir, "download-dir", defaultDownloadDir, "directory accepted file transfers are written to")
	flags.BoolVar(&debug, "debug", false, "enable debug-level logging")

	return cmd
}

func run(username, displayName string, tcpPort int, downloadDir string) error {
	if downloadDir == "" {
		downloadDir = "."
	}
	if err := os.MkdirAll(downloadDir, 0o755); err != nil {
		return fmt.Errorf("preparing download directory: %w", err)
	}

	n, err := node.New(node.Config{
		Username:    username,
		DisplayName: displayName,
		TCPPort:     tcpPort,
		DownloadDir: downloadDir,
	})
	if err != nil {
		return fmt.Errorf("initializing node: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := n.Start(ctx); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	defer n.Stop()

	fmt.Printf("lanchat node running as %q (%s)\n", username, n.Profile.UserID)
	fmt.Println("press Ctrl+C to exit")

	go logEvents(n.Bus)

	<-ctx.Done()
	fmt.Println("shutting down")
	return n.Stop()
}

// logEvents prints a one-line summary of every event crossing the bus,
// standing in for whatever external shell would otherwise subscribe to it.
func logEvents(bus *event.Bus) {
	for ev := range bus.Events() {
		switch ev.Kind {
		case event.KindPeerDiscovered:
			fmt.Printf("peer discovered: %s (%s)\n", ev.Peer.Profile.Username, ev.Peer.Address)
		case event.KindPeerConnected:
			fmt.Printf("peer connected: %s\n", ev.Peer.Profile.Username)
		case event.KindPeerDisconnected:
			fmt.Printf("peer disconnected: %s\n", ev.PeerID)
		case event.KindMessageReceived:
			fmt.Printf("[%s] %s\n", ev.Message.SenderID, ev.Message.Content)
		case event.KindFileTransferRequested:
			fmt.Printf("incoming file %q (%d bytes) from %s\n",
				ev.FileTransferRequested.FileName, ev.FileTransferRequested.FileSize, ev.FileTransferRequested.From)
		case event.KindFileTransferCompleted:
			fmt.Printf("transfer %s complete\n", ev.FileTransferCompleted.TransferID)
		case event.KindFileTransferFailed:
			fmt.Printf("transfer %s failed: %s\n", ev.FileTransferFailed.TransferID, ev.FileTransferFailed.Error)
		case event.KindError:
			fmt.Printf("error: %s\n", ev.Error)
		}
	}
}

func defaultUsername() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	if u := os.Getenv("USERNAME"); u != "" {
		return u
	}
	if host, err := os.Hostname(); err == nil {
		return host
	}
	return fmt.Sprintf("user%d", os.Getpid()%1000)
}
