package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"lanchat/internal/event"
	"lanchat/internal/node"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

func main() {
	var (
		username    string
		tcpPort     int
		downloadDir string
	)

	cmd := &cobra.Command{
		Use:   "chat-probe",
		Short: "Interactive line-mode client for exercising discovery, messaging, and transfer together",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(username, tcpPort, downloadDir)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "probe", "username to announce")
	cmd.Flags().IntVarP(&tcpPort, "port", "p", 0, "TCP port for messaging (0 picks the protocol's fixed port)")
	cmd.Flags().StringVar(&downloadDir, "download-dir", ".", "directory accepted file transfers are written to")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(username string, tcpPort int, downloadDir string) error {
	n, err := node.New(node.Config{Username: username, DisplayName: username, TCPPort: tcpPort, DownloadDir: downloadDir})
	if err != nil {
		return fmt.Errorf("creating node: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := n.Start(ctx); err != nil {
		return fmt.Errorf("starting node: %w", err)
	}
	defer n.Stop()

	fmt.Printf("probing as %q (%s)\n", username, n.Profile.UserID)
	fmt.Println("commands: peers | connect <index> | msg <index> <text> | send <index> <path> |")
	fmt.Println("          accept <transfer-id> | start <transfer-id> <path> |")
	fmt.Println("          status <online|away|busy|offline> | quit")
	fmt.Println("acceptance is not carried over the wire: the recipient runs 'accept' locally")
	fmt.Println("and tells the sender out of band, who then runs 'start' to stream the file.")

	go printEvents(n.Bus)

	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		select {
		case <-ctx.Done():
			return nil
		default:
		}
		handleLine(n, strings.TrimSpace(scanner.Text()))
	}
	return nil
}

func handleLine(n *node.Node, line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}

	switch fields[0] {
	case "peers":
		for i, p := range n.Peers() {
			fmt.Printf("  [%d] %s (%s) online=%v\n", i, p.Profile.Username, p.Address, p.IsOnline())
		}

	case "connect":
		peers := n.Peers()
		idx, ok := index(fields, peers)
		if !ok {
			return
		}
		if err := n.ConnectToPeer(peers[idx].Profile.UserID); err != nil {
			fmt.Printf("connect failed: %v\n", err)
		}

	case "msg":
		peers := n.Peers()
		idx, ok := index(fields, peers)
		if !ok || len(fields) < 3 {
			fmt.Println("usage: msg <index> <text...>")
			return
		}
		text := strings.Join(fields[2:], " ")
		if _, err := n.SendMessage(peers[idx].Profile.UserID, text); err != nil {
			fmt.Printf("send failed: %v\n", err)
		}

	case "send":
		peers := n.Peers()
		idx, ok := index(fields, peers)
		if !ok || len(fields) < 3 {
			fmt.Println("usage: send <index> <path>")
			return
		}
		transferID, err := n.SendFile(peers[idx].Profile.UserID, fields[2])
		if err != nil {
			fmt.Printf("transfer request failed: %v\n", err)
			return
		}
		fmt.Printf("requested transfer %s, waiting for acceptance\n", transferID)

	case "accept":
		if len(fields) < 2 {
			fmt.Println("usage: accept <transfer-id>")
			return
		}
		transferID, err := uuid.Parse(fields[1])
		if err != nil {
			fmt.Printf("invalid transfer id: %v\n", err)
			return
		}
		if err := n.AcceptTransfer(transferID); err != nil {
			fmt.Printf("accept failed: %v\n", err)
		}

	case "start":
		if len(fields) < 3 {
			fmt.Println("usage: start <transfer-id> <path>")
			return
		}
		transferID, err := uuid.Parse(fields[1])
		if err != nil {
			fmt.Printf("invalid transfer id: %v\n", err)
			return
		}
		if err := n.StartSending(transferID, fields[2]); err != nil {
			fmt.Printf("start failed: %v\n", err)
		}

	case "status":
		if len(fields) < 2 {
			fmt.Println("usage: status <online|away|busy|offline>")
			return
		}
		n.UpdateStatus(types.UserStatus(fields[1]))

	case "quit":
		os.Exit(0)

	default:
		fmt.Println("unknown command")
	}
}

func index(fields []string, peers []peer.Peer) (int, bool) {
	if len(fields) < 2 {
		fmt.Println("missing peer index")
		return 0, false
	}
	i, err := strconv.Atoi(fields[1])
	if err != nil || i < 0 || i >= len(peers) {
		fmt.Println("invalid peer index")
		return 0, false
	}
	return i, true
}

func printEvents(bus *event.Bus) {
	for ev := range bus.Events() {
		switch ev.Kind {
		case event.KindPeerDiscovered:
			fmt.Printf("\ndiscovered: %s\n", ev.Peer.Profile.Username)
		case event.KindPeerConnected:
			fmt.Printf("\nconnected: %s\n", ev.Peer.Profile.Username)
		case event.KindMessageReceived:
			fmt.Printf("\n[%s] %s\n", ev.Message.SenderID, ev.Message.Content)
		case event.KindFileTransferRequested:
			fmt.Printf("\nincoming file %q from %s\n", ev.FileTransferRequested.FileName, ev.FileTransferRequested.From)
		case event.KindFileTransferCompleted:
			fmt.Printf("\ntransfer %s complete\n", ev.FileTransferCompleted.TransferID)
		}
	}
}
