package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/spf13/cobra"

	"lanchat/internal/cryptoengine"
	"lanchat/internal/discovery"
	"lanchat/internal/event"
	"lanchat/internal/messaging"
	"lanchat/internal/peer"
	"lanchat/internal/types"
)

func main() {
	var (
		username string
		tcpPort  int
	)

	cmd := &cobra.Command{
		Use:   "discovery-probe",
		Short: "Announce on the multicast group and print every peer seen",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(username, tcpPort)
		},
	}
	cmd.Flags().StringVarP(&username, "username", "u", "probe", "username to announce")
	cmd.Flags().IntVarP(&tcpPort, "port", "p", messaging.Port, "TCP port to advertise (not actually opened by this probe)")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(username string, tcpPort int) error {
	keypair, err := cryptoengine.Generate()
	if err != nil {
		return err
	}
	pubPEM, err := keypair.ExportPublicKeyPEM()
	if err != nil {
		return err
	}

	profile := types.NewUserProfile(username, username)
	registry := peer.NewRegistry()
	bus := event.NewBus()

	svc, err := discovery.New(profile, tcpPort, pubPEM, registry, bus)
	if err != nil {
		return fmt.Errorf("creating discovery service: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting discovery service: %w", err)
	}
	defer svc.Stop()

	fmt.Printf("announcing as %q (%s), press Ctrl+C to quit\n", username, profile.UserID)

	go func() {
		for ev := range bus.Events() {
			switch ev.Kind {
			case event.KindPeerDiscovered:
				fmt.Printf("discovered: %s at %s\n", ev.Peer.Profile.Username, ev.Peer.Address)
			case event.KindPeerDisconnected:
				fmt.Printf("left: %s\n", ev.PeerID)
			}
		}
	}()

	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			fmt.Println("shutting down")
			return nil
		case <-ticker.C:
			online := registry.Online()
			fmt.Printf("status: %d peers online\n", len(online))
			for _, p := range online {
				fmt.Printf("  - %s (%s)\n", p.Profile.Username, p.Address)
			}
		}
	}
}
