/*
Copyright © 2025 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/seednode-labs/dicee/internal/config"
	"github.com/seednode-labs/dicee/internal/httpserver"
	"github.com/seednode-labs/dicee/internal/identity"
	"github.com/seednode-labs/dicee/internal/lobby"
	"github.com/seednode-labs/dicee/internal/room"
	"github.com/seednode-labs/dicee/internal/store"
)

const releaseVersion = "0.3.0"

const alarmPollInterval = time.Second

func main() {
	log.SetFlags(0)

	cfg := &config.Config{}
	cmd := config.NewCommand(cfg, releaseVersion, func(cmd *cobra.Command, args []string) error {
		return run(cmd.Context(), cfg)
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cobra.CheckErr(cmd.ExecuteContext(ctx))
}

func newVerifier(cfg *config.Config) identity.Verifier {
	if cfg.JWKSURL != "" {
		return identity.NewJWKSVerifier(cfg.JWKSURL)
	}
	return identity.NewHMACVerifier([]byte(cfg.JWTSecret), cfg.JWTIssuer)
}

func run(ctx context.Context, cfg *config.Config) error {
	verifier := newVerifier(cfg)

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	defer client.Close()

	s := store.NewRedisStore(client)

	roomCfg := room.Config{
		TurnTimeout:      cfg.TurnTimeout,
		ReconnectWindow:  cfg.ReconnectWindow,
		JoinRequestTTL:   cfg.JoinRequestTTL,
		GameStartDelay:   cfg.GameStartDelay,
		RoomCleanupAfter: cfg.RoomCleanupAfter,
		ChatHistoryCap:   cfg.ChatHistoryCap,
	}

	rooms := room.NewManager(s, roomCfg, nil)
	lob := lobby.New(lobby.NewManagerBroker(rooms))
	rooms.SetListener(lob)
	lob.Start(ctx)

	go store.SweepAlarms(ctx, s, alarmPollInterval, func(ctx context.Context, code string, _ store.AlarmDescriptor) {
		rooms.Resume(ctx, code).FireAlarm()
	})

	srv := httpserver.NewServer(cfg, releaseVersion, rooms, lob, verifier)

	return srv.Serve(ctx)
}
