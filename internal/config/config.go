// Package config wires the server's command-line flags, environment
// variables, and defaults, in the same cobra/pflag/viper shape the
// teacher repo uses for its single "partybox" command.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds every runtime-tunable knob for the dicee server.
type Config struct {
	Bind   string
	Port   int
	Prefix string

	Profile bool
	Verbose bool
	Version bool

	TLSCert string
	TLSKey  string

	// Identity.
	JWTIssuer string
	JWTSecret string
	JWKSURL   string

	// Persistence.
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// Timing.
	TurnTimeout      time.Duration
	ReconnectWindow  time.Duration
	JoinRequestTTL   time.Duration
	GameStartDelay   time.Duration
	RoomCleanupAfter time.Duration

	ChatHistoryCap int
	MaxPendingJoin int
}

func (c *Config) Validate() error {
	if (c.TLSCert == "") != (c.TLSKey == "") {
		return errors.New("both --tls-cert and --tls-key must be provided together")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.Port)
	}
	if c.JWKSURL == "" && c.JWTSecret == "" {
		return errors.New("one of --jwks-url or --jwt-secret must be set")
	}
	if c.RedisAddr == "" {
		return errors.New("--redis-addr must be set")
	}
	return nil
}

func (c *Config) Scheme() string {
	if c.TLSCert != "" && c.TLSKey != "" {
		return "https"
	}
	return "http"
}

// NewCommand builds the root cobra command, binding every flag through
// viper with the DICEE_ environment prefix.
func NewCommand(cfg *Config, version string, run func(cmd *cobra.Command, args []string) error) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("DICEE")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "dicee",
		Short:         "A real-time multiplayer dice-scoring game server.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.Validate(); err != nil {
				return err
			}
			return run(cmd, args)
		},
	}

	fs := cmd.Flags()

	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.Bind, "bind", "b", "0.0.0.0", "address to bind to (env: DICEE_BIND)")
	fs.IntVarP(&cfg.Port, "port", "p", 8080, "port to listen on (env: DICEE_PORT)")
	fs.StringVar(&cfg.Prefix, "prefix", "", "path to prepend to all URLs, for use behind reverse proxy (env: DICEE_PREFIX)")
	fs.BoolVar(&cfg.Profile, "profile", false, "register net/http/pprof handlers (env: DICEE_PROFILE)")
	fs.BoolVarP(&cfg.Verbose, "verbose", "v", false, "display additional output (env: DICEE_VERBOSE)")
	fs.BoolVarP(&cfg.Version, "version", "V", false, "display version and exit (env: DICEE_VERSION)")
	fs.StringVar(&cfg.TLSCert, "tls-cert", "", "path to tls certificate (env: DICEE_TLS_CERT)")
	fs.StringVar(&cfg.TLSKey, "tls-key", "", "path to tls keyfile (env: DICEE_TLS_KEY)")

	fs.StringVar(&cfg.JWTIssuer, "jwt-issuer", "dicee", "expected issuer claim on bearer tokens verified with --jwt-secret; not checked for --jwks-url tokens (env: DICEE_JWT_ISSUER)")
	fs.StringVar(&cfg.JWTSecret, "jwt-secret", "", "shared HMAC secret for local/dev token verification (env: DICEE_JWT_SECRET)")
	fs.StringVar(&cfg.JWKSURL, "jwks-url", "", "JWKS endpoint for production token verification (env: DICEE_JWKS_URL)")

	fs.StringVar(&cfg.RedisAddr, "redis-addr", "127.0.0.1:6379", "address of the redis instance backing room persistence (env: DICEE_REDIS_ADDR)")
	fs.StringVar(&cfg.RedisPassword, "redis-password", "", "redis AUTH password (env: DICEE_REDIS_PASSWORD)")
	fs.IntVar(&cfg.RedisDB, "redis-db", 0, "redis logical database index (env: DICEE_REDIS_DB)")

	fs.DurationVar(&cfg.TurnTimeout, "turn-timeout", 60*time.Second, "time before an idle turn is auto-skipped (env: DICEE_TURN_TIMEOUT)")
	fs.DurationVar(&cfg.ReconnectWindow, "reconnect-window", 5*time.Minute, "time a disconnected seat is held open (env: DICEE_RECONNECT_WINDOW)")
	fs.DurationVar(&cfg.JoinRequestTTL, "join-request-ttl", 120*time.Second, "accepted but not applied; pending join requests expire after the fixed joinrequest.TTL of 2m (env: DICEE_JOIN_REQUEST_TTL)")
	fs.DurationVar(&cfg.GameStartDelay, "game-start-delay", 3*time.Second, "countdown before a started game begins (env: DICEE_GAME_START_DELAY)")
	fs.DurationVar(&cfg.RoomCleanupAfter, "room-cleanup-after", 30*time.Minute, "time an empty room is kept before cleanup (env: DICEE_ROOM_CLEANUP_AFTER)")

	fs.IntVar(&cfg.ChatHistoryCap, "chat-history-cap", 100, "maximum retained chat messages per room (env: DICEE_CHAT_HISTORY_CAP)")
	fs.IntVar(&cfg.MaxPendingJoin, "max-pending-join-requests", 20, "accepted but not applied; the per-room pending cap is the fixed joinrequest.MaxPendingRequestsPerRoom of 10 (env: DICEE_MAX_PENDING_JOIN_REQUESTS)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("dicee v{{.Version}}\n")

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true

	return cmd
}
