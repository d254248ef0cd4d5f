// Package board parses board command flags and starts the board server.
package board

import (
	"context"
	"flag"

	server "github.com/louisbranch/tabletop.space/internal/board/app"
	"github.com/louisbranch/tabletop.space/internal/board/content"
	entrypoint "github.com/louisbranch/tabletop.space/internal/platform/cmd"
)

// Config holds board command configuration.
type Config struct {
	Port int    `env:"TABLETOP_SPACE_BOARD_PORT" envDefault:"8080"`
	Addr string `env:"TABLETOP_SPACE_BOARD_ADDR"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.IntVar(&cfg.Port, "port", cfg.Port, "The board server port")
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The board server listen address (overrides -port)")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the board server.
func Run(ctx context.Context, cfg Config) error {
	if err := content.ValidateEmbedded(); err != nil {
		return err
	}
	return entrypoint.RunWithTelemetry(ctx, entrypoint.ServiceBoard, func(context.Context) error {
		if cfg.Addr != "" {
			return server.RunWithAddr(ctx, cfg.Addr)
		}
		return server.Run(ctx, cfg.Port)
	})
}
