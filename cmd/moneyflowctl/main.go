// Command moneyflowctl runs maintenance tasks against the ledger store
// configured through the environment.
package main

import (
	"context"
	"log/slog"

	"github.com/alecthomas/kong"

	"moneyflow/internal/backend"
	"moneyflow/internal/cli"
	"moneyflow/internal/config"
)

// Globals defines global flags available to all commands.
type Globals struct {
	EnvFile  string `help:"Environment file to load before reading configuration." default:".env" type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"warn" env:"LOG_LEVEL"`
}

type Commands struct {
	Globals

	Seed      SeedCmd      `cmd:"" help:"Insert the default categories when none exist."`
	Verify    VerifyCmd    `cmd:"" help:"Report accounts whose balance drifted from their transactions."`
	Reconcile ReconcileCmd `cmd:"" help:"Recompute every account balance and repair drift. Stop the API first."`
	Invoice   InvoiceCmd   `cmd:"" help:"Print the invoice of a credit card account."`
	Migrate   MigrateCmd   `cmd:"" help:"Apply pending SQLite schema migrations."`
}

// env is what every command needs once flags are parsed.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
}

func (e env) open() *backend.Result {
	return cli.OpenBackend(e.ctx, e.logger, e.cfg)
}

func main() {
	var cmds Commands
	kctx := kong.Parse(&cmds,
		kong.Name("moneyflowctl"),
		kong.Description("Maintenance commands for the MoneyFlow ledger."),
		kong.UsageOnError(),
	)

	cli.LoadEnvFile(cmds.EnvFile)
	logger := cli.SetupLogger(cmds.LogLevel)
	cfg := cli.LoadAndValidateConfig(logger)

	err := kctx.Run(&cmds.Globals, env{ctx: context.Background(), cfg: cfg, logger: logger})
	kctx.FatalIfErrorf(err)
}
