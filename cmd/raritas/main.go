package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/inj-ninja/raritas/internal/bot"
	"github.com/inj-ninja/raritas/internal/config"
	"github.com/inj-ninja/raritas/internal/explorer"
	"github.com/inj-ninja/raritas/internal/http_api"
	"github.com/inj-ninja/raritas/internal/media"
	"github.com/inj-ninja/raritas/internal/metadata"
	"github.com/inj-ninja/raritas/internal/models"
	"github.com/inj-ninja/raritas/internal/raritas"
	"github.com/inj-ninja/raritas/internal/repository"
	"github.com/inj-ninja/raritas/pkg/logger"
)

func main() {
	app := &cli.App{
		Name:  "raritas",
		Usage: "Raritas tracks an NFT collection and scores token rarity from trait frequencies",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "contract-address", Aliases: []string{"c"}, Usage: "NFT collection contract address"},
			&cli.StringFlag{Name: "explorer-url", Aliases: []string{"e"}, Usage: "Explorer API base URL"},
			&cli.StringFlag{Name: "ipfs-gateway", Aliases: []string{"g"}, Usage: "IPFS gateway prefix"},
			&cli.StringFlag{Name: "data-dir", Aliases: []string{"o"}, Usage: "Data directory for the file store"},
			&cli.StringFlag{Name: "store-backend", Aliases: []string{"S"}, Usage: "Store backend (file or postgres)"},
			&cli.StringFlag{Name: "postgres-user", Aliases: []string{"u"}, Usage: "Postgres user"},
			&cli.StringFlag{Name: "postgres-password", Aliases: []string{"p"}, Usage: "Postgres password"},
			&cli.StringFlag{Name: "postgres-host", Aliases: []string{"t"}, Usage: "Postgres host"},
			&cli.IntFlag{Name: "postgres-port", Aliases: []string{"P"}, Usage: "Postgres port"},
			&cli.StringFlag{Name: "postgres-db", Aliases: []string{"d"}, Usage: "Postgres database name"},
			&cli.BoolFlag{Name: "development", Aliases: []string{"D"}, Usage: "Development mode"},
		},
		Commands: []*cli.Command{
			{
				Name:   "crawl",
				Usage:  "Crawl mint transactions, resolve metadata and compute the rarity table",
				Action: runCrawl,
			},
			{
				Name:   "rank",
				Usage:  "Recompute the rarity table from the persisted metadata",
				Action: runRank,
			},
			{
				Name:   "media",
				Usage:  "Download every token's media into the media directory",
				Action: runMedia,
			},
			{
				Name:   "bot",
				Usage:  "Run the Telegram rarity bot against the persisted table",
				Action: runBot,
			},
			{
				Name:   "serve",
				Usage:  "Serve the rarity lookup HTTP API",
				Action: runServe,
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}

// setup loads the configuration, applies flag overrides and wires the
// application components.
func setup(c *cli.Context) (*raritas.Raritas, *config.Config, *logger.Logger, error) {
	cfg := config.LoadConfigUnchecked()

	// Override with flags if set
	if c.IsSet("contract-address") {
		cfg.ContractAddress = c.String("contract-address")
	}
	if c.IsSet("explorer-url") {
		cfg.ExplorerBaseURL = c.String("explorer-url")
	}
	if c.IsSet("ipfs-gateway") {
		cfg.IPFSGateway = c.String("ipfs-gateway")
	}
	if c.IsSet("data-dir") {
		cfg.DataDir = c.String("data-dir")
	}
	if c.IsSet("store-backend") {
		cfg.StoreBackend = c.String("store-backend")
	}
	if c.IsSet("postgres-user") {
		cfg.PostgresUser = c.String("postgres-user")
	}
	if c.IsSet("postgres-password") {
		cfg.PostgresPassword = c.String("postgres-password")
	}
	if c.IsSet("postgres-host") {
		cfg.PostgresHost = c.String("postgres-host")
	}
	if c.IsSet("postgres-port") {
		cfg.PostgresPort = c.Int("postgres-port")
	}
	if c.IsSet("postgres-db") {
		cfg.PostgresDB = c.String("postgres-db")
	}
	if c.IsSet("development") {
		cfg.Development = c.Bool("development")
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %v", err)
	}

	// Initialize logger
	l, err := logger.NewLogger(cfg.Development)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize logger: %v", err)
	}

	// Initialize store
	var store models.Store
	switch cfg.StoreBackend {
	case config.StoreBackendPostgres:
		store, err = repository.NewPostgresStore(cfg.PostgresUser, cfg.PostgresPassword, cfg.PostgresDB, cfg.PostgresHost, cfg.PostgresPort, l)
	default:
		store, err = repository.NewFileStore(cfg.DataDir, cfg.TraitNames, l)
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize store: %v", err)
	}

	explorerClient := explorer.NewClient(cfg.ExplorerBaseURL, cfg.ContractAddress, cfg.FetchWorkers, cfg.HTTPTimeout, l)
	resolver := metadata.NewResolver(cfg.IPFSGateway, cfg.ResolveBatchSize, cfg.ResolveBatchPause, cfg.HTTPTimeout, l)
	mediaFetcher, err := media.NewFetcher(cfg.MediaDir, cfg.FetchWorkers, cfg.HTTPTimeout, l)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to initialize media fetcher: %v", err)
	}

	app := raritas.NewRaritas(store, explorerClient, resolver, mediaFetcher, l, cfg)
	return app, cfg, l, nil
}

func runCrawl(c *cli.Context) error {
	app, _, _, err := setup(c)
	if err != nil {
		return err
	}
	return app.Crawl(signalContext())
}

func runRank(c *cli.Context) error {
	app, _, _, err := setup(c)
	if err != nil {
		return err
	}
	return app.Rank(signalContext())
}

func runMedia(c *cli.Context) error {
	app, _, _, err := setup(c)
	if err != nil {
		return err
	}
	return app.FetchMedia(signalContext())
}

func runBot(c *cli.Context) error {
	app, cfg, l, err := setup(c)
	if err != nil {
		return err
	}
	if cfg.TelegramBotToken == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is required for the bot command")
	}

	ctx := signalContext()
	table, err := app.LoadTable(ctx)
	if err != nil {
		return err
	}
	l.Info("Loaded rarity table ", "rows ", table.Len())

	rarityBot, err := bot.NewRarityBot(cfg.TelegramBotToken, table, cfg.LeaderboardSize, cfg.OperatorChatID, l)
	if err != nil {
		return err
	}
	rarityBot.Start(ctx)
	return nil
}

func runServe(c *cli.Context) error {
	app, cfg, l, err := setup(c)
	if err != nil {
		return err
	}

	ctx := signalContext()
	table, err := app.LoadTable(ctx)
	if err != nil {
		return err
	}
	l.Info("Loaded rarity table ", "rows ", table.Len())

	server := http_api.NewHTTPServer(table, cfg.APIPort, cfg.LeaderboardSize, l)
	go server.Start()

	<-ctx.Done()
	return server.Shutdown()
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext() context.Context {
	ctx, _ := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	return ctx
}
