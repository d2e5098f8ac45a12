package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"trashbin/config"
	"trashbin/core"
	"trashbin/native/tokens"
	"trashbin/observability"
	"trashbin/observability/logging"
	"trashbin/rpc"
	"trashbin/storage"
)

func main() {
	configFile := flag.String("config", "./config.toml", "Path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	var logger *slog.Logger
	if cfg.LogFile != "" {
		logger = logging.SetupRotating("trashbind", cfg.Environment, cfg.LogFile, cfg.LogMaxSizeMB, cfg.LogMaxBackups)
	} else {
		logger = logging.Setup("trashbind", cfg.Environment)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "chaindata"))
	if err != nil {
		logger.Error("Failed to open database", slog.Any("error", err))
		os.Exit(1)
	}
	defer db.Close()

	emitter := observability.NewCountingEmitter(observability.NewLogEmitter(logger))
	node, err := core.NewNode(db, cfg.OwnerAddress(), cfg.GovernanceAddress(), cfg.EngineAddress(), emitter, logger)
	if err != nil {
		logger.Error("Failed to initialise node", slog.Any("error", err))
		os.Exit(1)
	}

	bindCollections(node, cfg)
	logger.Info("collections bound",
		slog.String("unique", cfg.UniqueCollectionAddress().Hex()),
		slog.String("multi", cfg.MultiCollectionAddress().Hex()),
		slog.String("fungible", cfg.FungibleCollectionAddress().Hex()),
		slog.String("qualifying", cfg.QualifyingCollectionAddress().Hex()),
	)

	logger.Info("node ready",
		slog.String("owner", node.Owner().Hex()),
		slog.String("governance", node.Governance().Hex()),
		slog.Uint64("height", node.Height()),
		slog.Uint64("records", node.RecordCount()),
	)

	server := rpc.NewServer(node)
	logger.Info("starting JSON-RPC server", slog.String("addr", cfg.RPCAddress))
	if err := server.Start(cfg.RPCAddress); err != nil {
		logger.Error("RPC server stopped", slog.Any("error", err))
		os.Exit(1)
	}
}

type boundCollections struct {
	unique     *tokens.UniqueCollection
	multi      *tokens.MultiCollection
	fungible   *tokens.FungibleCollection
	qualifying *tokens.QualifyingCollection
}

// bindCollections registers the in-process token collections at their
// configured addresses and installs the qualifying collection that decides
// the buyer's discount tier. The qualifying collection is also registered as
// a unique collection so its assets can be escrowed like any other.
func bindCollections(node *core.Node, cfg *config.Config) *boundCollections {
	bound := &boundCollections{
		unique:     tokens.NewUniqueCollection(),
		multi:      tokens.NewMultiCollection(),
		fungible:   tokens.NewFungibleCollection(cfg.EngineAddress()),
		qualifying: tokens.NewQualifyingCollection(),
	}
	registry := node.Registry()
	registry.RegisterUnique(cfg.UniqueCollectionAddress(), bound.unique)
	registry.RegisterMulti(cfg.MultiCollectionAddress(), bound.multi)
	registry.RegisterFungible(cfg.FungibleCollectionAddress(), bound.fungible)
	registry.RegisterUnique(cfg.QualifyingCollectionAddress(), bound.qualifying)
	node.SetQualifyingCollection(bound.qualifying)
	return bound
}
