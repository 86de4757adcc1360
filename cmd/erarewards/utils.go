package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	cli "gopkg.in/urfave/cli.v1"

	"github.com/eigerco/erarewards/internal/bridge"
	"github.com/eigerco/erarewards/internal/config"
	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/host"
	"github.com/eigerco/erarewards/internal/mint"
	"github.com/eigerco/erarewards/internal/rewards"
	"github.com/eigerco/erarewards/internal/store"
	"github.com/eigerco/erarewards/pkg/db"
	"github.com/eigerco/erarewards/pkg/db/leveldb"
	"github.com/eigerco/erarewards/pkg/db/pebble"
	"github.com/eigerco/erarewards/pkg/log"
	"github.com/eigerco/erarewards/pkg/metrics"
	"github.com/eigerco/erarewards/pkg/relay"
)

const relayCertValidity = 24 * time.Hour

func initLogger(ctx *cli.Context) error {
	level, err := log.ParseLogLevel(ctx.String(logLevelFlag.Name))
	if err != nil {
		return fmt.Errorf("parse --%s: %w", logLevelFlag.Name, err)
	}
	typ, err := log.ParseLoggerType(ctx.String(logFormatFlag.Name))
	if err != nil {
		return fmt.Errorf("parse --%s: %w", logFormatFlag.Name, err)
	}
	log.Init(log.Options{LogLevel: level, Type: typ, Output: os.Stderr})
	return nil
}

// loadConfig reads the configuration file, when given, and applies the
// command line overrides.
func loadConfig(ctx *cli.Context) (config.Config, error) {
	cfg := config.Default()
	if path := ctx.String(configFlag.Name); path != "" {
		var err error
		if cfg, err = config.Load(path); err != nil {
			return cfg, err
		}
	}
	if dest := ctx.String(destinationFlag.Name); dest != "" {
		if !common.IsHexAddress(dest) {
			return cfg, fmt.Errorf("%w: invalid --%s %q", config.ErrInvalidConfig, destinationFlag.Name, dest)
		}
		cfg.DestinationContract = common.HexToAddress(dest)
	}
	if treasury := ctx.String(treasuryFlag.Name); treasury != "" {
		account, err := crypto.ParseAccountID(treasury)
		if err != nil {
			return cfg, fmt.Errorf("%w: --%s: %v", config.ErrInvalidConfig, treasuryFlag.Name, err)
		}
		cfg.TreasuryAccount = account
	}
	return cfg, cfg.Validate()
}

func openStore(ctx *cli.Context) (db.KVStore, error) {
	dir := ctx.String(dataDirFlag.Name)
	backend := ctx.String(dbFlag.Name)
	switch backend {
	case "pebble":
		if dir == "" {
			return pebble.NewMemKVStore()
		}
		return pebble.NewKVStore(dir)
	case "leveldb":
		if dir == "" {
			return leveldb.NewMemKVStore()
		}
		return leveldb.NewKVStore(dir)
	default:
		return nil, fmt.Errorf("unknown --%s backend %q", dbFlag.Name, backend)
	}
}

// openExistingStore is openStore for commands that only read a database
// written by an earlier run.
func openExistingStore(ctx *cli.Context) (db.KVStore, error) {
	dir := ctx.String(dataDirFlag.Name)
	if dir == "" {
		return nil, fmt.Errorf("--%s is required", dataDirFlag.Name)
	}
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("open data directory: %w", err)
	}
	return openStore(ctx)
}

func parseIndices(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []int
	for _, part := range strings.Split(s, ",") {
		i, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("parse validator index %q: %w", part, err)
		}
		out = append(out, i)
	}
	return out, nil
}

func parseNonces(s string) ([]uint64, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var out []uint64
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.ParseUint(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse message nonce %q: %w", part, err)
		}
		out = append(out, n)
	}
	return out, nil
}

// acknowledgeMessages removes delivered messages from the outbound queue.
// Nothing is removed unless every nonce names a queued message.
func acknowledgeMessages(outbound *store.Outbound, nonces []uint64) error {
	if len(nonces) == 0 {
		return nil
	}
	pending, err := outbound.Pending()
	if err != nil {
		return err
	}
	queued := make(map[uint64]struct{}, len(pending))
	for _, m := range pending {
		queued[m.Nonce] = struct{}{}
	}
	for _, nonce := range nonces {
		if _, ok := queued[nonce]; !ok {
			return fmt.Errorf("no queued message with nonce %d", nonce)
		}
	}
	for _, nonce := range nonces {
		if err := outbound.Remove(nonce); err != nil {
			return fmt.Errorf("remove message %d: %w", nonce, err)
		}
		log.Relay.Info().Uint64("nonce", nonce).Msg("outbound message acknowledged")
	}
	return nil
}

func simulatorConfig(ctx *cli.Context) (host.Config, error) {
	cfg := host.DefaultConfig()
	cfg.Validators = ctx.Int(validatorsFlag.Name)
	cfg.Whitelisted = ctx.Int(whitelistedFlag.Name)
	cfg.SessionsPerEra = uint32(ctx.Uint(sessionsFlag.Name))
	cfg.BlocksPerSession = uint32(ctx.Uint(blocksPerSessionFlag.Name))

	var err error
	if cfg.Offline, err = parseIndices(ctx.String(offlineFlag.Name)); err != nil {
		return cfg, err
	}
	if cfg.Idle, err = parseIndices(ctx.String(idleFlag.Name)); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// node is a rewards engine wired to a simulated host and its storage.
type node struct {
	kv       db.KVStore
	sim      *host.Simulator
	engine   *rewards.Engine
	ledger   *mint.Ledger
	events   *store.Events
	outbound *store.Outbound
}

func newNode(kv db.KVStore, cfg config.Config, simCfg host.Config, sender bridge.Sender) (*node, error) {
	sim, err := host.New(simCfg)
	if err != nil {
		return nil, err
	}
	n := &node{
		kv:       kv,
		sim:      sim,
		ledger:   mint.NewLedger(store.NewBalances(kv)),
		events:   store.NewEvents(kv),
		outbound: store.NewOutbound(kv),
	}
	if sender == nil {
		sender = bridge.NewQueueSender(n.outbound)
	}
	n.engine, err = rewards.NewEngine(cfg, store.NewRewards(kv), rewards.Dependencies{
		Eras:       sim,
		Validators: sim,
		Liveness:   sim,
		Whitelist:  sim,
		Minter:     n.ledger,
		Events:     rewards.NewStoreEventSink(n.events),
		Sender:     bridge.NewDispatcher(cfg.DestinationContract, cfg.GasLimit, sender),
		Weights:    &rewards.MeteredWeightMeter{},
	})
	if err != nil {
		return nil, err
	}
	sim.Attach(n.engine)
	return n, nil
}

// relaySender returns a sender delivering through the relayer at addr.
func relaySender(addr string) (bridge.Sender, error) {
	cert, err := relay.GenerateCertificate(relayCertValidity)
	if err != nil {
		return nil, err
	}
	client, err := relay.NewClient(relay.ClientConfig{Addr: addr, TLSCert: cert})
	if err != nil {
		return nil, err
	}
	return bridge.NewRelaySender(client, bridge.DefaultRelayTimeout), nil
}

// startMetricsServer serves the prometheus registry when --metrics is set.
// The returned stop function is never nil.
func startMetricsServer(ctx *cli.Context) func() {
	addr := ctx.String(metricsAddrFlag.Name)
	if addr == "" {
		return func() {}
	}
	metrics.InitializePrometheusMetrics()

	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.HTTPHandler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Root.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	log.Root.Info().Str("addr", addr).Msg("serving metrics")

	return func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Root.Warn().Err(err).Msg("metrics server shutdown")
		}
	}
}

func closeStore(kv db.KVStore) {
	if err := kv.Close(); err != nil {
		log.Root.Error().Err(err).Msg("failed to close database")
	}
}
