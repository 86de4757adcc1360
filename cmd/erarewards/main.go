package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	cli "gopkg.in/urfave/cli.v1"

	"github.com/eigerco/erarewards/internal/bridge"
	"github.com/eigerco/erarewards/internal/crypto"
	"github.com/eigerco/erarewards/internal/host"
	"github.com/eigerco/erarewards/internal/rewards"
	"github.com/eigerco/erarewards/internal/store"
	"github.com/eigerco/erarewards/pkg/log"
	"github.com/eigerco/erarewards/pkg/relay"
)

var (
	version   = "0.1.0"
	gitCommit string
)

func fullVersion() string {
	if gitCommit == "" {
		return version + "-dev"
	}
	return version + "-" + gitCommit
}

func main() {
	app := cli.App{
		Version: fullVersion(),
		Name:    "erarewards",
		Usage:   "Validator performance rewards and inflation engine",
		Commands: []cli.Command{
			{
				Name:   "simulate",
				Usage:  "run eras over a simulated validator set and finalize their rewards",
				Flags:  append(append([]cli.Flag{}, commonFlags...), simulationFlags...),
				Action: simulateAction,
			},
			{
				Name:   "points",
				Usage:  "print the reward points ledger of an era, or the points of one validator",
				Flags:  append(append([]cli.Flag{}, commonFlags...), eraFlag, validatorFlag),
				Action: pointsAction,
			},
			{
				Name:   "proof",
				Usage:  "print the Merkle proof of a validator's points in an era as JSON",
				Flags:  append(append([]cli.Flag{}, commonFlags...), eraFlag, validatorFlag),
				Action: proofAction,
			},
			{
				Name:      "verify",
				Usage:     "verify a JSON Merkle proof produced by the proof command",
				ArgsUsage: "<proof.json>",
				Flags:     []cli.Flag{configFlag, logLevelFlag, logFormatFlag},
				Action:    verifyAction,
			},
			{
				Name:   "events",
				Usage:  "list deposited engine events",
				Flags:  commonFlags,
				Action: eventsAction,
			},
			{
				Name:   "outbound",
				Usage:  "list queued cross-chain messages, removing delivered ones given with --ack",
				Flags:  append(append([]cli.Flag{}, commonFlags...), ackFlag),
				Action: outboundAction,
			},
			{
				Name:   "relay",
				Usage:  "accept rewards messages over QUIC and queue them in the database",
				Flags:  append(append([]cli.Flag{}, commonFlags...), listenAddrFlag, metricsAddrFlag),
				Action: relayAction,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func simulateAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	simCfg, err := simulatorConfig(ctx)
	if err != nil {
		return err
	}

	kv, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	eras, err := store.NewRewards(kv).Eras()
	if err != nil {
		return err
	}
	if len(eras) > 0 {
		return fmt.Errorf("data directory already holds %d eras, simulate needs a fresh --%s", len(eras), dataDirFlag.Name)
	}

	var sender bridge.Sender
	if addr := ctx.String(relayAddrFlag.Name); addr != "" {
		if sender, err = relaySender(addr); err != nil {
			return err
		}
	}
	n, err := newNode(kv, cfg, simCfg, sender)
	if err != nil {
		return err
	}

	stopMetrics := startMetricsServer(ctx)
	defer stopMetrics()

	reports, err := n.sim.Run(ctx.Int(erasFlag.Name))
	for _, r := range reports {
		points, _, perr := n.engine.EraRewardPoints(r.Era)
		if perr != nil {
			return perr
		}
		total := "0"
		if points.Total != nil {
			total = points.Total.Dec()
		}
		fmt.Printf("era %-4d sessions %-3d blocks %-6d points %-10s validators %-4d %s\n",
			r.Era, r.Sessions, r.Blocks, total, len(points.Individual), r.Outcome)
	}
	if err != nil {
		return err
	}

	issuance, err := n.ledger.TotalIssuance()
	if err != nil {
		return err
	}
	fmt.Printf("total issuance %s\n", issuance.Dec())
	return nil
}

func pointsAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	kv, err := openExistingStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	n, err := newNode(kv, cfg, host.DefaultConfig(), nil)
	if err != nil {
		return err
	}
	era := rewards.EraIndex(ctx.Uint(eraFlag.Name))
	points, found, err := n.engine.EraRewardPoints(era)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("era %d has no reward points", era)
	}

	if id := ctx.String(validatorFlag.Name); id != "" {
		validator, err := crypto.ParseValidatorID(id)
		if err != nil {
			return fmt.Errorf("parse --%s: %w", validatorFlag.Name, err)
		}
		p, ok := points.Points(validator)
		if !ok {
			return fmt.Errorf("validator %s has no points in era %d", validator, era)
		}
		fmt.Printf("%s %d\n", validator, p)
		return nil
	}

	fmt.Printf("era %d total %s\n", era, points.Total.Dec())
	for _, p := range points.Individual {
		fmt.Printf("%s %d\n", p.Validator, p.Points)
	}
	return nil
}

func proofAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}
	validator, err := crypto.ParseValidatorID(ctx.String(validatorFlag.Name))
	if err != nil {
		return fmt.Errorf("parse --%s: %w", validatorFlag.Name, err)
	}

	kv, err := openExistingStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	n, err := newNode(kv, cfg, host.DefaultConfig(), nil)
	if err != nil {
		return err
	}
	era := rewards.EraIndex(ctx.Uint(eraFlag.Name))
	proof, found, err := n.engine.GenerateRewardsMerkleProof(validator, era)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("validator %s has no points in era %d", validator, era)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(proof)
}

func verifyAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.NArg() != 1 {
		return errors.New("verify expects exactly one proof file")
	}
	cfg, err := loadConfig(ctx)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(ctx.Args().First())
	if err != nil {
		return err
	}
	var proof rewards.MerkleProof
	if err := json.Unmarshal(data, &proof); err != nil {
		return fmt.Errorf("decode proof: %w", err)
	}

	if !rewards.VerifyRewardsMerkleProof(proof, cfg.HashFunc()) {
		return fmt.Errorf("proof of leaf %s does not match root %s", proof.Leaf, proof.Root)
	}
	fmt.Printf("valid: leaf %d of %d under root %s\n", proof.LeafIndex, proof.NumberOfLeaves, proof.Root)
	return nil
}

func eventsAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	kv, err := openExistingStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	records, err := store.NewEvents(kv).List()
	if err != nil {
		return err
	}
	for _, record := range records {
		ev, err := rewards.DecodeEvent(record)
		if err != nil {
			return err
		}
		switch ev := ev.(type) {
		case rewards.RewardsMessageSent:
			fmt.Printf("%d %s era=%d id=%s root=%s points=%s inflation=%s\n",
				record.Seq, ev.EventName(), ev.EraIndex, ev.MessageID, ev.RewardsMerkleRoot,
				ev.TotalPoints.Dec(), ev.InflationAmount.Dec())
		default:
			fmt.Printf("%d %s\n", record.Seq, ev.EventName())
		}
	}
	return nil
}

func outboundAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	kv, err := openExistingStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	outbound := store.NewOutbound(kv)
	nonces, err := parseNonces(ctx.String(ackFlag.Name))
	if err != nil {
		return err
	}
	if err := acknowledgeMessages(outbound, nonces); err != nil {
		return err
	}

	pending, err := outbound.Pending()
	if err != nil {
		return err
	}
	for _, m := range pending {
		msg, err := bridge.DecodeMessage(m.Data)
		if err != nil {
			return err
		}
		root, err := bridge.DecodeSubmitRewards(msg.Payload)
		if err != nil {
			return err
		}
		fmt.Printf("%d id=%s destination=%s gas=%d root=%s\n",
			m.Nonce, m.ID, msg.Destination.Hex(), msg.GasLimit, root)
	}
	return nil
}

func relayAction(ctx *cli.Context) error {
	if err := initLogger(ctx); err != nil {
		return err
	}
	if ctx.String(dataDirFlag.Name) == "" {
		return fmt.Errorf("--%s is required", dataDirFlag.Name)
	}
	kv, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore(kv)

	cert, err := relay.GenerateCertificate(relayCertValidity)
	if err != nil {
		return err
	}
	srv, err := relay.NewServer(relay.ServerConfig{
		ListenAddr: ctx.String(listenAddrFlag.Name),
		TLSCert:    cert,
		Handler:    bridge.NewRelayHandler(bridge.NewQueueSender(store.NewOutbound(kv))),
	})
	if err != nil {
		return err
	}
	if err := srv.Start(); err != nil {
		return err
	}
	defer func() {
		if err := srv.Stop(); err != nil {
			log.Relay.Warn().Err(err).Msg("relay shutdown")
		}
	}()

	stopMetrics := startMetricsServer(ctx)
	defer stopMetrics()

	log.Relay.Info().Stringer("addr", srv.Addr()).Msg("relay listening")

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()
	log.Relay.Info().Msg("relay stopping")
	return nil
}
