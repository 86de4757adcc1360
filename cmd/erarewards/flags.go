package main

import (
	cli "gopkg.in/urfave/cli.v1"
)

var (
	configFlag = cli.StringFlag{
		Name:  "config",
		Usage: "path to a .toml or .yaml engine configuration file",
	}
	dataDirFlag = cli.StringFlag{
		Name:  "datadir",
		Usage: "directory for the rewards database; in memory when empty",
	}
	dbFlag = cli.StringFlag{
		Name:  "db",
		Value: "pebble",
		Usage: "database backend (pebble|leveldb)",
	}
	logLevelFlag = cli.StringFlag{
		Name:  "log.level",
		Value: "info",
		Usage: "log level (trace|debug|info|warn|error)",
	}
	logFormatFlag = cli.StringFlag{
		Name:  "log.format",
		Value: "text",
		Usage: "log format (text|json)",
	}
	metricsAddrFlag = cli.StringFlag{
		Name:  "metrics",
		Usage: "serve prometheus metrics on this address, e.g. localhost:9100",
	}
	destinationFlag = cli.StringFlag{
		Name:  "destination",
		Usage: "destination rewards contract address, overrides the configuration",
	}
	treasuryFlag = cli.StringFlag{
		Name:  "treasury",
		Usage: "treasury account receiving era inflation, overrides the configuration",
	}

	erasFlag = cli.IntFlag{
		Name:  "eras",
		Value: 1,
		Usage: "number of eras to simulate",
	}
	sessionsFlag = cli.UintFlag{
		Name:  "sessions",
		Value: 6,
		Usage: "sessions per era",
	}
	blocksPerSessionFlag = cli.UintFlag{
		Name:  "blocks-per-session",
		Value: 100,
		Usage: "blocks produced per session",
	}
	validatorsFlag = cli.IntFlag{
		Name:  "validators",
		Value: 4,
		Usage: "size of the simulated validator set",
	}
	whitelistedFlag = cli.IntFlag{
		Name:  "whitelisted",
		Usage: "number of whitelisted validators, taken from the start of the set",
	}
	offlineFlag = cli.StringFlag{
		Name:  "offline",
		Usage: "comma separated indices of validators that neither author nor send heartbeats",
	}
	idleFlag = cli.StringFlag{
		Name:  "idle",
		Usage: "comma separated indices of validators that only send heartbeats",
	}
	relayAddrFlag = cli.StringFlag{
		Name:  "relay",
		Usage: "deliver rewards messages to the relayer at this address instead of the local queue",
	}

	eraFlag = cli.UintFlag{
		Name:  "era",
		Usage: "era index",
	}
	validatorFlag = cli.StringFlag{
		Name:  "validator",
		Usage: "validator id as 0x prefixed hex",
	}
	ackFlag = cli.StringFlag{
		Name:  "ack",
		Usage: "comma separated nonces of delivered messages to remove from the queue",
	}
	listenAddrFlag = cli.StringFlag{
		Name:  "listen",
		Value: "localhost:9650",
		Usage: "relay listening address",
	}
)

var (
	commonFlags = []cli.Flag{
		configFlag,
		dataDirFlag,
		dbFlag,
		logLevelFlag,
		logFormatFlag,
	}
	simulationFlags = []cli.Flag{
		erasFlag,
		sessionsFlag,
		blocksPerSessionFlag,
		validatorsFlag,
		whitelistedFlag,
		offlineFlag,
		idleFlag,
		destinationFlag,
		treasuryFlag,
		relayAddrFlag,
		metricsAddrFlag,
	}
)
