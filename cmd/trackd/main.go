package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/natefinch/lumberjack"
	"github.com/rs/zerolog"

	"github.com/typhfeng/projecttrack"
	"github.com/typhfeng/projecttrack/api"
	"github.com/typhfeng/projecttrack/config"
	"github.com/typhfeng/projecttrack/gitcmd"
	"github.com/typhfeng/projecttrack/github"
	"github.com/typhfeng/projecttrack/metrics"
	"github.com/typhfeng/projecttrack/notify"
	"github.com/typhfeng/projecttrack/scanmanager"
)

var (
	version         = "unknown"
	configFlag      = flag.String("config", "config.yml", "config file location")
	pprofFlag       = flag.Bool("pprof", false, "Enable listen pprof on :6060")
	printConfigFlag = flag.Bool("default-config", false, "Print default config to stdout and exit")
	onceFlag        = flag.Bool("once", false, "Run one scan, print the dashboard JSON and exit")
)

func main() {
	flag.Parse()

	if *printConfigFlag {
		config.PrintDefaultConfig()
		os.Exit(0)
	}

	conf, err := config.LoadConfig(*configFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open config %s: %v\n", *configFlag, err)
		os.Exit(1)
	}

	logger := createLogger(conf.Common)
	metricsRepo := metrics.StartMetricsRepo(conf.Metrics, logger)

	workers := runtime.NumCPU() - 1
	if workers < 1 {
		workers = 1
	}
	if conf.Scan.Workers > 0 {
		workers = conf.Scan.Workers
	}
	conf.Scan.Workers = workers

	gitClient := &gitcmd.Client{
		Timeout: conf.Scan.CommandTimeout,
		Log:     logger,
	}

	snapshotChannel := make(chan *projecttrack.Dashboard, 1)

	scanManager := &scanmanager.ScanManager{
		ConfigPath:      *configFlag,
		VCS:             gitClient,
		Log:             logger,
		Metrics:         metrics.NewScanMetrics(metricsRepo),
		SnapshotChannel: snapshotChannel,
	}

	if *onceFlag {
		runOnce(scanManager, logger)
		return
	}

	logger.Debug().Str("service", "snapshot router").Msg("start")
	snapshotRouter := &notify.SnapshotRouter{
		SnapshotChannel: snapshotChannel,
		Config:          conf,
		Log:             logger,
	}
	if err := snapshotRouter.Start(); err != nil {
		logger.Error().Str("service", "snapshot router").Str("error", err.Error()).Msg("fail")
		os.Exit(1)
	}

	logger.Debug().Str("service", "scan manager").Int("workers", workers).Msg("start")
	if err := scanManager.Start(); err != nil {
		logger.Error().Str("service", "scan manager").Str("error", err.Error()).Msg("fail")
		os.Exit(1)
	}

	logger.Debug().Str("service", "api").Msg("start")
	apiServer := &api.Server{
		ConfigPath: *configFlag,
		Manager:    scanManager,
		Git:        gitClient,
		GitHub:     &github.Client{Token: github.TokenFromEnv()},
		Log:        logger,
	}
	if err := apiServer.Start(conf.HTTP.Listen); err != nil {
		logger.Error().Str("service", "api").Str("error", err.Error()).Msg("fail")
		os.Exit(1)
	}

	if *pprofFlag {
		go func() {
			if err := http.ListenAndServe(":6060", nil); err != nil {
				logger.Error().Str("error", err.Error()).Msg("can't start pprof")
			}
		}()
	}

	logger.Info().Str("version", version).Msg("started")

	signalChannel := make(chan os.Signal, 1)
	signal.Notify(signalChannel, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	for {
		s := <-signalChannel
		logger.Info().Str("signal", s.String()).Msg("received signal")
		if s != syscall.SIGHUP {
			break
		}
		// config and manifest are re-read on the next scan anyway; a HUP
		// just forces that scan to happen now
		scanManager.Invalidate()
		if _, err := scanManager.Dashboard(true); err != nil {
			logger.Error().Str("error", err.Error()).Msg("can't reload")
			continue
		}
		logger.Info().Msg("settings reloaded")
	}

	if err := apiServer.Stop(); err != nil {
		logger.Error().Str("error", err.Error()).Str("service", "api").Msg("can't stop")
	}
	if err := scanManager.Stop(); err != nil {
		logger.Error().Str("error", err.Error()).Str("service", "scan manager").Msg("can't stop")
	}
	if err := snapshotRouter.Stop(); err != nil {
		logger.Error().Str("error", err.Error()).Str("service", "snapshot router").Msg("can't stop")
	}
	if err := metricsRepo.Stop(); err != nil {
		logger.Error().Str("error", err.Error()).Str("service", "metrics repository").Msg("can't stop")
	}

	logger.Info().Str("version", version).Msg("stopped")
}

func runOnce(scanManager *scanmanager.ScanManager, logger zerolog.Logger) {
	dashboard, err := scanManager.Dashboard(true)
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("scan failed")
		os.Exit(1)
	}
	body, err := json.MarshalIndent(dashboard, "", "  ")
	if err != nil {
		logger.Error().Str("error", err.Error()).Msg("can't marshal dashboard")
		os.Exit(1)
	}
	fmt.Println(string(body))
}

func createLogger(conf *config.Common) zerolog.Logger {
	var lvl zerolog.Level
	switch conf.LogLevel {
	case "debug":
		lvl = zerolog.DebugLevel
	case "info":
		lvl = zerolog.InfoLevel
	case "warn":
		lvl = zerolog.WarnLevel
	case "error":
		lvl = zerolog.ErrorLevel
	default:
		fmt.Fprintf(os.Stderr, "Unknown logging level '%s'", conf.LogLevel)
		os.Exit(1)
	}
	if conf.LogFile != "" {
		writer := &lumberjack.Logger{
			Filename: conf.LogFile,
			MaxSize:  100, //MB
			MaxAge:   1,   //d
			Compress: true,
		}
		return zerolog.New(writer).Level(lvl).With().Timestamp().Logger()
	} else {
		return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger().Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
}
