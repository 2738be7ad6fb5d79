// Command deconflict runs a strategic deconfliction check for a primary
// drone mission against a set of simulated flight schedules.
//
// Usage:
//
//	deconflict <primary_mission.json> <simulated_flights.json>
//
// Configuration is read from deconflict.cfg.json in the working directory;
// every key has a default, so the file is optional.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"

	"github.com/flytrace/deconflict/internal/api"
	"github.com/flytrace/deconflict/internal/config"
	"github.com/flytrace/deconflict/internal/deconflict"
	"github.com/flytrace/deconflict/internal/influx"
	"github.com/flytrace/deconflict/internal/logging"
	"github.com/flytrace/deconflict/internal/mission"
	"github.com/flytrace/deconflict/internal/monitor"
	intOtel "github.com/flytrace/deconflict/internal/otel"
	"github.com/flytrace/deconflict/internal/runner"
	"github.com/flytrace/deconflict/internal/storage"
	"github.com/flytrace/deconflict/pkg/core"
)

// queueLenProvider is implemented by backends that buffer writes.
type queueLenProvider interface {
	QueueLen() int
}

// Version can be set at build time via ldflags.
var Version = "0.0.1"

var sessionStartTime = time.Now()

func main() {
	if len(os.Args) != 3 {
		fmt.Fprintf(os.Stderr, "usage: %s <primary_mission.json> <simulated_flights.json>\n", filepath.Base(os.Args[0]))
		os.Exit(2)
	}

	if err := run(os.Args[1], os.Args[2]); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(missionPath, simulatedPath string) error {
	configErr := config.Load(".")

	// logging
	logsDir := viper.GetString("logsDir")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory: %w", err)
	}
	logFile, err := os.Create(logging.LogFilePath(logsDir, "deconflict", sessionStartTime))
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}
	defer logFile.Close()

	gelfAddr := ""
	if viper.GetBool("graylog.enabled") {
		gelfAddr = viper.GetString("graylog.address")
	}

	slogManager := logging.NewSlogManager()
	slogManager.Setup(logFile, viper.GetString("logLevel"), gelfAddr)
	defer slogManager.Close()
	logger := slogManager.Logger()

	logger.Info("Starting deconfliction engine", "version", Version)
	if configErr != nil {
		logger.Warn("No config file loaded, using defaults", "error", configErr)
	}

	zl := zerolog.New(logFile).With().Timestamp().Logger()

	// metrics
	otelProvider, err := setupOtel(logsDir)
	if err != nil {
		return err
	}
	defer otelProvider.Shutdown(context.Background())

	var influxManager *influx.Manager
	if viper.GetBool("influx.enabled") {
		influxManager = influx.NewManager(zl, filepath.Join(logsDir, "influx_backup.gz"))
		if err := influxManager.Connect(); err != nil {
			logger.Warn("InfluxDB unavailable", "error", err)
			influxManager = nil
		} else {
			defer influxManager.Close()
		}
	}

	// mission
	missionCtx := mission.NewContext()
	m, err := loadMission(missionPath, simulatedPath)
	if err != nil {
		return err
	}
	missionCtx.SetMission(m)
	slogManager.AttachContext(func() []slog.Attr {
		return []slog.Attr{slog.String("mission", m.Name)}
	})
	logger = slogManager.Logger()
	logger.Info("Mission loaded", "name", m.Name, "drones", m.DroneCount())

	// storage
	backend, err := storage.NewBackend(zl)
	if err != nil {
		return fmt.Errorf("failed to create storage backend: %w", err)
	}
	if err := backend.Init(); err != nil {
		return fmt.Errorf("failed to initialize storage backend: %w", err)
	}
	defer backend.Close()

	if err := backend.StartMission(m); err != nil {
		return fmt.Errorf("failed to persist mission: %w", err)
	}
	if influxManager != nil {
		if err := influxManager.WritePoint(context.Background(), influx.BucketMissionData, influx.MissionPoint(m)); err != nil {
			logger.Warn("Failed to write mission point", "error", err)
		}
	}

	// check
	opts := config.CheckOptions()
	clusterWindow := time.Duration(viper.GetInt("check.clusterWindowSeconds")) * time.Second
	clusterRadius := viper.GetFloat64("check.clusterRadius")

	var final core.ConflictReport
	checkStart := time.Now()

	sink := func(report *core.ConflictReport, opts deconflict.Options) error {
		report.Conflicts = deconflict.Cluster(report.Conflicts, clusterWindow, clusterRadius)
		final = *report

		if influxManager != nil {
			point := influx.CheckPoint(m.Name, report, opts, time.Since(checkStart))
			if err := influxManager.WritePoint(context.Background(), influx.BucketCheckPerformance, point); err != nil {
				logger.Warn("Failed to write check point", "error", err)
			}
		}

		return backend.RecordReport(report, opts)
	}

	checkRunner, err := runner.New(sink, logging.NewRunnerLogger(zl), runner.Blocking(), runner.Logged())
	if err != nil {
		return fmt.Errorf("failed to create check runner: %w", err)
	}

	statusMonitor := monitor.NewService(monitor.Dependencies{
		Logger:         logger,
		MissionContext: missionCtx,
		RunnerQueueLen:  checkRunner.QueueLen,
		ChecksProcessed: checkRunner.Processed,
		StorageQueueLen: func() int {
			if p, ok := backend.(queueLenProvider); ok {
				return p.QueueLen()
			}
			return 0
		},
		StatusDir: logsDir,
	})
	if err := statusMonitor.Start(time.Second); err != nil {
		return err
	}
	defer statusMonitor.Stop()

	primary, simulated := missionCtx.Snapshot()
	if err := checkRunner.Submit(runner.Job{
		Primary:   primary,
		Simulated: simulated,
		Opts:      opts,
	}); err != nil {
		return err
	}
	checkRunner.Close()

	if err := backend.EndMission(); err != nil {
		return fmt.Errorf("failed to finalize mission: %w", err)
	}
	if exportable, ok := backend.(storage.Exportable); ok {
		if path := exportable.GetExportedFilePath(); path != "" {
			logger.Info("Mission exported", "path", path)
			uploadExport(logger, path, exportable.GetExportMetadata())
		}
	}

	logger.Info("Check complete",
		"status", string(final.Status),
		"conflicts", len(final.Conflicts),
		"duration", time.Since(checkStart))

	return printReport(&final)
}

// uploadExport pushes the exported mission file to the fleet frontend when
// the api section is enabled. Upload failures are logged, not fatal.
func uploadExport(logger *slog.Logger, path string, meta core.UploadMetadata) {
	if !viper.GetBool("api.enabled") {
		return
	}

	client := api.New(viper.GetString("api.url"), viper.GetString("api.key"))
	if err := client.Healthcheck(); err != nil {
		logger.Warn("Fleet frontend unreachable, skipping upload", "error", err)
		return
	}
	if err := client.Upload(path, meta); err != nil {
		logger.Warn("Failed to upload mission export", "error", err)
		return
	}
	logger.Info("Mission export uploaded", "mission", meta.MissionName)
}

func setupOtel(logsDir string) (*intOtel.Provider, error) {
	cfg := intOtel.Config{
		Enabled:        viper.GetBool("otel.enabled"),
		ServiceName:    "deconflict",
		ExportInterval: time.Duration(viper.GetInt("otel.exportIntervalSeconds")) * time.Second,
	}
	if cfg.Enabled {
		f, err := os.Create(filepath.Join(logsDir, "metrics.json"))
		if err != nil {
			return nil, fmt.Errorf("failed to create metrics file: %w", err)
		}
		cfg.MetricsWriter = f
	}
	provider, err := intOtel.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to set up metrics: %w", err)
	}
	return provider, nil
}

// loadMission reads the primary mission document and the simulated flights
// file and merges them into one mission.
func loadMission(missionPath, simulatedPath string) (*core.Mission, error) {
	doc, err := mission.LoadFile(missionPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission file: %w", err)
	}

	name := strings.TrimSuffix(filepath.Base(missionPath), filepath.Ext(missionPath))
	m, err := doc.Mission(name)
	if err != nil {
		return nil, fmt.Errorf("failed to build mission: %w", err)
	}

	simulated, err := mission.LoadSimulatedFile(simulatedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load simulated flights: %w", err)
	}
	m.Simulated = append(m.Simulated, simulated...)

	if m.Primary == nil {
		return nil, fmt.Errorf("mission %q has no primary trajectory", name)
	}
	if len(m.Simulated) == 0 {
		return nil, fmt.Errorf("no simulated flights loaded from %s", simulatedPath)
	}

	mission.AssignColors(m)
	return m, nil
}

func printReport(report *core.ConflictReport) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
