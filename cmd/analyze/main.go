package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plexquant/internal/config"
	"plexquant/internal/ffmpeg"
	"plexquant/internal/imageproc"
	"plexquant/internal/logging"
	"plexquant/internal/metrics"
	"plexquant/internal/video"
)

func main() {
	videoPath := flag.String("video", "", "Path to video file (local or URL)")
	startTime := flag.String("start", "", "Start time (format: HH:MM:SS)")
	endTime := flag.String("end", "", "End time (format: HH:MM:SS)")
	debugEvery := flag.Int("debug-every", 0, "Save every Nth processed frame as PNG (0 disables)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (e.g. :9090)")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	logger := logging.FromFlags(*logLevel, *logFormat)

	if *videoPath == "" {
		fmt.Fprintf(os.Stderr, "Error: Video path is required\n")
		flag.Usage()
		os.Exit(1)
	}

	var timeRange *ffmpeg.TimeRange
	if *startTime != "" || *endTime != "" {
		timeRange = &ffmpeg.TimeRange{
			Start: *startTime,
			End:   *endTime,
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	signalChan := make(chan os.Signal, 1)
	signal.Notify(signalChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signalChan
		logger.Info("received termination signal, shutting down")
		cancel()
	}()

	var collector metrics.Collector = metrics.Noop{}
	if *metricsAddr != "" {
		reg := prometheus.NewRegistry()
		prom, err := metrics.NewPrometheus(reg)
		if err != nil {
			logger.Error("error registering metrics", "error", err)
			os.Exit(1)
		}
		collector = prom
		srv := serveMetrics(*metricsAddr, reg, logger)
		defer func() {
			shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
			defer stop()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	analyzer := imageproc.NewAnalyzer(cfg, logger, collector)
	processor := video.NewFrameProcessor(
		*videoPath,
		cfg.Output.Dir,
		timeRange,
		cfg.Sampling.SampleRate,
		analyzer,
		logger,
	)
	processor.InFlight = cfg.Workers
	processor.Seed = cfg.Clustering.Seed
	processor.Compress = cfg.Output.Compress
	processor.DebugEvery = *debugEvery

	logger.Info("starting analysis", "video", *videoPath, "run_id", processor.RunID())
	if err := processor.ProcessFrames(ctx); err != nil {
		logger.Error("error processing video", "error", err)
		os.Exit(1)
	}

	report := processor.Report()
	logger.Info("analysis complete", "frames", len(report.Frames))
	if len(report.Frames) > 0 {
		first := report.Frames[0]
		logger.Info("first frame",
			"frame_number", first.FrameNumber,
			"timestamp", fmt.Sprintf("%.2fs", first.Timestamp),
			"colors", len(first.Colors),
			"mean_hue", first.MeanHue,
		)
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *logging.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	logger.Info("serving metrics", "addr", addr)
	return srv
}
