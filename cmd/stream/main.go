package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"

	"plexquant/internal/config"
	"plexquant/internal/ffmpeg"
	"plexquant/internal/imageproc"
	"plexquant/internal/logging"
	"plexquant/internal/metrics"
	"plexquant/internal/video"
	"plexquant/internal/worker"
)

// Result is written to stdout as a single JSON document.
type Result struct {
	RunID    string                    `json:"run_id"`
	DataSize int                       `json:"data_size"`
	Width    int                       `json:"width"`
	Height   int                       `json:"height"`
	FPS      int                       `json:"fps"`
	Frames   []imageproc.FrameAnalysis `json:"frames"`
}

func main() {
	videoPath := flag.String("video", "", "Path to video file (local or URL)")
	width := flag.Int("width", 320, "Decoded frame width")
	height := flag.Int("height", 180, "Decoded frame height")
	fps := flag.Int("fps", 1, "Decoded frames per second (0 keeps the source rate)")
	bitrate := flag.String("bitrate", "", "Video bitrate passed to ffmpeg")
	chunkSize := flag.Int("chunk-size", 8, "Frames per worker task")
	maxBytes := flag.Int64("max-bytes", 100*1024*1024, "Maximum decoded bytes to read")
	logLevel := flag.String("log-level", "warn", "Log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "Log format: text or json")

	cfg, err := config.Parse(flag.CommandLine, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(2)
	}
	if *videoPath == "" || *width < 1 || *height < 1 || *chunkSize < 1 {
		fmt.Fprintf(os.Stderr, "Error: -video, a positive -width/-height and -chunk-size are required\n")
		flag.Usage()
		os.Exit(1)
	}

	runID := uuid.NewString()
	logger := logging.FromFlags(*logLevel, *logFormat).WithRun(runID)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proc, err := ffmpeg.StartRaw(ctx, ffmpeg.Options{
		URL:     *videoPath,
		Width:   *width,
		Height:  *height,
		FPS:     *fps,
		Bitrate: *bitrate,
	})
	if err != nil {
		logger.Error("error creating FFmpeg process", "error", err)
		os.Exit(1)
	}
	logger.Debug("ffmpeg started", "args", proc.Args())

	data, err := ffmpeg.ReadAll(ctx, proc, *maxBytes)
	if err != nil {
		logger.Error("error reading stream", "error", err)
		os.Exit(1)
	}

	chunks := video.ChunkFrames(data, *width, *height, *chunkSize)
	pool := &worker.Pool{
		Workers:  cfg.Workers,
		Seed:     cfg.Clustering.Seed,
		Analyzer: imageproc.NewAnalyzer(cfg, logger, metrics.Noop{}),
	}
	frames, err := pool.Analyze(ctx, chunks)
	if err != nil {
		logger.Error("error analyzing frames", "error", err)
		os.Exit(1)
	}
	logger.Info("stream analyzed", "bytes", len(data), "frames", len(frames))

	enc := json.NewEncoder(os.Stdout)
	if err := enc.Encode(Result{
		RunID:    runID,
		DataSize: len(data),
		Width:    *width,
		Height:   *height,
		FPS:      *fps,
		Frames:   frames,
	}); err != nil {
		logger.Error("error writing JSON", "error", err)
		os.Exit(1)
	}
}
