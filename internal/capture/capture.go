// Package capture runs the video recording pipeline that is kicked off
// fire-and-forget at boot. It shares no state with the user API; a failure
// here must never block or abort the HTTP service.
package capture

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/sylvain-bouchard/capture-api/internal/config"
)

const launchBinary = "gst-launch-1.0"

// PipelineArgs builds the gst-launch argument list for recording from source
// into an MP4 at outputPath.
func PipelineArgs(source, outputPath string) []string {
	desc := fmt.Sprintf("%s ! videoconvert ! queue ! x264enc ! mp4mux ! filesink location=%s",
		source, outputPath)
	// -e forces EOS on shutdown so the mp4 gets finalized.
	return append([]string{"-e"}, strings.Fields(desc)...)
}

// Record runs the pipeline for cfg.RecordingDuration, then interrupts it so
// the muxer can finalize the file. Blocks until the pipeline exits.
func Record(ctx context.Context, cfg config.MediaConfig) error {
	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	outputPath := filepath.Join(cfg.OutputDir, "recording.mp4")

	// Stopped with an interrupt below so the muxer can finalize the file.
	cmd := exec.Command(launchBinary, PipelineArgs(cfg.Source, outputPath)...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start pipeline: %w", err)
	}

	done := make(chan error, 1)
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("pipeline exited: %w", err)
		}
		return nil
	case <-time.After(cfg.RecordingDuration.Duration()):
		_ = cmd.Process.Signal(os.Interrupt)
	case <-ctx.Done():
		_ = cmd.Process.Signal(os.Interrupt)
	}

	// Give the muxer a moment to flush before giving up.
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("pipeline exited: %w", err)
		}
		return nil
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()
		return fmt.Errorf("pipeline did not stop after interrupt")
	}
}
