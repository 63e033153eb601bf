package capture

import (
	"strings"
	"testing"
)

func TestPipelineArgs(t *testing.T) {
	args := PipelineArgs("autovideosrc", "output/recording.mp4")

	if args[0] != "-e" {
		t.Errorf("first arg = %q, want -e", args[0])
	}
	joined := strings.Join(args[1:], " ")
	want := "autovideosrc ! videoconvert ! queue ! x264enc ! mp4mux ! filesink location=output/recording.mp4"
	if joined != want {
		t.Errorf("pipeline = %q, want %q", joined, want)
	}
}
