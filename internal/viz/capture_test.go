// SPDX-License-Identifier: MIT
package viz

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"aura/internal/audio"
	"aura/internal/config"
)

// A buffer size that passed no validation must come back as a capture
// error, never escape as a panic from the acquire goroutine.
func TestOpenBadBufferSizeReturnsError(t *testing.T) {
	cfg := config.NewConfig()
	cfg.Capture.FramesPerBuffer = 1000

	opener := NewEngineOpener(cfg)
	session, err := opener.Open(context.Background())
	if session != nil {
		session.Close()
		t.Fatal("no session should be returned for a bad buffer size")
	}
	if !errors.Is(err, audio.ErrContextCreationFailed) {
		t.Fatalf("err = %v, want %v", err, audio.ErrContextCreationFailed)
	}
}

func TestOpenCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opener := NewEngineOpener(config.NewConfig())
	if _, err := opener.Open(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}
