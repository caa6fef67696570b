package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInterruptHandler_DefaultsToStdout(t *testing.T) {
	handler := NewInterruptHandler(nil)
	assert.NotNil(t, handler.writer)
	assert.False(t, handler.WasInterrupted())
}

func TestInterrupt_MessageShownOnce(t *testing.T) {
	var out bytes.Buffer
	handler := NewInterruptHandler(&out)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	_ = handler.HandleInterrupts(ctx, "Restore with: cashflow snapshot restore auto-import-1")

	handler.interrupt()
	handler.interrupt()

	assert.True(t, handler.WasInterrupted())
	assert.Equal(t, 1, strings.Count(out.String(), "Interrupted!"))
	assert.Contains(t, out.String(), "snapshot restore auto-import-1")
}

func TestInterrupt_NoHint(t *testing.T) {
	var out bytes.Buffer
	handler := NewInterruptHandler(&out)
	handler.interrupt()

	assert.Contains(t, out.String(), "Interrupted!")
	assert.NotContains(t, out.String(), InfoIcon)
}

func TestHandleInterrupts_ParentCancelIsQuiet(t *testing.T) {
	var out bytes.Buffer
	handler := NewInterruptHandler(&out)

	parent, cancel := context.WithCancel(context.Background())
	ctx := handler.HandleInterrupts(parent, "")
	cancel()
	<-ctx.Done()

	assert.False(t, handler.WasInterrupted())
}
