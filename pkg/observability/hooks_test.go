package observability

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	p := NoopPipelineHooks{}
	p.OnLayoutStart(ctx, 28)
	p.OnLayoutComplete(ctx, 28, time.Second, nil)
	p.OnRenderStart(ctx, []string{"svg"})
	p.OnRenderComplete(ctx, []string{"svg"}, time.Second, nil)
	p.OnArchiveComplete(ctx, 3, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "layout")
	c.OnCacheMiss(ctx, "artifact")
	c.OnCacheSet(ctx, "artifact", 1024)

	r := NoopRequestHooks{}
	r.OnRequest(ctx, "GET", "/healthz")
	r.OnResponse(ctx, "GET", "/healthz", 200, time.Millisecond)
}

type countingPipelineHooks struct {
	NoopPipelineHooks
	layouts int
}

func (h *countingPipelineHooks) OnLayoutStart(context.Context, int) { h.layouts++ }

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Pipeline() should return NoopPipelineHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Request().(NoopRequestHooks); !ok {
		t.Error("Request() should return NoopRequestHooks by default")
	}

	custom := &countingPipelineHooks{}
	SetPipelineHooks(custom)
	Pipeline().OnLayoutStart(context.Background(), 10)
	if custom.layouts != 1 {
		t.Errorf("custom hook called %d times, want 1", custom.layouts)
	}

	logHooks := NewLogHooks(nil)
	SetCacheHooks(logHooks)
	SetRequestHooks(logHooks)
	if Cache() != CacheHooks(logHooks) || Request() != RequestHooks(logHooks) {
		t.Error("Set*Hooks should register custom hooks")
	}

	SetPipelineHooks(nil)
	if Pipeline() != PipelineHooks(custom) {
		t.Error("SetPipelineHooks(nil) should be ignored")
	}

	Reset()
	if _, ok := Pipeline().(NoopPipelineHooks); !ok {
		t.Error("Reset() should restore NoopPipelineHooks")
	}
}

func TestLogHooks(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	h := NewLogHooks(logger)
	ctx := context.Background()

	h.OnLayoutComplete(ctx, 28, time.Millisecond, nil)
	h.OnRenderComplete(ctx, []string{"pdf"}, time.Millisecond, errors.New("rsvg-convert missing"))
	h.OnCacheHit(ctx, "artifact")
	h.OnResponse(ctx, "POST", "/v1/plans/render", 502, time.Millisecond)

	out := buf.String()
	for _, want := range []string{"layout complete", "seats=28", "render failed", "rsvg-convert missing", "cache hit", "status=502"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q:\n%s", want, out)
		}
	}
}
