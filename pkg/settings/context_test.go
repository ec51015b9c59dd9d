package settings

import (
	"context"
	"testing"
)

func TestFromContextReturnsAttachedRun(t *testing.T) {
	run := &Run{NoColor: true, LogFile: "kvb-debug.log"}
	ctx := IntoContext(context.Background(), run)

	if got := FromContext(ctx); got != run {
		t.Fatalf("FromContext() = %p, want the attached %p", got, run)
	}
}

func TestFromContextDefaults(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
	}{
		{name: "empty_context", ctx: context.Background()},
		{name: "nil_run", ctx: IntoContext(context.Background(), nil)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromContext(tt.ctx)
			if got == nil {
				t.Fatal("FromContext() returned nil")
			}
			if *got != *NewCliParams() {
				t.Errorf("FromContext() = %+v, want CLI defaults", *got)
			}
		})
	}
}

func TestIntoContextDoesNotLeakToParent(t *testing.T) {
	parent := context.Background()
	child := IntoContext(parent, &Run{Debug: true})

	if !FromContext(child).Debug {
		t.Error("child context lost the run options")
	}
	if FromContext(parent).Debug {
		t.Error("parent context sees the child's run options")
	}
}
