package thumbnail_test

import (
	"context"
	"strings"
	"testing"

	"clipforge/internal/testsupport"
	"clipforge/internal/thumbnail"
)

func TestCompositeUppercasesAndEscapesTitle(t *testing.T) {
	compositor := thumbnail.NewCompositor(testsupport.NewConfig(t), nil)
	var captured []string
	compositor.WithCommandRunner(func(ctx context.Context, name string, args ...string) error {
		captured = args
		return nil
	})

	if err := compositor.Composite(context.Background(), "/tmp/frame.jpg", "don't miss this", "/tmp/thumb.jpg"); err != nil {
		t.Fatalf("composite: %v", err)
	}

	joined := strings.Join(captured, " ")
	if !strings.Contains(joined, `DON\'T MISS THIS`) {
		t.Fatalf("expected escaped upper-case title in args %q", joined)
	}
	if !strings.Contains(joined, "drawbox=x=0:y=520") {
		t.Fatalf("expected title band in filter args %q", joined)
	}
}
