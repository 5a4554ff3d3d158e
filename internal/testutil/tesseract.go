package testutil

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/joseph-ayodele/scanocr/internal/core/command"
)

// Tesseract stubs the tesseract binary in TSV mode. Every call "recognizes"
// Text, one word row per whitespace-separated word, each with confidence Conf
// (0..100).
type Tesseract struct {
	Text string
	Conf float64
	// FailOn makes the nth call (1-based) exit non-zero.
	FailOn int

	mu    sync.Mutex
	calls int
}

func (t *Tesseract) Run(_ context.Context, _ string, _ *slog.Logger, _ ...string) ([]byte, []byte, error) {
	t.mu.Lock()
	t.calls++
	n := t.calls
	t.mu.Unlock()

	if t.FailOn > 0 && n == t.FailOn {
		return nil, []byte("Error in pixReadMem: Unknown format"), errors.New("exit status 1")
	}

	var sb strings.Builder
	sb.WriteString("level\tpage_num\tblock_num\tpar_num\tline_num\tword_num\tleft\ttop\twidth\theight\tconf\ttext\n")
	for i, w := range strings.Fields(t.Text) {
		fmt.Fprintf(&sb, "5\t1\t1\t1\t1\t%d\t%d\t10\t40\t20\t%g\t%s\n", i+1, 10+50*i, t.Conf, w)
	}
	return []byte(sb.String()), nil, nil
}

// Calls returns how many times the stub ran.
func (t *Tesseract) Calls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls
}

// Commands dispatches on the binary name.
type Commands map[string]command.Runner

func (c Commands) Run(ctx context.Context, name string, logger *slog.Logger, args ...string) ([]byte, []byte, error) {
	r, ok := c[name]
	if !ok {
		return nil, nil, fmt.Errorf("exec: %q: executable file not found in $PATH", name)
	}
	return r.Run(ctx, name, logger, args...)
}
