package testutil

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"os"
	"strconv"
	"sync"
)

// Pdftoppm stubs the pdftoppm binary for command.Runner. It writes Pages
// PNG files named like the real tool (prefix-<n>.png, zero-padded to the
// width of the last page number) and honors -l.
type Pdftoppm struct {
	Pages int
	// Skip omits the given page numbers from the output.
	Skip map[int]bool
	// Fail makes every call return an error.
	Fail bool

	mu    sync.Mutex
	calls [][]string
}

func (p *Pdftoppm) Run(_ context.Context, name string, _ *slog.Logger, args ...string) ([]byte, []byte, error) {
	p.mu.Lock()
	p.calls = append(p.calls, append([]string{name}, args...))
	p.mu.Unlock()

	if p.Fail {
		return nil, []byte("Syntax Error: Couldn't read xref table"), errors.New("exit status 1")
	}
	if len(args) < 2 {
		return nil, nil, errors.New("missing arguments")
	}
	prefix := args[len(args)-1]

	last := p.Pages
	for i := 0; i < len(args)-1; i++ {
		if args[i] == "-l" {
			if n, err := strconv.Atoi(args[i+1]); err == nil && n < last {
				last = n
			}
		}
	}
	width := len(strconv.Itoa(last))
	for page := 1; page <= last; page++ {
		if p.Skip[page] {
			continue
		}
		// encode the page number in the fill so tests can tell pages apart
		img := Solid(4+page, 4, color.Gray{Y: uint8(page)})
		path := fmt.Sprintf("%s-%0*d.png", prefix, width, page)
		if err := os.WriteFile(path, PNG(img), 0o600); err != nil {
			return nil, nil, err
		}
	}
	return nil, nil, nil
}

// Calls returns the recorded invocations, binary name first.
func (p *Pdftoppm) Calls() [][]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([][]string, len(p.calls))
	copy(out, p.calls)
	return out
}
