package oracle

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strings"
	"time"

	"github.com/rtlharvest/rtlharvest/pkg/dialect"
	"github.com/rtlharvest/rtlharvest/pkg/types"
)

// EnvBinary is the environment variable consulted for the yosys binary when
// no explicit path is configured.
const EnvBinary = "YOSYS_BINARY"

// DefaultTimeout bounds one oracle invocation. Elaborating a large design
// can legitimately take minutes; anything past this is treated as hung.
const DefaultTimeout = 1000 * time.Second

// Config controls how the yosys adapter invokes the binary.
type Config struct {
	Binary  string        // explicit binary path; empty → $YOSYS_BINARY, then "yosys" on PATH
	Timeout time.Duration // wall-clock bound per invocation; 0 → DefaultTimeout
}

// Yosys shells out to a yosys binary using each dialect's script recipe.
type Yosys struct {
	binary   string
	registry *dialect.Registry
	timeout  time.Duration
}

// NewYosys resolves the oracle binary and returns the adapter.
// Resolution order: explicit config path, $YOSYS_BINARY, "yosys" on PATH.
// Returns ErrUnavailable when none resolves.
func NewYosys(registry *dialect.Registry, config Config) (*Yosys, error) {
	binary, err := resolveBinary(config.Binary)
	if err != nil {
		return nil, err
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Yosys{
		binary:   binary,
		registry: registry,
		timeout:  timeout,
	}, nil
}

// Binary returns the resolved oracle binary path.
func (y *Yosys) Binary() string {
	return y.binary
}

// Classify invokes yosys once over the given files and scans its output for
// a top-module signal line. Oracle failures (non-zero exit, timeout, no
// signal) come back as not-synthesizable reasons, never as process errors.
func (y *Yosys) Classify(ctx context.Context, paths []string, kind types.SourceKind) types.Classification {
	d, ok := y.registry.ByKind(kind)
	if !ok {
		return types.NotSynthesizable(types.ReasonUnsupportedKind)
	}
	if len(paths) == 0 {
		return types.NotSynthesizable(types.ReasonToolFailure)
	}

	runCtx, cancel := context.WithTimeout(ctx, y.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, y.binary, "-qq", "-p", d.RenderScript(paths))

	// Diagnostics land on either stream depending on the yosys build, so
	// both are scanned, in emission order.
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return types.NotSynthesizable(types.ReasonTimeout)
		}
		return types.NotSynthesizable(types.ReasonToolFailure)
	}

	return scanForTopModule(output.Bytes())
}

// resolveBinary picks the first configured oracle binary that exists.
func resolveBinary(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s: %v", ErrUnavailable, explicit, err)
		}
		return explicit, nil
	}

	if env := os.Getenv(EnvBinary); env != "" {
		if _, err := os.Stat(env); err != nil {
			return "", fmt.Errorf("%w: $%s=%s: %v", ErrUnavailable, EnvBinary, env, err)
		}
		return env, nil
	}

	path, err := exec.LookPath("yosys")
	if err != nil {
		return "", fmt.Errorf("%w: no explicit path, $%s unset, yosys not on PATH", ErrUnavailable, EnvBinary)
	}
	return path, nil
}

// elaborationPrefix marks the elaboration note emitted when the
// systemverilog plugin settles on a top module. The module name sits
// between the line's first '@' and the following '"'.
const elaborationPrefix = "[NTE:EL0503]"

// autoTopRe matches the synth -auto-top announcement for plain Verilog.
var autoTopRe = regexp.MustCompile(`Automatically selected ([a-zA-Z_][a-zA-Z0-9_$]*) as design top module\.`)

// scanForTopModule walks output line by line; the first line matching either
// signal decides the result, even if later lines name a different module.
func scanForTopModule(output []byte) types.Classification {
	scanner := bufio.NewScanner(bytes.NewReader(output))
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()

		if strings.HasPrefix(line, elaborationPrefix) {
			return parseElaborationNote(line)
		}

		if m := autoTopRe.FindStringSubmatch(line); m != nil {
			return types.SynthesizableAs(m[1])
		}
	}

	return types.NotSynthesizable(types.ReasonNoTopModule)
}

// parseElaborationNote extracts the module name from an [NTE:EL0503] line.
// A malformed note ends the scan with NoTopModule; later lines are not
// consulted.
func parseElaborationNote(line string) types.Classification {
	start := strings.IndexByte(line, '@')
	if start == -1 {
		return types.NotSynthesizable(types.ReasonNoTopModule)
	}
	end := strings.IndexByte(line[start+1:], '"')
	if end == -1 {
		return types.NotSynthesizable(types.ReasonNoTopModule)
	}

	module := line[start+1 : start+1+end]
	if module == "" {
		return types.NotSynthesizable(types.ReasonNoTopModule)
	}
	return types.SynthesizableAs(module)
}
