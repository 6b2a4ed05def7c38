// Package compiler invokes the external Bicep compiler binary and caches a
// downloaded copy of it across runs.
package compiler

import (
	"bytes"
	"context"
	"os/exec"
	"strings"
	"time"

	"github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/internal/logger"
)

// Compiler runs the bicep binary against individual template files,
// sequentially, one file per invocation.
type Compiler struct {
	binPath string
	timeout time.Duration
	log     logger.Logger
}

// New creates a Compiler around a resolved binary path.
func New(binPath string, timeout time.Duration, log logger.Logger) *Compiler {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Compiler{binPath: binPath, timeout: timeout, log: log}
}

// Compile builds a single .bicep file and returns the compiled ARM template
// JSON from stdout. The invocation has its own deadline on top of ctx.
func (c *Compiler) Compile(ctx context.Context, file string) ([]byte, error) {
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, c.binPath, "build", "--stdout", file)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	c.log.WithFields(map[string]interface{}{
		"file":     file,
		"duration": time.Since(start).String(),
	}).Debug("bicep build finished")

	if runCtx.Err() == context.DeadlineExceeded {
		return nil, errors.New(errors.ErrorTypeCompiler, "bicep build timed out for "+file)
	}
	if err != nil {
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		return nil, errors.New(errors.ErrorTypeCompiler, "bicep build failed for "+file+": "+firstLine(detail))
	}
	return stdout.Bytes(), nil
}

// Version reports the compiler version, used for cache keys and diagnostics.
func (c *Compiler) Version(ctx context.Context) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	out, err := exec.CommandContext(runCtx, c.binPath, "--version").Output()
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeCompiler, "failed to query bicep version", err)
	}
	return strings.TrimSpace(string(out)), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
