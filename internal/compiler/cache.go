package compiler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/veldtec/iacscan/internal/errors"
	"github.com/veldtec/iacscan/internal/logger"
)

const bicepReleaseURL = "https://github.com/Azure/bicep/releases/download/v%s/bicep-%s-%s"

// Resolve locates a bicep binary. Resolution order: explicit configured path,
// then $PATH, then a version-keyed copy in the user cache directory,
// downloading it on first use.
func Resolve(ctx context.Context, configured, version string, log logger.Logger) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", errors.Wrap(errors.ErrorTypeConfiguration, "configured bicep binary not found", err)
		}
		return configured, nil
	}

	if path, err := exec.LookPath("bicep"); err == nil {
		return path, nil
	}

	return downloadToCache(ctx, version, log)
}

// downloadToCache fetches the bicep release binary into the cache directory.
// The cached copy is reused by every later run with the same version.
func downloadToCache(ctx context.Context, version string, log logger.Logger) (string, error) {
	cacheRoot, err := os.UserCacheDir()
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeConfiguration, "cannot determine cache directory", err)
	}
	binPath := filepath.Join(cacheRoot, "iacscan", "bicep", version, binaryName())
	if _, err := os.Stat(binPath); err == nil {
		return binPath, nil
	}

	url := fmt.Sprintf(bicepReleaseURL, version, runtime.GOOS, archName())
	log.WithFields(map[string]interface{}{
		"version": version,
		"url":     url,
	}).Info("downloading bicep compiler")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNetwork, "failed to build download request", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeNetwork, "bicep download failed", err).
			WithSolutions("install bicep manually and put it on PATH, or set compiler.path in the config")
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", errors.New(errors.ErrorTypeNetwork, fmt.Sprintf("bicep download returned status %d", resp.StatusCode))
	}

	if err := os.MkdirAll(filepath.Dir(binPath), 0o755); err != nil {
		return "", errors.Wrap(errors.ErrorTypeConfiguration, "cannot create cache directory", err)
	}

	// Write to a temp file first so a failed download never leaves a
	// half-written binary at the cached path.
	tmp, err := os.CreateTemp(filepath.Dir(binPath), "bicep-*")
	if err != nil {
		return "", errors.Wrap(errors.ErrorTypeConfiguration, "cannot create temp file", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return "", errors.Wrap(errors.ErrorTypeNetwork, "bicep download interrupted", err)
	}
	if err := tmp.Close(); err != nil {
		return "", errors.Wrap(errors.ErrorTypeConfiguration, "cannot finalize download", err)
	}
	if err := os.Chmod(tmp.Name(), 0o755); err != nil {
		return "", errors.Wrap(errors.ErrorTypeConfiguration, "cannot mark binary executable", err)
	}
	if err := os.Rename(tmp.Name(), binPath); err != nil {
		return "", errors.Wrap(errors.ErrorTypeConfiguration, "cannot move binary into cache", err)
	}
	return binPath, nil
}

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "bicep.exe"
	}
	return "bicep"
}

func archName() string {
	switch runtime.GOARCH {
	case "arm64":
		return "arm64"
	default:
		return "x64"
	}
}
