package command

import (
	"bytes"
	"context"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/gundaabinav333/authshell/internal/devserver"
	"github.com/gundaabinav333/authshell/internal/telemetry/logger"
	"github.com/gundaabinav333/authshell/internal/telemetry/metric"
)

func TestMain(m *testing.M) {
	// Exit codes are asserted on the returned error instead.
	cli.OsExiter = func(int) {}
	cli.ErrWriter = &bytes.Buffer{}
	os.Exit(m.Run())
}

// env is an isolated home, config file and auth backend.
type env struct {
	configPath string
	backend    *httptest.Server
}

func newEnv(t *testing.T) *env {
	t.Helper()

	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("AUTHSHELL_SERVER", "")

	cfg := devserver.DefaultConfig()
	srv, err := devserver.New(cfg,
		devserver.WithHashParams(devserver.HashParams{Memory: 64, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16}),
		devserver.WithRegistry(metric.NewRegistry()),
		devserver.WithLogger(logger.Discard()),
	)
	if err != nil {
		t.Fatal(err)
	}
	backend := httptest.NewServer(srv.Handler())
	t.Cleanup(backend.Close)

	state := filepath.Join(home, "state")
	configPath := filepath.Join(home, "config.yaml")
	content := "store:\n" +
		"  dir: " + filepath.Join(state, "session") + "\n" +
		"  key_file: " + filepath.Join(state, "session.key") + "\n" +
		"  gc_interval: 0s\n" +
		"log:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	return &env{configPath: configPath, backend: backend}
}

type result struct {
	stdout string
	stderr string
	err    error
}

func (r result) exitCode() int {
	if ec, ok := r.err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	if r.err != nil {
		return 1
	}
	return 0
}

// run executes the CLI against the env's backend with stdin.
func (e *env) run(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	return e.runContext(context.Background(), t, stdin, nil, args...)
}

func (e *env) runContext(ctx context.Context, t *testing.T, stdin string, stderr *syncBuffer, args ...string) result {
	t.Helper()

	var stdout syncBuffer
	if stderr == nil {
		stderr = &syncBuffer{}
	}
	app := App()
	app.Writer = &stdout
	app.ErrWriter = stderr
	app.Reader = strings.NewReader(stdin)

	full := append([]string{"authshell", "--config", e.configPath, "--server", e.backend.URL}, args...)
	err := app.RunContext(ctx, full)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
