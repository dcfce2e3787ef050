package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/dev-manthan-sharma/paw-ma/jwt"
)

const testSecret = "Tr0ub4dor&3"

type fakeClipboard struct {
	mu       sync.Mutex
	content  string
	writes   []string
	override string
	err      error
}

func (c *fakeClipboard) WriteAll(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.content = text
	c.writes = append(c.writes, text)
	return nil
}

func (c *fakeClipboard) ReadAll() (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.override != "" {
		return c.override, nil
	}
	return c.content, nil
}

type cliResult struct {
	stdout string
	stderr string
	err    error
}

func newTestApp() (*app, *fakeClipboard) {
	clip := &fakeClipboard{}
	a := newApp()
	a.clip = clip
	a.isTerminal = func(int) bool { return false }
	return a, clip
}

// writeConfig writes an empty-ish config so the user's own file is never read.
func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, a *app, stdin string, args ...string) cliResult {
	t.Helper()
	if !containsFlag(args, "--config") {
		args = append([]string{"--config", writeConfig(t, "log_level: debug\n")}, args...)
	}

	var stdout, stderr bytes.Buffer
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(&stdout)
	root.SetErr(&stderr)

	err := root.ExecuteContext(context.Background())
	return cliResult{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func containsFlag(args []string, flag string) bool {
	for _, a := range args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			return true
		}
	}
	return false
}

func TestDeriveFromStdin(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, testSecret+"\n", "derive", "--secret-stdin", "https://www.example.com/login")

	require.NoError(t, res.err)
	assert.Equal(t, "Uo#Cd>!c{4j@MM7f\n", res.stdout)
	assert.NotContains(t, res.stderr, testSecret)
}

func TestDeriveRawWithDifferentiatorJSON(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, testSecret, "derive", "--secret-stdin", "--raw", "example.com", "-d", "alice", "--output", "json")
	require.NoError(t, res.err)

	var out map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, ".AID)zO{7m3b,CPj", out["password"])
	assert.Equal(t, "example.com", out["identifier"])
	assert.Equal(t, "alice", out["differentiator"])
	assert.NotContains(t, res.stdout, testSecret)
}

func TestDeriveYAMLFromConfig(t *testing.T) {
	a, _ := newTestApp()
	cfg := writeConfig(t, "output: yaml\n")
	res := execute(t, a, "hunter2\n", "--config", cfg, "derive", "--secret-stdin", "example.com")
	require.NoError(t, res.err)

	var out map[string]string
	require.NoError(t, yaml.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "t8A%]?BArEb,^a3$", out["password"])
	assert.Equal(t, "example.com", out["domain"])
	assert.Equal(t, "example.com", out["url"])
}

func TestDeriveKeepsCRLFOutOfSecret(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, testSecret+"\r\n", "derive", "--secret-stdin", "--raw", "example.com")
	require.NoError(t, res.err)
	assert.Equal(t, "Uo#Cd>!c{4j@MM7f\n", res.stdout)
}

func TestDeriveMissingSecret(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, "\n", "derive", "--secret-stdin", "example.com")

	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, exitCode(res.err))
	assert.Contains(t, res.err.Error(), "master secret required")
	assert.Empty(t, res.stdout)
}

func TestDeriveInvalidURL(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, testSecret, "derive", "--secret-stdin", "http://")

	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, exitCode(res.err))
	assert.Contains(t, res.err.Error(), "invalid URL")
}

func TestDeriveRequiresTerminalWithoutSecretStdin(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, testSecret, "derive", "example.com")

	require.Error(t, res.err)
	assert.Equal(t, ExitUsage, exitCode(res.err))
}

func TestDerivePromptsOnTerminal(t *testing.T) {
	a, _ := newTestApp()
	a.isTerminal = func(int) bool { return true }
	a.readPassword = func(int) ([]byte, error) { return []byte(testSecret), nil }

	res := execute(t, a, "", "derive", "--raw", "example.com")
	require.NoError(t, res.err)
	assert.Equal(t, "Uo#Cd>!c{4j@MM7f\n", res.stdout)
	assert.Contains(t, res.stderr, "Master secret: ")
}

func TestDerivePromptReadError(t *testing.T) {
	a, _ := newTestApp()
	a.isTerminal = func(int) bool { return true }
	a.readPassword = func(int) ([]byte, error) { return nil, errors.New("tty gone") }

	res := execute(t, a, "", "derive", "--raw", "example.com")
	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, exitCode(res.err))
}

func TestDeriveCopyClearsClipboard(t *testing.T) {
	a, clip := newTestApp()
	res := execute(t, a, testSecret, "derive", "--secret-stdin", "--raw", "example.com", "--copy", "--clear-after", "10ms")
	require.NoError(t, res.err)

	assert.Empty(t, res.stdout)
	assert.Equal(t, []string{"Uo#Cd>!c{4j@MM7f", ""}, clip.writes)
	assert.Contains(t, res.stderr, "Clipboard cleared.")
}

func TestDeriveCopyLeavesChangedClipboard(t *testing.T) {
	a, clip := newTestApp()
	clip.override = "something else"
	res := execute(t, a, testSecret, "derive", "--secret-stdin", "--raw", "example.com", "--copy", "--clear-after", "10ms")
	require.NoError(t, res.err)

	assert.Equal(t, []string{"Uo#Cd>!c{4j@MM7f"}, clip.writes)
	assert.NotContains(t, res.stderr, "Clipboard cleared.")
}

func TestDeriveCopyNoClear(t *testing.T) {
	a, clip := newTestApp()
	res := execute(t, a, testSecret, "derive", "--secret-stdin", "--raw", "example.com", "--copy", "--clear-after", "0s")
	require.NoError(t, res.err)
	assert.Equal(t, []string{"Uo#Cd>!c{4j@MM7f"}, clip.writes)
}

func TestDeriveCopyJSONOmitsPassword(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, testSecret, "derive", "--secret-stdin", "--raw", "example.com", "--copy", "--clear-after", "0s", "-o", "json")
	require.NoError(t, res.err)
	assert.NotContains(t, res.stdout, "Uo#Cd>!c{4j@MM7f")
}

func TestDeriveClipboardUnavailable(t *testing.T) {
	a, clip := newTestApp()
	clip.err = errors.New("no display")
	res := execute(t, a, testSecret, "derive", "--secret-stdin", "--raw", "example.com", "--copy")

	require.Error(t, res.err)
	assert.Equal(t, ExitFailure, exitCode(res.err))
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"missing url", []string{"derive", "--secret-stdin"}},
		{"extra args", []string{"derive", "--secret-stdin", "a.com", "b.com"}},
		{"unknown flag", []string{"derive", "--bogus", "a.com"}},
		{"bad output", []string{"derive", "--secret-stdin", "-o", "xml", "a.com"}},
		{"negative clear", []string{"derive", "--secret-stdin", "--copy", "--clear-after", "-1s", "a.com"}},
		{"bad log level", []string{"--log-level", "loud", "domain", "a.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, _ := newTestApp()
			res := execute(t, a, testSecret, tt.args...)
			require.Error(t, res.err)
			assert.Equal(t, ExitUsage, exitCode(res.err))
		})
	}
}

func TestMissingExplicitConfig(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, "", "--config", filepath.Join(t.TempDir(), "nope.yaml"), "domain", "a.com")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsage, exitCode(res.err))
}

func TestDomainCommand(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, "", "domain", "  HTTPS://WWW.Example.COM:8443/path  ")
	require.NoError(t, res.err)
	assert.Equal(t, "example.com\n", res.stdout)

	res = execute(t, a, "", "domain", "-o", "json", "https://bücher.example")
	require.NoError(t, res.err)
	var out domainOutput
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &out))
	assert.Equal(t, "xn--bcher-kva.example", out.Domain)
}

func TestFingerprintCommandIsStable(t *testing.T) {
	a, _ := newTestApp()
	first := execute(t, a, testSecret, "fingerprint", "--secret-stdin")
	require.NoError(t, first.err)

	b, _ := newTestApp()
	second := execute(t, b, testSecret, "fingerprint", "--secret-stdin")
	require.NoError(t, second.err)

	assert.Equal(t, first.stdout, second.stdout)
	assert.NotContains(t, first.stdout, testSecret)
	assert.NotEmpty(t, strings.TrimSpace(first.stdout))
}

func TestTokenCommand(t *testing.T) {
	key := strings.Repeat("k", 32)
	t.Setenv("PAWMA_TOKEN_KEY", key)

	a, _ := newTestApp()
	res := execute(t, a, "", "token", "--subject", "laptop", "--scope", "derive")
	require.NoError(t, res.err)

	m, err := jwt.NewManager(jwt.Config{TTL: time.Hour, SigningMethod: jwt.MethodHS256, PrivateKey: []byte(key)})
	require.NoError(t, err)
	claims, err := m.Parse(strings.TrimSpace(res.stdout))
	require.NoError(t, err)
	assert.Equal(t, "laptop", claims.Subject)
	assert.Equal(t, "pawma", claims.Issuer)
	assert.True(t, claims.HasScope(jwt.ScopeDerive))
	assert.False(t, claims.HasScope(jwt.ScopeDomain))
}

func TestTokenCommandWithoutKey(t *testing.T) {
	a, _ := newTestApp()
	res := execute(t, a, "", "token")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsage, exitCode(res.err))
}

func TestTokenCommandUnknownScope(t *testing.T) {
	t.Setenv("PAWMA_TOKEN_KEY", strings.Repeat("k", 32))
	a, _ := newTestApp()
	res := execute(t, a, "", "token", "--scope", "admin")
	require.Error(t, res.err)
	assert.Equal(t, ExitUsage, exitCode(res.err))
}

func TestVersionIgnoresBrokenConfig(t *testing.T) {
	a, _ := newTestApp()
	cfg := writeConfig(t, "output: [not, a, string\n")
	res := execute(t, a, "", "--config", cfg, "version")
	require.NoError(t, res.err)
	assert.Contains(t, res.stdout, "pawma dev")
}

func TestRunExitCodes(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	assert.Equal(t, ExitSuccess, run(context.Background(), []string{"version"}))
	assert.Equal(t, ExitUsage, run(context.Background(), []string{"domain"}))
	assert.Equal(t, ExitFailure, run(context.Background(), []string{"domain", "http://"}))
}
