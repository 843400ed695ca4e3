package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/jeffijoe/typesync/pkg/cache"
	"github.com/jeffijoe/typesync/pkg/config"
	"github.com/jeffijoe/typesync/pkg/errors"
	"github.com/jeffijoe/typesync/pkg/manifest"
	"github.com/jeffijoe/typesync/pkg/typesync"
)

var registryDocs = map[string]any{
	"lodash": map[string]any{
		"dist-tags": map[string]string{"latest": "4.17.21"},
		"versions": map[string]any{
			"4.17.20": map[string]any{"version": "4.17.20"},
			"4.17.21": map[string]any{"version": "4.17.21"},
		},
	},
	"@types/lodash": map[string]any{
		"dist-tags": map[string]string{"latest": "4.17.5"},
		"versions": map[string]any{
			"4.14.0": map[string]any{"version": "4.14.0"},
			"4.17.5": map[string]any{"version": "4.17.5"},
		},
	},
	"typescript": map[string]any{
		"dist-tags": map[string]string{"latest": "5.4.0"},
		"versions": map[string]any{
			"5.4.0": map[string]any{"version": "5.4.0", "types": "lib/typescript.d.ts"},
		},
	},
}

// newRegistry serves registryDocs and counts requests.
func newRegistry(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var hits atomic.Int32

	serve := func(w http.ResponseWriter, name string) {
		hits.Add(1)
		doc, ok := registryDocs[name]
		if !ok {
			http.NotFound(w, nil)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(doc)
	}

	r := chi.NewRouter()
	r.Get("/{name}", func(w http.ResponseWriter, req *http.Request) {
		name, err := url.PathUnescape(chi.URLParam(req, "name"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		serve(w, name)
	})
	r.Get("/{scope}/{name}", func(w http.ResponseWriter, req *http.Request) {
		serve(w, chi.URLParam(req, "scope")+"/"+chi.URLParam(req, "name"))
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &hits
}

const appManifest = `{
  "name": "app",
  "dependencies": {
    "lodash": "^4.17.20"
  },
  "devDependencies": {
    "typescript": "^5.4.0"
  }
}
`

func writeManifest(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "package.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

// clearEnv keeps TYPESYNC_* variables of the host out of the test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		flagDry, flagIgnoreDeps, flagIgnorePackages, flagIgnoreProjects,
		flagRegistry, flagToken, flagCache, flagCacheTTL, flagRefresh, flagConcurrency,
	} {
		t.Setenv(envPrefix+"_"+strings.ToUpper(strings.ReplaceAll(name, "-", "_")), "")
	}
}

// run executes the CLI and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := New(io.Discard, LogInfo).RootCommand()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func devDependencies(t *testing.T, path string) []manifest.Entry {
	t.Helper()
	doc, err := manifest.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return doc.Entries("devDependencies")
}

func TestSyncCommand(t *testing.T) {
	clearEnv(t)
	srv, _ := newRegistry(t)
	path := writeManifest(t, appManifest)

	out, err := run(t, path, "--registry", srv.URL)
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	want := []manifest.Entry{
		{Name: "@types/lodash", Version: "~4.17.5"},
		{Name: "typescript", Version: "^5.4.0"},
	}
	if diff := cmp.Diff(want, devDependencies(t, path)); diff != "" {
		t.Errorf("devDependencies mismatch (-want +got):\n%s", diff)
	}
	for _, s := range []string{"TypeSync", "1 new typings added.", "📦 app", "└─ + @types/lodash", "npm install"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
	if strings.Contains(out, "DRY RUN") {
		t.Errorf("output should not mention a dry run:\n%s", out)
	}
}

func TestSyncCommandDry(t *testing.T) {
	clearEnv(t)
	srv, _ := newRegistry(t)
	path := writeManifest(t, appManifest)

	out, err := run(t, path, "--registry", srv.URL, "--dry")
	if err != nil {
		t.Fatalf("sync: %v", err)
	}

	data, _ := os.ReadFile(path)
	if string(data) != appManifest {
		t.Errorf("dry run modified the manifest:\n%s", data)
	}
	for _, s := range []string{"DRY RUN", "1 new typings can be added.", "@types/lodash", "--dry"} {
		if !strings.Contains(out, s) {
			t.Errorf("output missing %q:\n%s", s, out)
		}
	}
}

func TestSyncCommandDryFail(t *testing.T) {
	clearEnv(t)
	srv, _ := newRegistry(t)
	path := writeManifest(t, appManifest)

	out, err := run(t, path, "--registry", srv.URL, "--dry=fail")
	if !errors.Is(err, errors.ErrCodeChangesPending) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeChangesPending)
	}
	if ExitCode(err) != 1 {
		t.Errorf("ExitCode() = %d, want 1", ExitCode(err))
	}
	if !strings.Contains(out, "@types/lodash") {
		t.Errorf("output should list the missing typings:\n%s", out)
	}
	data, _ := os.ReadFile(path)
	if string(data) != appManifest {
		t.Errorf("--dry=fail modified the manifest:\n%s", data)
	}
}

func TestSyncCommandAlreadySynced(t *testing.T) {
	clearEnv(t)
	srv, _ := newRegistry(t)
	path := writeManifest(t, appManifest)

	if _, err := run(t, path, "--registry", srv.URL); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, path, "--registry", srv.URL, "--dry=fail")
	if err != nil {
		t.Fatalf("second run: %v", err)
	}
	if !strings.Contains(out, "all synced up") {
		t.Errorf("output = %q, want synced message", out)
	}
}

func TestSyncCommandMissingManifest(t *testing.T) {
	clearEnv(t)
	srv, _ := newRegistry(t)
	path := filepath.Join(t.TempDir(), "package.json")

	_, err := run(t, path, "--registry", srv.URL)
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Fatalf("err = %v, want %s", err, errors.ErrCodeFileNotFound)
	}
}

func TestSyncCommandIgnoreDepsFromEnv(t *testing.T) {
	clearEnv(t)
	srv, _ := newRegistry(t)
	path := writeManifest(t, appManifest)
	t.Setenv("TYPESYNC_IGNOREDEPS", "deps")
	t.Setenv("TYPESYNC_REGISTRY", srv.URL)

	out, err := run(t, path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "all synced up") {
		t.Errorf("output = %q, want nothing added", out)
	}
}

func TestSyncCommandFileCache(t *testing.T) {
	clearEnv(t)
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	srv, hits := newRegistry(t)
	path := writeManifest(t, appManifest)

	if _, err := run(t, path, "--registry", srv.URL, "--dry", "--cache", "file"); err != nil {
		t.Fatal(err)
	}
	first := hits.Load()
	if _, err := run(t, path, "--registry", srv.URL, "--dry", "--cache", "file"); err != nil {
		t.Fatal(err)
	}

	// Only the @types/typescript 404 is not cached.
	if got := hits.Load() - first; got != 1 {
		t.Errorf("second run made %d registry requests, want 1", got)
	}

	out, err := run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cleared 3 cached entries") {
		t.Errorf("cache clear output = %q", out)
	}
}

func TestCachePathCommand(t *testing.T) {
	xdg := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", xdg)

	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(xdg, appName); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCacheClearEmpty(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	out, err := run(t, "cache", "clear")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "Cache is empty") {
		t.Errorf("output = %q", out)
	}
}

func TestCompletionCommand(t *testing.T) {
	out, err := run(t, "completion", "bash")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "typesync") {
		t.Error("bash completion should mention the command name")
	}
	if _, err := run(t, "completion", "tcsh"); err == nil {
		t.Error("unknown shell should fail")
	}
}

func TestCompleteCacheFlag(t *testing.T) {
	got, directive := completeCacheFlag(nil, nil, "re")
	if diff := cmp.Diff([]string{"redis://localhost:6379/0"}, got); diff != "" {
		t.Errorf("completeCacheFlag(re) mismatch (-want +got):\n%s", diff)
	}
	if directive != cobra.ShellCompDirectiveNoFileComp {
		t.Errorf("directive = %v, want NoFileComp", directive)
	}
}

func TestLoadSettings(t *testing.T) {
	tests := []struct {
		name string
		args []string
		env  map[string]string
		want syncSettings
	}{
		{
			name: "defaults",
			want: syncSettings{
				path:        "package.json",
				registry:    "https://registry.npmjs.org",
				cacheTTL:    time.Hour,
				concurrency: typesync.DefaultConcurrency,
			},
		},
		{
			name: "flags",
			args: []string{
				"web/package.json", "--dry=fail", "--ignoredeps=dev, peer", "--ignorepackages=react,",
				"--ignoreprojects=", "--registry=http://localhost:4873", "--token=s3cret",
				"--cache=file", "--cache-ttl=5m", "--refresh", "--concurrency=2",
			},
			want: syncSettings{
				path: "web/package.json",
				dry:  dryFail,
				overrides: config.File{
					IgnoreDeps:     []string{"dev", "peer"},
					IgnorePackages: []string{"react"},
					IgnoreProjects: []string{},
				},
				registry:    "http://localhost:4873",
				token:       "s3cret",
				cache:       "file",
				cacheTTL:    5 * time.Minute,
				refresh:     true,
				concurrency: 2,
			},
		},
		{
			name: "environment",
			env: map[string]string{
				"TYPESYNC_DRY":            "true",
				"TYPESYNC_IGNOREPACKAGES": "lodash",
				"TYPESYNC_TOKEN":          "from-env",
				"TYPESYNC_CACHE_TTL":      "30s",
			},
			want: syncSettings{
				path:        "package.json",
				dry:         dryOn,
				overrides:   config.File{IgnorePackages: []string{"lodash"}},
				registry:    "https://registry.npmjs.org",
				token:       "from-env",
				cacheTTL:    30 * time.Second,
				concurrency: typesync.DefaultConcurrency,
			},
		},
		{
			name: "flag wins over environment",
			args: []string{"--token=from-flag"},
			env:  map[string]string{"TYPESYNC_TOKEN": "from-env"},
			want: syncSettings{
				path:        "package.json",
				registry:    "https://registry.npmjs.org",
				token:       "from-flag",
				cacheTTL:    time.Hour,
				concurrency: typesync.DefaultConcurrency,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			cmd := New(io.Discard, LogInfo).RootCommand()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			got, err := loadSettings(cmd.Flags(), cmd.Flags().Args())
			if err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(tt.want, got, cmp.AllowUnexported(syncSettings{})); diff != "" {
				t.Errorf("loadSettings() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLoadSettingsInvalid(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"dry value", []string{"--dry=maybe"}},
		{"section", []string{"--ignoredeps=dev,tests"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			cmd := New(io.Discard, LogInfo).RootCommand()
			if err := cmd.ParseFlags(tt.args); err != nil {
				t.Fatal(err)
			}
			_, err := loadSettings(cmd.Flags(), cmd.Flags().Args())
			if !errors.Is(err, errors.ErrCodeInvalidInput) {
				t.Errorf("err = %v, want %s", err, errors.ErrCodeInvalidInput)
			}
		})
	}
}

func TestSplitList(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", []string{}},
		{"dev", []string{"dev"}},
		{" dev , peer ,,", []string{"dev", "peer"}},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, splitList(tt.in)); diff != "" {
			t.Errorf("splitList(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestNewCache(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", t.TempDir())
	ctx := context.Background()

	c, err := newCache(ctx, "")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.NullCache); !ok {
		t.Errorf("newCache(\"\") = %T, want *cache.NullCache", c)
	}

	c, err = newCache(ctx, "file")
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.(*cache.FileCache); !ok {
		t.Errorf("newCache(\"file\") = %T, want *cache.FileCache", c)
	}

	if _, err := newCache(ctx, "memcached://localhost"); !errors.Is(err, errors.ErrCodeInvalidInput) {
		t.Errorf("unknown cache: err = %v", err)
	}
	if _, err := newCache(ctx, "redis://localhost:1/not-a-db"); !errors.Is(err, errors.ErrCodeInvalidConfig) {
		t.Errorf("bad redis URL: err = %v", err)
	}
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, 0},
		{context.Canceled, 130},
		{errors.Wrap(errors.ErrCodeRegistry, context.Canceled, "fetch lodash"), 130},
		{errors.New(errors.ErrCodeFileNotFound, "package.json does not exist."), 1},
	}
	for _, tt := range tests {
		if got := ExitCode(tt.err); got != tt.want {
			t.Errorf("ExitCode(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	ReportError(&buf, errors.New(errors.ErrCodeFileNotFound, "package.json does not exist."))
	got := buf.String()
	if !strings.Contains(got, "package.json does not exist.") || strings.Contains(got, "FILE_NOT_FOUND") {
		t.Errorf("ReportError() = %q", got)
	}
}
