// Command issueflow turns a GitHub issue into a pull request.
//
// Usage:
//
//	issueflow run --repo acme/widgets --issue 42 [--thread ID] [--repo-path DIR]
//	issueflow config show
//	issueflow config set [--local] KEY VALUE
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sort"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/randalmurphal/issueflow"
	"github.com/randalmurphal/issueflow/checkpoint"
	"github.com/randalmurphal/issueflow/config"
	devcontext "github.com/randalmurphal/issueflow/context"
	clierrors "github.com/randalmurphal/issueflow/errors"
	"github.com/randalmurphal/issueflow/git"
	"github.com/randalmurphal/issueflow/graph"
	"github.com/randalmurphal/issueflow/notify"
	"github.com/randalmurphal/issueflow/workflow"
)

const usage = `Usage:
  issueflow run --repo OWNER/NAME --issue N [--thread ID] [--repo-path DIR] [--base-branch B] [--log-level L]
  issueflow config show
  issueflow config set [--local] KEY VALUE
`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("missing command")
	}

	switch args[0] {
	case "run":
		return runIssue(ctx, args[1:], stdout, stderr)
	case "config":
		return runConfig(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("unknown command %q", args[0])
	}
}

// =============================================================================
// run
// =============================================================================

type runFlags struct {
	repo       string
	issue      int
	thread     string
	repoPath   string
	baseBranch string
	logLevel   string
}

func parseRunFlags(args []string, stderr io.Writer) (runFlags, error) {
	var f runFlags
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&f.repo, "repo", "", "repository as owner/name")
	fs.IntVar(&f.issue, "issue", 0, "issue number")
	fs.StringVar(&f.thread, "thread", "", "thread id; reuse one to rerun or inspect a previous run")
	fs.StringVar(&f.repoPath, "repo-path", "", "local checkout of the repository")
	fs.StringVar(&f.baseBranch, "base-branch", "", "branch the pull request targets")
	fs.StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error")
	if err := fs.Parse(args); err != nil {
		return f, err
	}

	if f.repo == "" || f.issue <= 0 {
		return f, fmt.Errorf("--repo and --issue are required")
	}
	if !strings.Contains(f.repo, "/") {
		return f, fmt.Errorf("--repo must be owner/name, got %q", f.repo)
	}
	return f, nil
}

func (f runFlags) overrides() map[string]string {
	return map[string]string{
		config.KeyRepoPath:   f.repoPath,
		config.KeyBaseBranch: f.baseBranch,
		config.KeyLogLevel:   f.logLevel,
	}
}

func loadSettings(overrides map[string]string) (config.Settings, error) {
	resolver := config.NewResolver(config.DefaultResolverConfig())
	settings, err := config.LoadSettings(resolver.ResolveWithFlags(overrides))
	if err != nil {
		return settings, clierrors.NewConfigError(err)
	}
	if err := settings.Validate(); err != nil {
		return settings, clierrors.NewConfigError(err)
	}
	return settings, nil
}

func newLogger(settings config.Settings, w io.Writer) *slog.Logger {
	level, _ := config.ParseLevel(settings.LogLevel)
	opts := &slog.HandlerOptions{Level: level}
	if settings.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func runIssue(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags, err := parseRunFlags(args, stderr)
	if err != nil {
		return err
	}
	settings, err := loadSettings(flags.overrides())
	if err != nil {
		return err
	}
	logger := newLogger(settings, stderr)

	services, err := devcontext.NewServices(ctx, settings, flags.repo, logger)
	if err != nil {
		if errors.Is(err, git.ErrNotGitRepo) {
			return clierrors.NewNotInGitRepoError(settings.RepoPath)
		}
		return clierrors.WrapAPIError(err, "GitHub")
	}

	store, closeStore, err := openStore(ctx, settings.DatabaseURL)
	if err != nil {
		return err
	}
	defer closeStore()

	threadID := flags.thread
	if threadID == "" {
		if threadID, err = newThreadID(flags.repo, flags.issue); err != nil {
			return err
		}
	} else if prev, ok, err := store.Get(ctx, threadID); err != nil {
		return fmt.Errorf("load thread %s: %w", threadID, err)
	} else if ok && prev.Status == workflow.StatusPRCreated {
		fmt.Fprintf(stdout, "Thread %s already opened %s\n", threadID, prev.PRURL)
		return nil
	}

	compileOpts := []graph.CompileOption{graph.WithLogger(logger)}
	if settings.StopOnError {
		compileOpts = append(compileOpts, graph.WithErrorRouting(graph.StopOnError))
	}
	pipeline, err := issueflow.NewPipeline(store, issueflow.WithCompileOptions(compileOpts...))
	if err != nil {
		return err
	}

	cfg := workflow.DefaultNodeConfig()
	cfg.RepoRoot = services.Git.RepoPath()
	cfg.BaseBranch = settings.BaseBranch
	cfg.MaxDiffLines = settings.MaxDiffLines
	cfg.MaxAttempts = settings.MaxAttempts
	ctx = workflow.WithNodeConfig(services.InjectAll(ctx), cfg)

	started := notify.NewEvent(notify.EventRunStarted, threadID,
		fmt.Sprintf("Working on %s#%d", flags.repo, flags.issue))
	started.Repo = flags.repo
	started.IssueNumber = flags.issue
	if err := services.Notifier.Notify(ctx, started); err != nil {
		logger.Warn("notification failed", "event", started.Type, "error", err)
	}

	start := time.Now()
	final, err := pipeline.Run(ctx, workflow.NewState(flags.repo, flags.issue), graph.RunConfig{ThreadID: threadID})
	if err != nil {
		return fmt.Errorf("run %s: %w", threadID, err)
	}

	if err := services.Notifier.Notify(ctx, workflow.CompletionEvent(threadID, final)); err != nil {
		logger.Warn("notification failed", "error", err)
	}

	printSummary(stdout, threadID, final, start)
	if final.HasError() {
		return clierrors.WrapAPIError(fmt.Errorf("%s", final.Error), failedService(final))
	}
	return nil
}

// failedService names the remote service behind the node that failed last.
func failedService(s workflow.State) string {
	if len(s.Trace) == 0 {
		return "GitHub"
	}
	switch s.Trace[len(s.Trace)-1] {
	case workflow.NodePlanIssue, workflow.NodeExecuteIssue:
		return "Anthropic"
	}
	return "GitHub"
}

func openStore(ctx context.Context, path string) (checkpoint.Saver, func(), error) {
	if path == "" {
		return checkpoint.NewMemorySaver(), func() {}, nil
	}
	store, err := checkpoint.OpenSQLite(ctx, path)
	if err != nil {
		return nil, nil, clierrors.NewConfigError(fmt.Errorf("open database_url %s: %w", path, err))
	}
	return store, func() { store.Close() }, nil
}

const threadAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// newThreadID returns "<owner>-<name>-<issue>-<random>".
func newThreadID(repo string, issue int) (string, error) {
	suffix, err := nanoid.Generate(threadAlphabet, 8)
	if err != nil {
		return "", fmt.Errorf("generate thread id: %w", err)
	}
	return fmt.Sprintf("%s-%d-%s", strings.ReplaceAll(repo, "/", "-"), issue, suffix), nil
}

func printSummary(w io.Writer, threadID string, s workflow.State, start time.Time) {
	fmt.Fprintf(w, "Thread:   %s\n", threadID)
	fmt.Fprintf(w, "Status:   %s\n", s.Status)
	fmt.Fprintf(w, "Steps:    %s\n", strings.Join(s.Trace, " -> "))
	if s.Diff != "" {
		fmt.Fprintf(w, "Diff:     %s\n", humanize.Bytes(uint64(len(s.Diff))))
	}
	if s.PRURL != "" {
		fmt.Fprintf(w, "PR:       %s\n", s.PRURL)
	}
	if s.Error != "" {
		fmt.Fprintf(w, "Error:    %s\n", s.Error)
	}
	fmt.Fprintf(w, "Started:  %s\n", humanize.Time(start))
}

// =============================================================================
// config
// =============================================================================

func runConfig(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, usage)
		return fmt.Errorf("missing config subcommand")
	}

	switch args[0] {
	case "show":
		showConfig(stdout)
		return nil
	case "set":
		fs := flag.NewFlagSet("config set", flag.ContinueOnError)
		fs.SetOutput(stderr)
		local := fs.Bool("local", false, "write to .issueflow.yaml in the git root")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if fs.NArg() != 2 {
			return fmt.Errorf("config set needs KEY and VALUE")
		}
		return setConfig(*local, fs.Arg(0), fs.Arg(1))
	default:
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}
}

func showConfig(w io.Writer) {
	resolved := config.NewResolver(config.DefaultResolverConfig()).Resolve()
	keys := resolved.Keys()
	sort.Strings(keys)

	for _, key := range keys {
		value, source := resolved.GetWithSource(key)
		if isSecret(key) && value != "" {
			value = "********"
		}
		fmt.Fprintf(w, "%-24s %-40s (%s)\n", key, value, source)
	}
}

func setConfig(local bool, key, value string) error {
	save := config.DefaultSaveConfig()
	if !local {
		if err := save.SaveGlobal(key, value); err != nil {
			return clierrors.NewConfigError(err)
		}
		return nil
	}

	root := config.NewResolver(config.DefaultResolverConfig()).GitRoot()
	if err := save.SaveLocal(root, key, value); err != nil {
		if root == "" {
			return clierrors.NewNotInGitRepoError(".")
		}
		return clierrors.NewConfigError(err)
	}
	return nil
}

func isSecret(key string) bool {
	for _, k := range config.LocalKeys() {
		if k == key {
			return false
		}
	}
	return true
}
