package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattjoyce/sprocket/internal/api"
	"github.com/mattjoyce/sprocket/internal/config"
	"github.com/mattjoyce/sprocket/internal/doctor"
	"github.com/mattjoyce/sprocket/internal/history"
	"github.com/mattjoyce/sprocket/internal/invoke"
	"github.com/mattjoyce/sprocket/internal/lock"
	"github.com/mattjoyce/sprocket/internal/log"
	"github.com/mattjoyce/sprocket/internal/plugin"
	"github.com/mattjoyce/sprocket/internal/protocol"
	"github.com/mattjoyce/sprocket/internal/tui"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

var (
	nameStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39"))
	versionStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("243"))
	okStyle      = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	badStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	if cmd == "--version" {
		return runVersion(args)
	}

	switch cmd {
	// --- NOUNS ---
	case "plugin":
		return runPluginNoun(args)
	case "system":
		return runSystemNoun(args)
	case "history":
		return runHistoryNoun(args)

	// --- ROOT ALIASES ---
	case "list":
		return runPluginList(args)
	case "run":
		return runPluginRun(args)
	case "doctor":
		return runPluginDoctor(args)
	case "serve":
		return runServe(args)
	case "version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

// --- NOUN DISPATCHERS ---

func runPluginNoun(args []string) int {
	if len(args) < 1 {
		printPluginNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printPluginNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "list":
		if hasHelpFlag(actionArgs) {
			printPluginListHelp()
			return 0
		}
		return runPluginList(actionArgs)
	case "show":
		if hasHelpFlag(actionArgs) {
			printPluginShowHelp()
			return 0
		}
		return runPluginShow(actionArgs)
	case "run":
		if hasHelpFlag(actionArgs) {
			printPluginRunHelp()
			return 0
		}
		return runPluginRun(actionArgs)
	case "doctor":
		if hasHelpFlag(actionArgs) {
			printPluginDoctorHelp()
			return 0
		}
		return runPluginDoctor(actionArgs)
	case "browse":
		if hasHelpFlag(actionArgs) {
			printPluginBrowseHelp()
			return 0
		}
		return runPluginBrowse(actionArgs)
	case "help":
		printPluginNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown plugin action: %s\n", action)
		return 1
	}
}

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "serve":
		if hasHelpFlag(actionArgs) {
			printSystemServeHelp()
			return 0
		}
		return runServe(actionArgs)
	case "help":
		printSystemNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runHistoryNoun(args []string) int {
	if len(args) < 1 {
		printHistoryNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printHistoryNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "recent":
		if hasHelpFlag(actionArgs) {
			printHistoryRecentHelp()
			return 0
		}
		return runHistoryRecent(actionArgs)
	case "help":
		printHistoryNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown history action: %s\n", action)
		return 1
	}
}

// --- PLUGIN ACTIONS ---

func runPluginList(args []string) int {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	_, registry, code := loadAndDiscover(*configPath)
	if code != 0 {
		return code
	}

	plugins := registry.All()
	if *jsonOut {
		type entry struct {
			Name        string   `json:"name"`
			Version     string   `json:"version"`
			Description string   `json:"description,omitempty"`
			Actions     []string `json:"actions,omitempty"`
			Entrypoint  string   `json:"entrypoint"`
		}
		entries := make([]entry, 0, len(plugins))
		for _, p := range plugins {
			entries = append(entries, entry{
				Name:        p.Name,
				Version:     p.Version,
				Description: p.Description,
				Actions:     p.Actions,
				Entrypoint:  p.Entrypoint,
			})
		}
		data, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	if len(plugins) == 0 {
		fmt.Println("No plugins discovered.")
		return 0
	}
	for _, p := range plugins {
		fmt.Printf("%s %s\n", nameStyle.Render(p.Name), versionStyle.Render("v"+p.Version))
		if p.Description != "" {
			fmt.Printf("  %s\n", p.Description)
		}
		if len(p.Actions) > 0 {
			fmt.Printf("  actions: %s\n", strings.Join(p.Actions, ", "))
		}
	}
	return 0
}

func runPluginShow(args []string) int {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output in structured JSON format")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: sprocket plugin show <name> [--json]")
		return 1
	}

	cfg, registry, code := loadAndDiscover(*configPath)
	if code != 0 {
		return code
	}

	plug, ok := registry.Get(fs.Arg(0))
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown plugin: %s\n", fs.Arg(0))
		return 1
	}

	invoker := invoke.New(cfg.Service.InvokeTimeout)
	ctx := context.Background()

	meta, err := invoker.Metadata(ctx, plug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Introspection failed: %v\n", err)
		return 1
	}
	catalog, err := invoker.Actions(ctx, plug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Introspection failed: %v\n", err)
		return 1
	}

	if *jsonOut {
		out := map[string]any{
			"metadata":   meta,
			"actions":    catalog,
			"entrypoint": plug.Entrypoint,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("%s %s\n", nameStyle.Render(meta.Name), versionStyle.Render("v"+meta.Version))
	if meta.Description != "" {
		fmt.Println(meta.Description)
	}
	if meta.Author != "" {
		fmt.Printf("author: %s\n", meta.Author)
	}
	if len(meta.Tags) > 0 {
		fmt.Printf("tags: %s\n", strings.Join(meta.Tags, ", "))
	}
	fmt.Printf("entrypoint: %s\n", plug.Entrypoint)

	names := make([]string, 0, len(catalog))
	for name := range catalog {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nactions:")
	for _, name := range names {
		spec := catalog[name]
		fmt.Printf("  %s  %s\n", nameStyle.Render(name), spec.Description)
		for _, param := range sortedParamNames(spec.Inputs) {
			p := spec.Inputs[param]
			req := ""
			if p.Required {
				req = " (required)"
			}
			fmt.Printf("    %s: %s%s\n", param, p.Type, req)
		}
	}
	return 0
}

func runPluginRun(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	paramsJSON := fs.String("params", "", "Action parameters as a JSON object")
	timeout := fs.Duration("timeout", 0, "Override invocation timeout")
	jsonOut := fs.Bool("json", false, "Output the full invocation record as JSON")

	// key=value pairs may appear anywhere after the plugin and action.
	var kvPairs []string
	positional, flagArgs := splitKeyValueArgs(args)
	if err := fs.Parse(flagArgs); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	positional = append(positional, fs.Args()...)

	var names []string
	for _, arg := range positional {
		if strings.Contains(arg, "=") {
			kvPairs = append(kvPairs, arg)
		} else {
			names = append(names, arg)
		}
	}
	if len(names) != 2 {
		fmt.Fprintln(os.Stderr, "Usage: sprocket plugin run <plugin> <action> [key=value ...] [--params JSON]")
		return 1
	}
	pluginName, actionName := names[0], names[1]

	params := map[string]any{}
	if *paramsJSON != "" {
		if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid --params JSON: %v\n", err)
			return 1
		}
	}
	for _, pair := range kvPairs {
		parts := strings.SplitN(pair, "=", 2)
		params[parts[0]] = parseScalarValue(parts[1])
	}

	cfg, registry, code := loadAndDiscover(*configPath)
	if code != 0 {
		return code
	}

	plug, ok := registry.Get(pluginName)
	if !ok {
		fmt.Fprintf(os.Stderr, "Unknown plugin: %s\n", pluginName)
		return 1
	}

	invokeTimeout := cfg.Service.InvokeTimeout
	if *timeout > 0 {
		invokeTimeout = *timeout
	}
	invoker := invoke.New(invokeTimeout)

	inv, err := invoker.Invoke(context.Background(), plug, actionName, params)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invocation failed: %v\n", err)
		return 1
	}

	appendHistory(cfg, inv)

	if *jsonOut {
		out := map[string]any{
			"invocation_id": inv.ID,
			"plugin":        inv.Plugin,
			"action":        inv.Action,
			"outcome":       inv.Outcome,
			"exit_code":     inv.ExitCode,
			"duration_ms":   inv.Duration.Milliseconds(),
			"result":        inv.Result,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
	} else {
		data, _ := json.MarshalIndent(inv.Result, "", "  ")
		fmt.Println(string(data))
	}

	switch inv.Outcome {
	case invoke.OutcomeSuccess:
		return 0
	case invoke.OutcomeDomainError:
		return 1
	default:
		return 2
	}
}

func runPluginDoctor(args []string) int {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	jsonOut := fs.Bool("json", false, "Output the report as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, registry, code := loadAndDiscover(*configPath)
	if code != 0 {
		return code
	}

	invoker := invoke.New(cfg.Service.InvokeTimeout)
	report := doctor.New(registry, invoker).Check(context.Background())

	if *jsonOut {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
	} else {
		for _, check := range report.Plugins {
			status := okStyle.Render(string(check.Status))
			if check.Status != doctor.StatusHealthy {
				status = badStyle.Render(string(check.Status))
			}
			fmt.Printf("%s %s %s\n", status, nameStyle.Render(check.Plugin), versionStyle.Render("v"+check.Version))
			for _, problem := range check.Problems {
				fmt.Printf("  - %s\n", problem)
			}
		}
	}

	if !report.Healthy {
		return 1
	}
	return 0
}

func runPluginBrowse(args []string) int {
	fs := flag.NewFlagSet("browse", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, registry, code := loadAndDiscover(*configPath)
	if code != 0 {
		return code
	}

	invoker := invoke.New(cfg.Service.InvokeTimeout)
	if err := tui.Run(registry.All(), invoker); err != nil {
		fmt.Fprintf(os.Stderr, "TUI error: %v\n", err)
		return 1
	}
	return 0
}

// --- SYSTEM ACTIONS ---

func runServe(args []string) int {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	listen := fs.String("listen", "", "Override the API listen address")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel)
	logger := log.WithComponent("main")
	logger.Info("sprocket starting", "version", version)

	pidLock, err := lock.Acquire(cfg.Service.PIDFile)
	if err != nil {
		logger.Error("failed to acquire PID lock (another instance may be running)", "path", cfg.Service.PIDFile, "error", err)
		return 1
	}
	defer pidLock.Release()

	registry, err := plugin.DiscoverMany(cfg.PluginRoots, discoveryLogger(logger))
	if err != nil {
		logger.Error("plugin discovery failed", "roots", cfg.PluginRoots, "error", err)
		return 1
	}
	logger.Info("plugin discovery complete", "count", len(registry.All()))

	invoker := invoke.New(cfg.Service.InvokeTimeout)

	var store *history.Store
	var appender api.HistoryAppender
	if cfg.History.Enabled {
		store, err = history.Open(context.Background(), cfg.History.Path)
		if err != nil {
			logger.Error("failed to open history store", "path", cfg.History.Path, "error", err)
			return 1
		}
		defer store.Close()
		appender = store
		logger.Info("history store opened", "path", cfg.History.Path)
	}

	addr := cfg.API.Listen
	if *listen != "" {
		addr = *listen
	}

	server := api.New(api.Config{Listen: addr, AuthToken: cfg.API.AuthToken}, registry, invoker, appender, log.WithComponent("api"))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("server failed", "error", err)
		return 1
	}

	logger.Info("sprocket stopped")
	return 0
}

// --- HISTORY ACTIONS ---

func runHistoryRecent(args []string) int {
	fs := flag.NewFlagSet("recent", flag.ContinueOnError)
	configPath := fs.String("config", "", "Path to configuration file")
	pluginName := fs.String("plugin", "", "Filter by plugin name")
	limit := fs.Int("limit", 20, "Maximum records to show")
	jsonOut := fs.Bool("json", false, "Output records as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}
	if !cfg.History.Enabled {
		fmt.Fprintln(os.Stderr, "History is disabled; enable it in the config file.")
		return 1
	}

	ctx := context.Background()
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open history store: %v\n", err)
		return 1
	}
	defer store.Close()

	records, err := store.Recent(ctx, *pluginName, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read history: %v\n", err)
		return 1
	}

	if *jsonOut {
		data, _ := json.MarshalIndent(records, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	if len(records) == 0 {
		fmt.Println("No invocations recorded.")
		return 0
	}
	for _, rec := range records {
		outcome := okStyle.Render(string(rec.Outcome))
		if rec.Outcome != invoke.OutcomeSuccess {
			outcome = badStyle.Render(string(rec.Outcome))
		}
		fmt.Printf("%s  %s %s/%s  %s  %dms\n",
			rec.StartedAt.Format(time.RFC3339),
			outcome,
			nameStyle.Render(rec.Plugin),
			rec.Action,
			rec.ID,
			rec.DurationMS,
		)
		if rec.Error != "" {
			fmt.Printf("  error: %s\n", rec.Error)
		}
	}
	return 0
}

// --- SHARED HELPERS ---

func loadConfig(configPath string) (*config.Config, error) {
	if configPath == "" {
		if env := os.Getenv("SPROCKET_CONFIG"); env != "" {
			configPath = env
		} else if _, err := os.Stat("sprocket.yaml"); err == nil {
			configPath = "sprocket.yaml"
		} else {
			return config.Default(), nil
		}
	}
	return config.Load(configPath)
}

func loadAndDiscover(configPath string) (*config.Config, *plugin.Registry, int) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return nil, nil, 1
	}

	log.Setup(cfg.Service.LogLevel)
	registry, err := plugin.DiscoverMany(cfg.PluginRoots, discoveryLogger(log.WithComponent("discovery")))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Plugin discovery failed: %v\n", err)
		return nil, nil, 1
	}
	return cfg, registry, 0
}

func discoveryLogger(logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}) func(level, msg string, args ...any) {
	return func(level, msg string, args ...any) {
		switch level {
		case "debug":
			logger.Debug(msg, args...)
		case "info":
			logger.Info(msg, args...)
		case "warn":
			logger.Warn(msg, args...)
		case "error":
			logger.Error(msg, args...)
		}
	}
}

func appendHistory(cfg *config.Config, inv *invoke.Invocation) {
	if !cfg.History.Enabled {
		return
	}
	ctx := context.Background()
	store, err := history.Open(ctx, cfg.History.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: history unavailable: %v\n", err)
		return
	}
	defer store.Close()
	if err := store.Append(ctx, inv); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to record invocation: %v\n", err)
	}
}

// splitKeyValueArgs separates leading positional/key=value tokens from flag
// tokens so flags may follow the plugin and action names.
func splitKeyValueArgs(args []string) (positional, flags []string) {
	for i, arg := range args {
		if strings.HasPrefix(arg, "-") {
			return positional, args[i:]
		}
		positional = append(positional, arg)
	}
	return positional, nil
}

func parseScalarValue(raw string) any {
	if raw == "true" {
		return true
	}
	if raw == "false" {
		return false
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return float64(n)
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		return f
	}
	return raw
}

func sortedParamNames(params map[string]protocol.ParamSpec) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

// --- VERSION ---

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, _ := json.MarshalIndent(info, "", "  ")
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("sprocket %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}
	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	commit := strings.TrimSpace(gitCommit)
	if commit == "" || commit == "unknown" {
		commit = readBuildSetting("vcs.revision")
	}
	if commit != "" {
		if len(commit) > 12 {
			commit = commit[:12]
		}
		info.Commit = commit
	}

	built := strings.TrimSpace(buildDate)
	if built == "" || built == "unknown" {
		built = readBuildSetting("vcs.time")
	}
	if t, err := time.Parse(time.RFC3339Nano, built); err == nil {
		info.BuildTime = t.UTC().Format(time.RFC3339)
	}

	return info
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

// --- HELP TEXT ---

func printUsage() {
	fmt.Print(`sprocket - Subprocess plugin host

Usage:
  sprocket <noun> <action> [flags]

Core Resources (Nouns):
  plugin    Plugin discovery, inspection, and execution
  system    Host service lifecycle
  history   Invocation log

Plugin Commands:
  plugin list       Show discovered plugins
  plugin show       Show a plugin's metadata and action catalog
  plugin run        Execute a plugin action
  plugin doctor     Verify plugins respond to introspection
  plugin browse     Interactive plugin browser TUI

System Commands:
  system serve      Start the HTTP API in the foreground

History Commands:
  history recent    Show recent invocations

General:
  --version         Show version information
  version           Show version information
  help              Show this help message

Use 'sprocket <noun> help' for resource-specific flags.
`)
}

func printPluginNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: sprocket plugin <action> [flags]")
	fmt.Fprintln(w, "Actions: list, show, run, doctor, browse")
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: sprocket system <action> [flags]")
	fmt.Fprintln(w, "Actions: serve")
}

func printHistoryNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: sprocket history <action> [flags]")
	fmt.Fprintln(w, "Actions: recent")
}

func printPluginListHelp() {
	fmt.Println("Usage: sprocket plugin list [--config PATH] [--json]")
	fmt.Println("Show plugins discovered under the configured plugin roots.")
}

func printPluginShowHelp() {
	fmt.Println("Usage: sprocket plugin show <name> [--config PATH] [--json]")
	fmt.Println("Show live metadata and the action catalog for one plugin.")
}

func printPluginRunHelp() {
	fmt.Println("Usage: sprocket plugin run <plugin> <action> [key=value ...] [flags]")
	fmt.Println()
	fmt.Println("Execute a plugin action. Parameters may be given as key=value pairs")
	fmt.Println("(values are parsed as bool, number, or string) or as a JSON object")
	fmt.Println("via --params; key=value pairs override --params entries.")
	fmt.Println()
	fmt.Println("Flags:")
	fmt.Println("  --params JSON      Parameters as a JSON object")
	fmt.Println("  --timeout DUR      Override the invocation timeout")
	fmt.Println("  --json             Output the full invocation record")
	fmt.Println()
	fmt.Println("Exit codes:")
	fmt.Println("  0  Action succeeded")
	fmt.Println("  1  Action reported an error")
	fmt.Println("  2  Plugin violated the protocol")
}

func printPluginDoctorHelp() {
	fmt.Println("Usage: sprocket plugin doctor [--config PATH] [--json]")
	fmt.Println("Run introspection against every discovered plugin and report health.")
}

func printPluginBrowseHelp() {
	fmt.Println("Usage: sprocket plugin browse [--config PATH]")
	fmt.Println("Interactive TUI listing plugins and their action catalogs.")
}

func printSystemServeHelp() {
	fmt.Println("Usage: sprocket system serve [--config PATH] [--listen ADDR]")
	fmt.Println("Start the HTTP API server in the foreground.")
}

func printHistoryRecentHelp() {
	fmt.Println("Usage: sprocket history recent [--config PATH] [--plugin NAME] [--limit N] [--json]")
	fmt.Println("Show recent invocations from the history store, newest first.")
}
