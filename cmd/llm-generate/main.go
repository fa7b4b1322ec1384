// Command llm-generate sends one prompt to the configured LLM provider and
// prints the generated text, or the decoded JSON when -schema is given.
//
// Configuration is loaded from config.yml, a .env file and LLM_GENERATE_*
// environment variables (nested keys use "__", e.g.
// LLM_GENERATE_LLM__OPTIONS__MODEL). The provider API key falls back to
// <PROVIDER>_API_KEY, e.g. OPENAI_API_KEY.
package main

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/kbukum/llmkit/config"
	"github.com/kbukum/llmkit/llm"
	"github.com/kbukum/llmkit/llm/gemini"
	"github.com/kbukum/llmkit/llm/ollama"
	"github.com/kbukum/llmkit/llm/openai"
	"github.com/kbukum/llmkit/logger"
	"github.com/kbukum/llmkit/observability"
	"github.com/kbukum/llmkit/provider"
	"github.com/kbukum/llmkit/util"
	"github.com/kbukum/llmkit/version"
)

const (
	serviceName     = "llm-generate"
	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdin, os.Stdout, os.Stderr, os.Getenv)
	stop()
	os.Exit(code)
}

type options struct {
	configFile  string
	envFile     string
	provider    string
	model       string
	prompt      string
	schemaFile  string
	timeout     time.Duration
	showVersion bool
}

func parseFlags(args []string, stderr io.Writer) (options, error) {
	var o options
	fs := flag.NewFlagSet(serviceName, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&o.configFile, "config", "", "path to config.yml")
	fs.StringVar(&o.envFile, "env", "", "path to .env file")
	fs.StringVar(&o.provider, "provider", "", "provider name (openai, gemini, ollama); overrides llm.provider")
	fs.StringVar(&o.model, "model", "", "model name; overrides llm.options.model")
	fs.StringVar(&o.prompt, "prompt", "", "prompt text; read from stdin when empty")
	fs.StringVar(&o.schemaFile, "schema", "", "JSON schema file; enables structured output")
	fs.DurationVar(&o.timeout, "timeout", 0, "request timeout; overrides llm.options.timeout")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	return o, fs.Parse(args)
}

// registerProviders makes every built-in vendor available by name.
func registerProviders(reg *provider.Registry[llm.Provider]) {
	openai.Register(reg)
	gemini.Register(reg)
	ollama.Register(reg)
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer, getenv func(string) string) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if stderrors.Is(err, flag.ErrHelp) {
			return 0
		}
		return 2
	}
	if opts.showVersion {
		info := version.GetVersionInfo()
		fmt.Fprintf(stdout, "%s %s (commit %s, built %s, %s)\n", serviceName,
			info.Version, util.Coalesce(info.GitCommit, "unknown"), util.Coalesce(info.BuildTime, "unknown"), info.GoVersion)
		return 0
	}

	cfg, err := loadConfig(opts, getenv)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if err := logger.Init(cfg.Logging); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	log := logger.GetGlobalLogger().WithComponent(serviceName)

	shutdown, err := startTelemetry(ctx, cfg.Telemetry)
	if err != nil {
		log.Warn("telemetry disabled", logger.ErrorFields("init_telemetry", err))
	}
	defer shutdown()

	schema, err := loadSchema(opts.schemaFile)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	prompt, err := readPrompt(opts.prompt, stdin)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	manager := llm.NewManager(llm.NewRegistry())
	registerProviders(manager.Registry())
	if err := manager.Initialize(cfg.LLM.Provider, cfg.LLM.Options); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := manager.Close(closeCtx); err != nil {
			log.Warn("closing providers", logger.ErrorFields("close", err))
		}
	}()

	p, err := manager.Default()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	p, err = instrument(p, log)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	res, err := p.Generate(ctx, prompt, schema)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := writeResult(stdout, res); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	return 0
}

func loadConfig(opts options, getenv func(string) string) (*config.AppConfig, error) {
	var loadOpts []config.LoaderOption
	if opts.configFile != "" {
		if _, err := os.Stat(opts.configFile); err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		loadOpts = append(loadOpts, config.WithConfigFile(opts.configFile))
	}
	if opts.envFile != "" {
		loadOpts = append(loadOpts, config.WithEnvFile(opts.envFile))
	}

	cfg := &config.AppConfig{}
	if err := config.LoadConfig(serviceName, cfg, loadOpts...); err != nil {
		return nil, err
	}
	cfg.Name = util.Coalesce(cfg.Name, serviceName)
	if opts.provider != "" {
		cfg.LLM.Provider = opts.provider
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if opts.model != "" {
		cfg.LLM.Options["model"] = opts.model
	}
	if opts.timeout > 0 {
		cfg.LLM.Options["timeout"] = opts.timeout
	}
	if _, ok := cfg.LLM.Options["api_key"]; !ok {
		if key := getenv(strings.ToUpper(cfg.LLM.Provider) + "_API_KEY"); key != "" {
			cfg.LLM.Options["api_key"] = key
		}
	}
	return cfg, nil
}

// startTelemetry installs OTLP tracer and meter providers when enabled. The
// returned function flushes and stops them.
func startTelemetry(ctx context.Context, cfg observability.Config) (func(), error) {
	noop := func() {}
	if !cfg.Enabled {
		return noop, nil
	}
	tp, err := observability.InitTracer(ctx, cfg)
	if err != nil {
		return noop, err
	}
	mp, err := observability.InitMeter(ctx, cfg)
	if err != nil {
		return func() { shutdownWithTimeout(tp.Shutdown) }, err
	}
	return func() {
		shutdownWithTimeout(tp.Shutdown)
		shutdownWithTimeout(mp.Shutdown)
	}, nil
}

func shutdownWithTimeout(fn func(context.Context) error) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	_ = fn(ctx)
}

func instrument(p llm.Provider, log *logger.Logger) (llm.Provider, error) {
	metrics, err := observability.NewMetrics(observability.Meter(serviceName))
	if err != nil {
		return nil, err
	}
	return llm.Wrap(p,
		provider.WithTracing[llm.Request, llm.Result](observability.SpanGenerate),
		provider.WithMetrics[llm.Request, llm.Result](metrics),
		provider.WithLogging[llm.Request, llm.Result](log),
	), nil
}

func loadSchema(path string) (any, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	var schema any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("schema %s: invalid JSON: %w", path, err)
	}
	if schema == nil {
		return nil, fmt.Errorf("schema %s: must not be null", path)
	}
	return schema, nil
}

func readPrompt(flagValue string, stdin io.Reader) (string, error) {
	prompt := flagValue
	if prompt == "" && stdin != nil {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read prompt from stdin: %w", err)
		}
		prompt = string(data)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", fmt.Errorf("prompt is required (use -prompt or stdin)")
	}
	return prompt, nil
}

func writeResult(w io.Writer, res llm.Result) error {
	if !res.IsStructured() {
		_, err := fmt.Fprintln(w, res.Text)
		return err
	}
	out, err := json.MarshalIndent(res.Value, "", "  ")
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
