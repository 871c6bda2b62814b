// Package cli implementa weightctl: registro de pesajes, consultas, reportes,
// simulación de metas, exportación xlsx, respaldo a S3 y consumo AMQP.
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/segmentio/encoding/json"

	"herd-weight-tracker/internal/adapters/storage"
	"herd-weight-tracker/internal/domain/analytics"
	"herd-weight-tracker/internal/domain/forecast"
	"herd-weight-tracker/internal/domain/weights"
	"herd-weight-tracker/internal/platform/config"
	"herd-weight-tracker/internal/platform/logger"
)

const (
	ExitSuccess           = 0
	ExitFailure           = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
)

type InvocationError struct {
	Message string
}

func (e *InvocationError) Error() string { return e.Message }

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{Message: fmt.Sprintf(format, args...)}
}

// Env son las dependencias externas del proceso. Repo != nil evita abrir el store configurado.
type Env struct {
	Stdout io.Writer
	Stderr io.Writer
	Repo   weights.Repository
	Logger logger.Logger
}

type app struct {
	cfg     config.Config
	log     logger.Logger
	out     io.Writer
	asJSON  bool
	repo    weights.Repository
	svc     *weights.Service
	facade  *analytics.Facade
	closeFn func() error
}

type command struct {
	name string
	args string
	help string
	run  func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"weigh", `-id ID -kg KG [-at "YYYY-MM-DD HH:MM:SS"]`, "registrar un pesaje", runWeigh},
	{"animals", "", "listar animales", runAnimals},
	{"timestamps", "", "listar timestamps registrados", runTimestamps},
	{"lookup", `-id ID -at "YYYY-MM-DD HH:MM:SS"`, "peso exacto en un timestamp", runLookup},
	{"history", "-id ID", "historial y GMD de un animal", runHistory},
	{"herd", "", "reporte del rebaño", runHerd},
	{"simulate", "-id ID -target KG -price PRICE", "simular meta de peso", runSimulate},
	{"export", "-o FILE.xlsx", "exportar la planilla", runExport},
	{"backup", "", "subir la planilla a S3", runBackup},
	{"consume", "", "consumir pesajes desde AMQP", runConsume},
}

// Run devuelve el código de salida del proceso.
func Run(ctx context.Context, args []string, env Env) int {
	if env.Stdout == nil {
		env.Stdout = io.Discard
	}
	if env.Stderr == nil {
		env.Stderr = io.Discard
	}

	fs := flag.NewFlagSet("weightctl", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var cfgPath string
	var asJSON bool
	fs.StringVar(&cfgPath, "config", "", "YAML config path (optional)")
	fs.BoolVar(&asJSON, "json", false, "JSON output")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(env.Stderr, "weightctl: %v\n", err)
		usage(env.Stderr)
		return ExitInvalidInvocation
	}
	if fs.NArg() == 0 {
		usage(env.Stderr)
		return ExitInvalidInvocation
	}

	name, rest := fs.Arg(0), fs.Args()[1:]
	cmd, ok := lookupCommand(name)
	if !ok {
		fmt.Fprintf(env.Stderr, "weightctl: unknown command %q\n", name)
		usage(env.Stderr)
		return ExitInvalidInvocation
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Fprintf(env.Stderr, "weightctl: %v\n", err)
		return ExitConfigError
	}

	a, err := newApp(ctx, cfg, env, asJSON)
	if err != nil {
		fmt.Fprintf(env.Stderr, "weightctl: %v\n", err)
		return ExitConfigError
	}
	defer a.close()

	if err := cmd.run(ctx, a, rest); err != nil {
		fmt.Fprintf(env.Stderr, "weightctl %s: %v\n", name, err)
		var inv *InvocationError
		if errors.As(err, &inv) {
			return ExitInvalidInvocation
		}
		return ExitFailure
	}
	return ExitSuccess
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

func usage(w io.Writer) {
	fmt.Fprintln(w, "usage: weightctl [-config FILE] [-json] <command> [flags]")
	fmt.Fprintln(w, "")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-11s %-45s %s\n", c.name, c.args, c.help)
	}
}

func newApp(ctx context.Context, cfg config.Config, env Env, asJSON bool) (*app, error) {
	log := env.Logger
	if log == nil {
		log = logger.New(logger.Options{
			Level:  logger.ParseLevel(cfg.Log.Level),
			Format: logger.ParseFormat(cfg.Log.Format),
			App:    cfg.Log.App,
		})
	}

	a := &app{cfg: cfg, log: log, out: env.Stdout, asJSON: asJSON, repo: env.Repo}
	if a.repo == nil {
		st, err := storage.Open(ctx, cfg.Storage, log)
		if err != nil {
			return nil, err
		}
		a.repo = st.Repo
		a.closeFn = st.Close
	}

	loc, err := cfg.Storage.TimeLocation()
	if err != nil {
		return nil, err
	}
	a.svc = weights.NewService(a.repo, weights.Options{Location: loc, Logger: log})
	a.facade = analytics.NewFacade(a.svc, forecast.NewEngine(cfg.Forecast.DefaultGainPerDay), analytics.Options{
		HorizonDays: cfg.Forecast.HorizonDays,
		Logger:      log,
	})
	return a, nil
}

func (a *app) close() {
	if a.closeFn != nil {
		_ = a.closeFn()
	}
	_ = a.log.Sync()
}

func (a *app) printJSON(v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, string(b))
	return err
}

// subFlags arma un FlagSet silencioso para un subcomando.
func subFlags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	return fs
}

func parseSub(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return invalidInvocationf("%v", err)
	}
	if fs.NArg() != 0 {
		return invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
	}
	return nil
}
