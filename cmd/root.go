package main

import (
	"fmt"
	"io"

	app "github.com/okian/starboard/internal/app"
	"github.com/okian/starboard/internal/config"
	"github.com/okian/starboard/internal/domain/aggregate"
	"github.com/okian/starboard/pkg/logger"
	"github.com/spf13/cobra"
)

// cli carries state shared by every subcommand once the root pre-run has
// loaded configuration.
type cli struct {
	cfg    *config.Config
	stdout io.Writer
	stderr io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "starboard",
		Short: "Turn an Advent of Code private leaderboard export into a progress report",
		Long: `starboard reads a private leaderboard JSON export, flattens it into
completion records and derives five views: cumulative progress, stars per
day per participant, local score ranking, stars per day and release-day
time of day. Without a subcommand it runs "report".`,
		SilenceUsage:      true,
		PersistentPreRunE: c.setup,
		RunE:              c.runReport,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringP("data", "d", "", "leaderboard export to read, - for stdin")
	pf.Bool("anon", false, "replace display names with Participant N")
	pf.String("tz", "", "timezone completion times are shown in, e.g. Europe/Berlin")
	pf.Int("min-hour", 0, "earliest hour kept by the time-of-day view")
	pf.String("day-match", "", "release-day rule for the time-of-day view: calendar or any")
	pf.String("log-level", "", "log level: debug, info, warn, error")
	addReportFlags(root)

	root.AddCommand(newReportCmd(c), newServeCmd(c))
	return root
}

// setup loads configuration, applies flag overrides and initializes the
// global logger.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(cmd.Context())
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("data") {
		cfg.DataPath, _ = flags.GetString("data")
	}
	if flags.Changed("anon") {
		cfg.Anonymize, _ = flags.GetBool("anon")
	}
	if flags.Changed("tz") {
		cfg.Timezone, _ = flags.GetString("tz")
	}
	if flags.Changed("min-hour") {
		cfg.MinHour, _ = flags.GetInt("min-hour")
	}
	if flags.Changed("day-match") {
		cfg.DayMatch, _ = flags.GetString("day-match")
	}
	if flags.Changed("log-level") {
		cfg.LogLevel, _ = flags.GetString("log-level")
	}
	if f := flags.Lookup("output"); f != nil && f.Changed {
		cfg.OutputPath = f.Value.String()
	}
	if f := flags.Lookup("top"); f != nil && f.Changed {
		cfg.TopN, _ = flags.GetInt("top")
	}
	if f := flags.Lookup("addr"); f != nil && f.Changed {
		cfg.Addr = f.Value.String()
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(
		logger.WithWriter(c.stderr),
		logger.WithJSON(cfg.LogFormat == config.LogFormatJSON),
	); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(cmd.Context(), "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	c.cfg = cfg
	return nil
}

// newService builds the pipeline service from the loaded configuration.
func (c *cli) newService() (*app.Service, error) {
	loc, err := c.cfg.Location()
	if err != nil {
		return nil, err
	}
	match, err := aggregate.ParseDayMatch(c.cfg.DayMatch)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", config.ErrInvalidConfig, err)
	}
	return app.New(
		app.WithLogger(logger.Get()),
		app.WithDataPath(c.cfg.DataPath),
		app.WithAnonymize(c.cfg.Anonymize),
		app.WithLocation(loc),
		app.WithMinHour(c.cfg.MinHour),
		app.WithDayMatch(match),
		app.WithTopN(c.cfg.TopN),
	), nil
}
