package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pzl/doorbee/internal/config"
	"github.com/pzl/doorbee/internal/logger"
	"github.com/pzl/doorbee/internal/watch"
	"github.com/pzl/doorbee/pkg/eco"
)

type app struct {
	configPath string
	logLevel   string

	cfg    config.Config
	log    *logger.Logger
	client *eco.Client
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "doorbee",
		Short:         "Switch an ecobee's HVAC mode from a door contact sensor",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "config file (default ./doorbee.yaml or ~/.config/doorbee/doorbee.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "debug, info, warn or error (overrides log.level)")

	root.AddCommand(
		&cobra.Command{
			Use:   "watch",
			Short: "Poll the thermostat and set the HVAC mode whenever the door changes",
			Args:  cobra.NoArgs,
			Run:   a.watch,
		},
		&cobra.Command{
			Use:   "summary",
			Short: "Print the revision list of registered thermostats",
			Args:  cobra.NoArgs,
			RunE:  a.summary,
		},
		&cobra.Command{
			Use:   "report [YYYY-MM-DD]",
			Short: "Print the latest reading of every sensor for a day (default today, UTC)",
			Args:  cobra.MaximumNArgs(1),
			RunE:  a.report,
		},
		&cobra.Command{
			Use:   "mode <thermostat-id> <hvac-mode>",
			Short: "Set a thermostat's HVAC mode (auto, auxHeatOnly, cool, heat, off)",
			Args:  cobra.ExactArgs(2),
			RunE:  a.mode,
		},
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	a.cfg = cfg
	a.log = logger.Get(cfg.LogLevel)
	a.client = eco.New(cfg.Credentials,
		eco.WithBaseURL(cfg.BaseURL),
		eco.WithTimeout(cfg.Timeout),
	)
	return nil
}

// watch runs until interrupted. Any failure ends the process.
func (a *app) watch(cmd *cobra.Command, args []string) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if a.cfg.Watch.ReloadEnv {
		// seed the environment so every poll starts from the same tokens
		if err := a.cfg.Credentials.Setenv(); err != nil {
			a.log.Fatalw("failed to export credentials", "err", err)
		}
	}

	a.log.Infow("watching",
		"interval", a.cfg.Watch.Interval,
		"sensor", a.cfg.Watch.SensorName,
		"sensor_type", a.cfg.Watch.SensorType,
		"closed", a.cfg.Watch.ClosedMode,
		"open", a.cfg.Watch.OpenMode,
	)
	err := watch.New(a.client, a.cfg.Watch, a.log).Run(ctx)
	if errors.Is(err, context.Canceled) {
		a.log.Infow("stopped")
		return
	}
	a.log.Fatalw("watch failed", "err", err)
}

func (a *app) summary(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
	defer cancel()

	sum, err := a.client.ThermostatSummary(ctx, eco.Registered(eco.IncludeDevice))
	if err != nil {
		return err
	}
	eq, err := sum.Equipment()
	if err != nil {
		return err
	}
	running := make(map[string][]string, len(eq))
	for _, e := range eq {
		running[e.ThermostatID] = e.Running
	}

	out := newPrinter(os.Stdout)
	for _, r := range sum.Revisions {
		out.revision(r, running[r.ThermostatID])
	}
	return nil
}

func (a *app) report(cmd *cobra.Command, args []string) error {
	day := time.Now().UTC().Format("2006-01-02")
	if len(args) > 0 {
		d, err := time.Parse("2006-01-02", args[0])
		if err != nil {
			return fmt.Errorf("error parsing date: %w", err)
		}
		day = d.Format("2006-01-02")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 2*a.cfg.Timeout)
	defer cancel()

	id := a.cfg.Watch.Thermostat
	if id == "" {
		sum, err := a.client.ThermostatSummary(ctx, eco.Registered(eco.NoInclude))
		if err != nil {
			return err
		}
		if len(sum.Revisions) == 0 {
			return errors.New("no registered thermostats")
		}
		id = sum.Revisions[0].ThermostatID
	}

	req := eco.NewRuntimeReportRequest(day, day, a.cfg.Watch.Columns, id)
	req.IncludeSensors = true

	out := newPrinter(os.Stdout)
	stop := out.spinner(fmt.Sprintf("Fetching %s for %s ", day, id))
	rep, err := a.client.RuntimeReport(ctx, req)
	stop(err == nil)
	if err != nil {
		return err
	}

	sr, err := rep.SensorReport(id)
	if err != nil {
		return err
	}
	watched, _ := watch.FindSensor(sr, a.cfg.Watch.SensorName, a.cfg.Watch.SensorType)
	for _, s := range sr.Sensors {
		readings, err := watch.Readings(sr, s.ID)
		if err != nil {
			return err
		}
		latest, ok := watch.Latest(readings)
		out.sensor(s, latest, ok, s.ID == watched.ID)
	}
	return nil
}

func (a *app) mode(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout)
	defer cancel()

	res, err := a.client.UpdateThermostat(ctx, eco.SetHVACMode(args[0], args[1]))
	if err != nil {
		return err
	}
	a.log.Infow("hvac mode set", "thermostat", args[0], "mode", args[1], "status", res.Status.Code)
	return nil
}
