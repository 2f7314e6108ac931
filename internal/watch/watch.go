package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/pzl/doorbee/internal/logger"
	"github.com/pzl/doorbee/pkg/eco"
)

// API is the part of the ecobee client the watcher needs.
type API interface {
	ThermostatSummary(ctx context.Context, sel eco.Selection) (eco.ThermostatSummary, error)
	RuntimeReport(ctx context.Context, r eco.RuntimeReportRequest) (eco.RuntimeReport, error)
	UpdateThermostat(ctx context.Context, r eco.UpdateThermostatRequest) (eco.UpdateResponse, error)
}

var _ API = (*eco.Client)(nil)

type credentialSetter interface {
	SetCredentials(eco.Credentials)
}

// Policy decides what is watched and which modes the door maps to.
type Policy struct {
	Interval   time.Duration
	Thermostat string // empty watches the first thermostat in the summary
	SensorName string
	SensorType string
	Columns    []string
	ClosedMode string
	OpenMode   string
	LocalDay   bool // report on the local day instead of the UTC day
	ReloadEnv  bool // re-read credentials from the environment every poll
}

func DefaultPolicy() Policy {
	return Policy{
		Interval:   15 * time.Minute,
		SensorName: "Catio Door",
		SensorType: eco.SensorDryContact,
		Columns:    []string{"zoneHvacMode", "zoneCalendarEvent"},
		ClosedMode: eco.ModeAuto,
		OpenMode:   eco.ModeOff,
	}
}

func (p Policy) ModeFor(d DoorState) string {
	if d == DoorClosed {
		return p.ClosedMode
	}
	return p.OpenMode
}

// Result describes what a single poll did.
type Result struct {
	Thermostat string
	Revision   string
	Changed    bool
	Latest     *Reading
	Door       DoorState
	Mode       string
	Updated    bool
}

type Watcher struct {
	api    API
	policy Policy
	log    *logger.Logger
	now    func() time.Time

	lastRevision string
}

func New(api API, policy Policy, log *logger.Logger) *Watcher {
	if policy.Interval <= 0 {
		policy.Interval = DefaultPolicy().Interval
	}
	return &Watcher{
		api:    api,
		policy: policy,
		log:    log,
		now:    time.Now,
	}
}

// Run polls until ctx is cancelled or a poll fails. Failures are not retried.
func (w *Watcher) Run(ctx context.Context) error {
	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}

		if _, err := w.Poll(ctx); err != nil {
			return err
		}
		timer.Reset(w.policy.Interval)
	}
}

// Poll runs one iteration: check the runtime revision and, when it moved,
// fetch today's sensor report and set the HVAC mode from the door state.
func (w *Watcher) Poll(ctx context.Context) (Result, error) {
	log := w.log.With("poll", uuid.NewString())

	if w.policy.ReloadEnv {
		if err := w.reloadCredentials(); err != nil {
			return Result{}, err
		}
	}

	sum, err := w.api.ThermostatSummary(ctx, eco.Registered(eco.IncludeDevice))
	if err != nil {
		return Result{}, fmt.Errorf("fetch summary: %w", err)
	}
	rev, err := w.pickRevision(sum)
	if err != nil {
		return Result{}, err
	}

	res := Result{Thermostat: rev.ThermostatID, Revision: rev.RuntimeRevision}
	if rev.RuntimeRevision == w.lastRevision {
		log.Debugw("runtime revision unchanged", "thermostat", rev.ThermostatID, "revision", rev.RuntimeRevision)
		return res, nil
	}
	log.Infow("runtime revision changed", "thermostat", rev.ThermostatID, "from", w.lastRevision, "to", rev.RuntimeRevision)
	w.lastRevision = rev.RuntimeRevision
	res.Changed = true

	day := w.today()
	req := eco.NewRuntimeReportRequest(day, day, w.policy.Columns, rev.ThermostatID)
	req.Selection.Include = eco.IncludeDevice
	req.IncludeSensors = true

	rep, err := w.api.RuntimeReport(ctx, req)
	if err != nil {
		return res, fmt.Errorf("fetch runtime report for %s: %w", day, err)
	}
	sr, err := sensorReport(rep, rev.ThermostatID)
	if err != nil {
		return res, err
	}
	sensor, err := FindSensor(sr, w.policy.SensorName, w.policy.SensorType)
	if err != nil {
		return res, err
	}
	readings, err := Readings(sr, sensor.ID)
	if err != nil {
		return res, fmt.Errorf("read sensor %s: %w", sensor.Name, err)
	}

	latest, ok := Latest(readings)
	if !ok {
		log.Warnw("no sensor data", "sensor", sensor.Name, "day", day)
		return res, nil
	}
	res.Latest = &latest
	res.Door = StateOf(latest.Value)
	res.Mode = w.policy.ModeFor(res.Door)
	log.Infow("door is now "+res.Door.String(), "sensor", sensor.Name, "date", latest.Date, "time", latest.Time, "mode", res.Mode)

	if _, err := w.api.UpdateThermostat(ctx, eco.SetHVACMode(rev.ThermostatID, res.Mode)); err != nil {
		return res, fmt.Errorf("set hvac mode %s: %w", res.Mode, err)
	}
	res.Updated = true
	return res, nil
}

func (w *Watcher) pickRevision(sum eco.ThermostatSummary) (eco.Revision, error) {
	if w.policy.Thermostat != "" {
		rev, ok := sum.Revision(w.policy.Thermostat)
		if !ok {
			return eco.Revision{}, fmt.Errorf("thermostat %s not in summary", w.policy.Thermostat)
		}
		return rev, nil
	}
	if len(sum.Revisions) == 0 {
		return eco.Revision{}, errors.New("summary lists no thermostats")
	}
	return sum.Revisions[0], nil
}

// sensorReport finds the thermostat's report, accepting a lone report that
// omits its identifier.
func sensorReport(rep eco.RuntimeReport, id string) (eco.SensorReport, error) {
	sr, err := rep.SensorReport(id)
	if err == nil {
		return sr, nil
	}
	if len(rep.SensorList) == 1 && rep.SensorList[0].ThermostatID == "" {
		return rep.SensorList[0], nil
	}
	return eco.SensorReport{}, err
}

func (w *Watcher) today() string {
	now := w.now()
	if !w.policy.LocalDay {
		now = now.UTC()
	}
	return now.Format("2006-01-02")
}

func (w *Watcher) reloadCredentials() error {
	cs, ok := w.api.(credentialSetter)
	if !ok {
		return nil
	}
	creds, err := eco.CredentialsFromEnv()
	if err != nil {
		return err
	}
	cs.SetCredentials(creds)
	return nil
}
