package watch

import (
	"fmt"
	"sort"

	"github.com/pzl/doorbee/pkg/eco"
)

type DoorState int

const (
	DoorOpen DoorState = iota
	DoorClosed
)

func (d DoorState) String() string {
	if d == DoorClosed {
		return "closed"
	}
	return "open"
}

// contact sensors report 1 while the circuit is closed
const closedValue = "1"

func StateOf(value string) DoorState {
	if value == closedValue {
		return DoorClosed
	}
	return DoorOpen
}

// Reading is one non-empty sample of a single sensor column.
type Reading struct {
	Date  string
	Time  string
	Value string
}

// Readings pulls the date, time and value of one sensor column out of every
// data row. Rows where the sensor reported nothing are dropped.
func Readings(sr eco.SensorReport, sensorID string) ([]Reading, error) {
	dateIdx, err := sr.ColumnIndex("date")
	if err != nil {
		return nil, err
	}
	timeIdx, err := sr.ColumnIndex("time")
	if err != nil {
		return nil, err
	}
	valIdx, err := sr.ColumnIndex(sensorID)
	if err != nil {
		return nil, err
	}

	var out []Reading
	for _, row := range sr.Data {
		v, err := eco.Field(row, valIdx)
		if err != nil {
			return nil, err
		}
		if v == "" {
			continue
		}
		d, err := eco.Field(row, dateIdx)
		if err != nil {
			return nil, err
		}
		t, err := eco.Field(row, timeIdx)
		if err != nil {
			return nil, err
		}
		out = append(out, Reading{Date: d, Time: t, Value: v})
	}
	return out, nil
}

// SortLatestFirst orders readings by date, then time, newest first. Dates are
// YYYY-MM-DD and times HH:MM:SS, so string order is chronological.
func SortLatestFirst(rs []Reading) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Date != rs[j].Date {
			return rs[i].Date > rs[j].Date
		}
		return rs[i].Time > rs[j].Time
	})
}

// Latest is the most recent reading, if there is any.
func Latest(rs []Reading) (Reading, bool) {
	if len(rs) == 0 {
		return Reading{}, false
	}
	sorted := make([]Reading, len(rs))
	copy(sorted, rs)
	SortLatestFirst(sorted)
	return sorted[0], true
}

// FindSensor picks the sensor to watch: by name when one is given, else the
// first sensor of typ. A missing name also falls back to typ when typ is set.
func FindSensor(sr eco.SensorReport, name, typ string) (eco.Sensor, error) {
	if name != "" {
		s, err := sr.SensorByName(name)
		if err == nil || typ == "" {
			return s, err
		}
	}
	if typ != "" {
		if ss := sr.SensorsByType(typ); len(ss) > 0 {
			return ss[0], nil
		}
	}
	return eco.Sensor{}, fmt.Errorf("%w: name %q, type %q", eco.ErrSensorNotFound, name, typ)
}
