package watch

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pzl/doorbee/pkg/eco"
)

func TestSortLatestFirst(t *testing.T) {
	rs := []Reading{
		{Date: "2024-01-01", Time: "23:55:00", Value: "a"},
		{Date: "2024-01-02", Time: "00:05:00", Value: "c"},
		{Date: "2024-01-01", Time: "00:00:00", Value: "z"},
		{Date: "2024-01-02", Time: "00:00:00", Value: "b"},
	}
	SortLatestFirst(rs)

	var got []string
	for _, r := range rs {
		got = append(got, r.Value)
	}
	assert.Equal(t, []string{"c", "b", "a", "z"}, got)
}

func TestSortLaterDateFirstRegardlessOfInput(t *testing.T) {
	early := Reading{Date: "2023-12-31", Time: "23:59:59"}
	late := Reading{Date: "2024-01-01", Time: "00:00:00"}

	for _, in := range [][]Reading{{early, late}, {late, early}} {
		SortLatestFirst(in)
		assert.Equal(t, late, in[0])
	}
}

func TestLatest(t *testing.T) {
	_, ok := Latest(nil)
	assert.False(t, ok)

	rs := []Reading{{Date: "2024-01-01", Time: "01:00:00", Value: "0"}, {Date: "2024-01-01", Time: "02:00:00", Value: "1"}}
	r, ok := Latest(rs)
	require.True(t, ok)
	assert.Equal(t, "1", r.Value)
	assert.Equal(t, "0", rs[0].Value, "input left in order")
}

func TestReadings(t *testing.T) {
	sr := eco.SensorReport{
		Columns: []string{"date", "time", "rs:100:1", "rs:101:1"},
		Data: []string{
			"2024-01-01,00:00:00,0,1",
			"2024-01-01,00:05:00,1,",
			"2024-01-01,00:10:00,1,0",
		},
	}

	rs, err := Readings(sr, "rs:101:1")
	require.NoError(t, err)
	assert.Equal(t, []Reading{
		{Date: "2024-01-01", Time: "00:00:00", Value: "1"},
		{Date: "2024-01-01", Time: "00:10:00", Value: "0"},
	}, rs)

	_, err = Readings(sr, "rs:102:1")
	assert.True(t, errors.Is(err, eco.ErrColumnNotFound))

	sr.Data = append(sr.Data, "2024-01-01,00:15:00")
	_, err = Readings(sr, "rs:101:1")
	assert.True(t, errors.Is(err, eco.ErrShortRow))
}

func TestReadingsEmpty(t *testing.T) {
	rs, err := Readings(eco.SensorReport{Columns: []string{"date", "time", "x"}}, "x")
	require.NoError(t, err)
	assert.Empty(t, rs)
}

func TestStateOf(t *testing.T) {
	assert.Equal(t, DoorClosed, StateOf("1"))
	assert.Equal(t, DoorOpen, StateOf("0"))
	assert.Equal(t, DoorOpen, StateOf("junk"))
	assert.Equal(t, "closed", DoorClosed.String())
}

func TestFindSensor(t *testing.T) {
	sr := eco.SensorReport{Sensors: []eco.Sensor{
		{ID: "rs:100:1", Name: "Bedroom", Type: "occupancy"},
		{ID: "rs:101:1", Name: "Front Door", Type: eco.SensorDryContact},
		{ID: "rs:102:1", Name: "Catio Door", Type: eco.SensorDryContact},
	}}

	tests := []struct {
		name    string
		sensor  string
		typ     string
		wantID  string
		wantErr bool
	}{
		{"by name", "Catio Door", eco.SensorDryContact, "rs:102:1", false},
		{"by type", "", eco.SensorDryContact, "rs:101:1", false},
		{"unknown name falls back to type", "Garage", eco.SensorDryContact, "rs:101:1", false},
		{"unknown name without type", "Garage", "", "", true},
		{"unknown type", "", "co2", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FindSensor(sr, tt.sensor, tt.typ)
			if tt.wantErr {
				assert.True(t, errors.Is(err, eco.ErrSensorNotFound), "got %v", err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, s.ID)
		})
	}
}
