package eco

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// https://www.ecobee.com/home/developer/api/documentation/v1/operations/get-runtime-report.shtml

var (
	ErrColumnNotFound = errors.New("column not found")
	ErrSensorNotFound = errors.New("sensor not found")
	ErrShortRow       = errors.New("row has too few fields")
)

// SensorDryContact is the sensorType of door and window contacts.
const SensorDryContact = "dryContact"

// last interval of a day; there are 288 five minute intervals
const lastInterval = 287

type RuntimeReportRequest struct {
	Selection      Selection `json:"selection"`
	StartDate      string    `json:"startDate"`
	StartInterval  int       `json:"startInterval"`
	EndDate        string    `json:"endDate"`
	EndInterval    int       `json:"endInterval"`
	Columns        string    `json:"columns"`
	IncludeSensors bool      `json:"includeSensors"`
}

// NewRuntimeReportRequest covers whole days from start to end for the given
// thermostats.
func NewRuntimeReportRequest(start, end string, columns []string, ids ...string) RuntimeReportRequest {
	return RuntimeReportRequest{
		Selection:   Thermostats(NoInclude, ids...),
		StartDate:   start,
		EndDate:     end,
		EndInterval: lastInterval,
		Columns:     strings.Join(columns, ","),
	}
}

// BuildRuntimeReportQuery is the query string of a runtimeReport request.
func BuildRuntimeReportQuery(r RuntimeReportRequest) (url.Values, error) {
	req, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("encode runtime report request: %w", err)
	}
	params := url.Values{}
	params.Add("format", "json")
	params.Add("body", string(req))
	return params, nil
}

type Sensor struct {
	ID    string `json:"sensorId"`
	Name  string `json:"sensorName"`
	Type  string `json:"sensorType"`
	Usage string `json:"sensorUsage"`
}

type ReportRows struct {
	ThermostatID string   `json:"thermostatIdentifier"`
	RowCount     int      `json:"rowCount"`
	Rows         []string `json:"rowList"`
}

// SensorReport holds one thermostat's sensor samples. Columns and the comma
// separated Data rows are positionally aligned:
//
//	columns: [ "date", "time", "rs:100:1", "rs:100:2", ... ]
//	data:    [ "2020-02-09,19:00:00,71.4,1", ... ]
type SensorReport struct {
	ThermostatID string   `json:"thermostatIdentifier"`
	Sensors      []Sensor `json:"sensors"`
	Columns      []string `json:"columns"`
	Data         []string `json:"data"`
}

type RuntimeReport struct {
	StartDate     string         `json:"startDate"`
	StartInterval int            `json:"startInterval"`
	EndDate       string         `json:"endDate"`
	EndInterval   int            `json:"endInterval"`
	Columns       string         `json:"columns"`
	ReportList    []ReportRows   `json:"reportList"`
	SensorList    []SensorReport `json:"sensorList"`
	Status        Status         `json:"status"`
}

// ReportColumns is the layout of ReportList rows, which lead with the date
// and time before the requested columns.
func (r RuntimeReport) ReportColumns() []string {
	cols := []string{"date", "time"}
	if r.Columns == "" {
		return cols
	}
	return append(cols, strings.Split(r.Columns, ",")...)
}

// SensorReport returns the sensor report for a thermostat.
func (r RuntimeReport) SensorReport(id string) (SensorReport, error) {
	for _, sl := range r.SensorList {
		if sl.ThermostatID == id {
			return sl, nil
		}
	}
	return SensorReport{}, fmt.Errorf("no sensor report for thermostat %s", id)
}

func DecodeRuntimeReport(d []byte) (RuntimeReport, error) {
	var res RuntimeReport
	if err := json.Unmarshal(d, &res); err != nil {
		return RuntimeReport{}, fmt.Errorf("decode runtime report: %w", err)
	}
	return res, nil
}

// ColumnIndex is the position of a named column in every data row.
func (s SensorReport) ColumnIndex(name string) (int, error) {
	return columnIndex(s.Columns, name)
}

func columnIndex(cols []string, name string) (int, error) {
	for i, c := range cols {
		if c == name {
			return i, nil
		}
	}
	return -1, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// Field returns the idx-th comma separated value of a data row.
func Field(row string, idx int) (string, error) {
	fields := strings.Split(row, ",")
	if idx < 0 || idx >= len(fields) {
		return "", fmt.Errorf("%w: want index %d of %q", ErrShortRow, idx, row)
	}
	return fields[idx], nil
}

func (s SensorReport) SensorByName(name string) (Sensor, error) {
	for _, sn := range s.Sensors {
		if sn.Name == name {
			return sn, nil
		}
	}
	return Sensor{}, fmt.Errorf("%w: no sensor named %q", ErrSensorNotFound, name)
}

func (s SensorReport) SensorsByType(typ string) []Sensor {
	var out []Sensor
	for _, sn := range s.Sensors {
		if sn.Type == typ {
			out = append(out, sn)
		}
	}
	return out
}

func (c *Client) RuntimeReport(ctx context.Context, r RuntimeReportRequest) (RuntimeReport, error) {
	params, err := BuildRuntimeReportQuery(r)
	if err != nil {
		return RuntimeReport{}, err
	}
	body, err := c.fetch(ctx, http.MethodGet, "/1/runtimeReport", params, nil)
	if err != nil {
		return RuntimeReport{}, err
	}
	return DecodeRuntimeReport(body)
}
