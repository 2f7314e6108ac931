package eco

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// https://www.ecobee.com/home/developer/api/documentation/v1/operations/get-thermostats.shtml

type Thermostat struct {
	ID         string `json:"identifier"`
	Name       string `json:"name"`
	Revision   string `json:"thermostatRev"`
	Registered bool   `json:"isRegistered"`
	ModelNo    string `json:"modelNumber"`
	Brand      string `json:"brand"`
	Features   string `json:"features"`
	LastMod    string `json:"lastModified"`
	ThermTime  string `json:"thermostatTime"`
	UTC        string `json:"utcTime"`

	Settings struct {
		HVACMode string `json:"hvacMode"`
	} `json:"settings"`
}

type thermostatResponse struct {
	Thermostats []Thermostat `json:"thermostatList"`
	RequestStatus
}

// Thermostats fetches the full thermostat objects matched by sel.
func (c *Client) Thermostats(ctx context.Context, sel Selection) ([]Thermostat, error) {
	req, err := json.Marshal(struct {
		Selection Selection `json:"selection"`
	}{sel})
	if err != nil {
		return nil, fmt.Errorf("encode thermostat request: %w", err)
	}

	params := url.Values{}
	params.Add("json", string(req))

	body, err := c.fetch(ctx, http.MethodGet, "/1/thermostat", params, nil)
	if err != nil {
		return nil, err
	}

	var res thermostatResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, fmt.Errorf("decode thermostat response: %w", err)
	}
	return res.Thermostats, nil
}
