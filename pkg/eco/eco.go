package eco

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const DefaultBaseURL = "https://api.ecobee.com"

const (
	EnvAccessToken  = "ECOBEE_AUTH"
	EnvRefreshToken = "ECOBEE_REFRESH"
)

// Credentials are the bearer tokens issued by ecobee. Only the access token is
// sent; the refresh token is carried along so it can be cached with it.
type Credentials struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// CredentialsFromEnv reads the tokens from ECOBEE_AUTH and ECOBEE_REFRESH.
func CredentialsFromEnv() (Credentials, error) {
	c := Credentials{
		AccessToken:  os.Getenv(EnvAccessToken),
		RefreshToken: os.Getenv(EnvRefreshToken),
	}
	if c.AccessToken == "" {
		return c, fmt.Errorf("%s must be set", EnvAccessToken)
	}
	return c, nil
}

// Setenv writes the tokens back into the process environment. This only lasts
// as long as the process does.
func (c Credentials) Setenv() error {
	if err := os.Setenv(EnvAccessToken, c.AccessToken); err != nil {
		return err
	}
	return os.Setenv(EnvRefreshToken, c.RefreshToken)
}

type Client struct {
	Credentials
	base string
	http *http.Client
}

type Option func(*Client)

func WithBaseURL(base string) Option {
	return func(c *Client) {
		c.base = strings.TrimRight(base, "/")
	}
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http = httpClient(d)
	}
}

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.http = h
	}
}

func New(creds Credentials, opts ...Option) *Client {
	c := &Client{
		Credentials: creds,
		base:        DefaultBaseURL,
		http:        httpClient(90 * time.Second), // ecobee servers are occasionally... sluggish
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// SetCredentials swaps the tokens used for subsequent requests.
func (c *Client) SetCredentials(creds Credentials) {
	c.Credentials = creds
}

type Status struct {
	Code    ResponseCode `json:"code"`
	Message string       `json:"message"`
}

type RequestStatus struct {
	Status Status `json:"status"`
}

type ResponseCode int

const (
	StatusSuccess       ResponseCode = 0
	StatusAuthFail      ResponseCode = 1
	StatusNotAuth       ResponseCode = 2
	StatusProcessErr    ResponseCode = 3
	StatusSerializeErr  ResponseCode = 4
	StatusInvalidReqFmt ResponseCode = 5
	StatusTooManyTherm  ResponseCode = 6
	StatusValidationErr ResponseCode = 7
	StatusInvalidFn     ResponseCode = 8
	StatusInvalidSel    ResponseCode = 9
	StatusInvalidPage   ResponseCode = 10
	StatusFnErr         ResponseCode = 11
	StatusNoPOST        ResponseCode = 12
	StatusNoGET         ResponseCode = 13
	StatusTokenExpired  ResponseCode = 14
	StatusDupData       ResponseCode = 15
	StatusDeauth        ResponseCode = 16
)

func (r ResponseCode) String() string {
	switch r {
	case StatusSuccess:
		return "Your request was successfully received and processed."
	case StatusAuthFail:
		return "Invalid credentials supplied to the registration request, or invalid token. Request registration again."
	case StatusNotAuth:
		return "Attempted to access resources which user is not authorized for. Ensure the thermostat identifiers requested are correct."
	case StatusProcessErr:
		return "General catch-all error for a number of internal errors. Additional info may be provided in the message."
	case StatusSerializeErr:
		return "An internal error mapping data to or from the API transmission format."
	case StatusInvalidReqFmt:
		return "An error mapping the request data to internal data objects."
	case StatusTooManyTherm:
		return "Too many identifiers are specified in the Selection.selectionMatch property. Current limit is 25 per request."
	case StatusValidationErr:
		return "The update request contained values out of range or too large for the field being updated."
	case StatusInvalidFn:
		return "The \"type\" property of the function does not match an available function."
	case StatusInvalidSel:
		return "The Selection.selectionType property contains an invalid value."
	case StatusInvalidPage:
		return "The page requested in the request is invalid."
	case StatusFnErr:
		return "An error occurred processing a function. Ensure required properties are provided."
	case StatusNoPOST:
		return "The request URL does not support POST."
	case StatusNoGET:
		return "The request URL does not support GET."
	case StatusTokenExpired:
		return "Token expired. Please refresh."
	case StatusDupData:
		return "Fix the data which is duplicated and re-post."
	case StatusDeauth:
		return "Token has been deauthorized by user. You must re-request authorization."
	}
	return fmt.Sprintf("unknown response code: %d", r)
}

// APIError is a non-success status returned by the API.
type APIError struct {
	Code    ResponseCode
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("code %d (%s): %s", int(e.Code), e.Code, e.Message)
}

func (s Status) err() error {
	if s.Code == StatusSuccess {
		return nil
	}
	return &APIError{Code: s.Code, Message: s.Message}
}

// IsTokenExpired reports whether err is the API telling us the access token
// needs refreshing.
func IsTokenExpired(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == StatusTokenExpired
}

func (c *Client) fetch(ctx context.Context, method string, path string, query url.Values, body []byte) ([]byte, error) {
	u := c.base + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, u, rd)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json;charset=UTF-8")
	req.Header.Set("Authorization", "Bearer "+c.AccessToken)

	res, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer res.Body.Close()

	buf, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read %s response: %w", path, err)
	}

	// error statuses normally still carry a status document; prefer it
	var status RequestStatus
	if err := json.Unmarshal(buf, &status); err != nil {
		if res.StatusCode >= 400 {
			return nil, fmt.Errorf("%s %s returned status %d", method, path, res.StatusCode)
		}
		return nil, fmt.Errorf("decode %s status: %w", path, err)
	}
	if err := status.Status.err(); err != nil {
		return nil, err
	}
	if res.StatusCode >= 400 {
		return nil, fmt.Errorf("%s %s returned status %d", method, path, res.StatusCode)
	}
	return buf, nil
}

func httpClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext:         (&net.Dialer{Timeout: timeout}).DialContext,
			TLSHandshakeTimeout: timeout,
		},
	}
}
