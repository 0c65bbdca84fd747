/*
Copyright (c) 2025 Fsas Technologies Inc., or its subsidiaries. All Rights Reserved.

Licensed under the Mozilla Public License Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://mozilla.org/MPL/2.0/


Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package bmc reads and writes the persisted boot order of a host through its
// Redfish management controller.
package bmc

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"terraform-provider-efibootorder/internal/bootorder"

	"github.com/hashicorp/go-cleanhttp"
	"github.com/hashicorp/terraform-plugin-log/tflog"
	"github.com/stmcginnis/gofish"
	"github.com/stmcginnis/gofish/redfish"
)

const (
	ProfileOEM      = "oem"
	ProfileStandard = "standard"

	DefaultSystemPath = "/redfish/v1/Systems/1"
	DefaultOemPath    = "/redfish/v1/Systems/1/Oem/Supermicro/FixedBootOrder"
	DefaultOemKey     = "FixedBootOrder"
	DefaultTimeout    = 60 * time.Second
)

// Config describes how management endpoints are addressed and which resources
// carry the boot order.
type Config struct {
	Domain   string
	Marker   string
	Insecure bool
	Timeout  time.Duration

	Profile    string
	SystemPath string
	OemPath    string
	OemKey     string

	ResetType         redfish.ResetType
	ResetTimeout      time.Duration
	PowerPollInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Domain:            DefaultDomain,
		Marker:            DefaultMarker,
		Insecure:          true,
		Timeout:           DefaultTimeout,
		Profile:           ProfileOEM,
		SystemPath:        DefaultSystemPath,
		OemPath:           DefaultOemPath,
		OemKey:            DefaultOemKey,
		ResetType:         redfish.GracefulRestartResetType,
		PowerPollInterval: 5 * time.Second,
	}
}

// Client talks to the management endpoint of any number of hosts using one set
// of credentials. It keeps no per-host state and is safe for concurrent use.
type Client struct {
	creds      Credentials
	cfg        Config
	profile    profile
	httpClient *http.Client
}

func New(creds Credentials, cfg Config) (*Client, error) {
	if creds.Username == "" || creds.Password == "" {
		return nil, fmt.Errorf("error. Either Redfish client username or password has not been set. Please check your configuration")
	}

	if cfg.SystemPath == "" {
		cfg.SystemPath = DefaultSystemPath
	}
	if cfg.ResetType == "" {
		cfg.ResetType = redfish.GracefulRestartResetType
	}
	if cfg.PowerPollInterval <= 0 {
		cfg.PowerPollInterval = 5 * time.Second
	}

	var p profile
	switch cfg.Profile {
	case ProfileOEM, "":
		if cfg.OemPath == "" || cfg.OemKey == "" {
			return nil, fmt.Errorf("oem profile requires the boot order path and key")
		}
		p = &oemProfile{path: cfg.OemPath, key: cfg.OemKey}
	case ProfileStandard:
		p = &standardProfile{systemPath: cfg.SystemPath}
	default:
		return nil, fmt.Errorf("unknown boot order profile: %s", cfg.Profile)
	}

	transport := cleanhttp.DefaultPooledTransport()
	transport.TLSClientConfig = &tls.Config{
		InsecureSkipVerify: cfg.Insecure, //nolint:gosec // BMCs ship self-signed certificates
	}

	return &Client{
		creds:   creds,
		cfg:     cfg,
		profile: p,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
	}, nil
}

// CanonicalHost returns the management network name used for host.
func (c *Client) CanonicalHost(host string) string {
	return CanonicalHost(host, c.cfg.Domain, c.cfg.Marker)
}

// Fetch reads the current boot order of host.
func (c *Client) Fetch(ctx context.Context, host string) (bootorder.Order, error) {
	tflog.Debug(ctx, "bmc: fetch starts", map[string]interface{}{"host": host, "profile": c.cfg.Profile})

	s, err := c.connect(ctx, host, "fetch")
	if err != nil {
		return nil, err
	}
	defer s.api.Logout()

	raw, err := c.profile.fetch(s)
	if err != nil {
		return nil, err
	}

	tflog.Debug(ctx, "bmc: fetch ends", map[string]interface{}{"host": host, "entries": len(raw)})
	return bootorder.OrderFromStrings(raw), nil
}

// Write replaces the boot order of host with order. A successful call only
// means the endpoint accepted the request.
func (c *Client) Write(ctx context.Context, host string, order bootorder.Order) error {
	tflog.Debug(ctx, "bmc: write starts", map[string]interface{}{"host": host, "entries": len(order)})

	s, err := c.connect(ctx, host, "write")
	if err != nil {
		return err
	}
	defer s.api.Logout()

	if err := c.profile.write(s, order.Strings()); err != nil {
		return err
	}

	tflog.Debug(ctx, "bmc: write ends", map[string]interface{}{"host": host})
	return nil
}

// Reset restarts host so the firmware picks up the new boot order. A host
// that is powered off is powered on instead.
func (c *Client) Reset(ctx context.Context, host string) error {
	tflog.Debug(ctx, "bmc: reset starts", map[string]interface{}{"host": host, "reset_type": c.cfg.ResetType})

	s, err := c.connect(ctx, host, "reset")
	if err != nil {
		return err
	}
	defer s.api.Logout()

	if err := resetOrPowerOn(ctx, s, c.cfg); err != nil {
		return err
	}

	tflog.Debug(ctx, "bmc: reset ends", map[string]interface{}{"host": host})
	return nil
}

func (c *Client) connect(ctx context.Context, host, op string) (*session, error) {
	endpoint := "https://" + c.CanonicalHost(host)

	api, err := gofish.ConnectContext(ctx, gofish.ClientConfig{
		Endpoint:   endpoint,
		Username:   c.creds.Username,
		Password:   c.creds.Password,
		BasicAuth:  true,
		Insecure:   c.cfg.Insecure,
		HTTPClient: c.httpClient,
	})
	if err != nil {
		return nil, &TransportError{Host: host, Op: op, Err: fmt.Errorf("error connecting to redfish API: %w", err)}
	}

	tflog.Trace(ctx, "Connection with the redfish endpoint was successful", map[string]interface{}{"endpoint": endpoint})
	return &session{api: api, host: host}, nil
}

// session is one authenticated connection to a single host.
type session struct {
	api  *gofish.APIClient
	host string
}

func (s *session) get(op, path string) ([]byte, error) {
	resp, err := s.api.Get(path)
	if err != nil {
		return nil, &TransportError{Host: s.host, Op: op, Err: fmt.Errorf("GET on %s reported error: %w", path, err)}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &TransportError{Host: s.host, Op: op, Err: fmt.Errorf("GET on %s returned status code %d", path, resp.StatusCode)}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Host: s.host, Op: op, Err: fmt.Errorf("error while reading %s: %w", path, err)}
	}

	return body, nil
}

func (s *session) getJSON(op, path, field string, v interface{}) error {
	body, err := s.get(op, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return &ProtocolError{Host: s.host, Field: field, Err: err}
	}

	return nil
}

func (s *session) patch(op, path string, payload interface{}) error {
	resp, err := s.api.Patch(path, payload)
	if err != nil {
		return &TransportError{Host: s.host, Op: op, Err: fmt.Errorf("PATCH on %s reported error: %w", path, err)}
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusAccepted, http.StatusNoContent:
		return nil
	default:
		return &TransportError{Host: s.host, Op: op, Err: fmt.Errorf("PATCH on %s returned status code %d", path, resp.StatusCode)}
	}
}
