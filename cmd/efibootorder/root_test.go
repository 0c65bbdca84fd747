package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"terraform-provider-efibootorder/internal/bootorder"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) *app {
	t.Helper()

	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	cmd := a.command()
	require.NoError(t, cmd.ParseFlags(args))
	require.NoError(t, a.initConfig())
	return a
}

func TestDefaults(t *testing.T) {
	a := parse(t)

	rules, err := a.rules()
	require.NoError(t, err)
	assert.Equal(t, bootorder.DefaultRules(), rules)

	cfg := a.clientConfig()
	assert.Equal(t, "ipmi.sepia.ceph.com", cfg.Domain)
	assert.Equal(t, "oem", cfg.Profile)
	assert.Equal(t, "/redfish/v1/Systems/1/Oem/Supermicro/FixedBootOrder", cfg.OemPath)
	assert.Equal(t, "GracefulRestart", string(cfg.ResetType))
	assert.False(t, a.v.GetBool("fix"))
}

func TestRulesFromEnvAndFlags(t *testing.T) {
	t.Setenv("EFIBOOTORDER_RULES_SHELL", "Built-in EFI Shell")
	t.Setenv("EFIBOOTORDER_PROFILE", "standard")

	a := parse(t, "--network-match", "UEFI PXE IPv4", "--fix")

	rules, err := a.rules()
	require.NoError(t, err)
	assert.Equal(t, bootorder.Substring("UEFI PXE IPv4"), rules[bootorder.Network].Matcher)
	assert.Equal(t, bootorder.Substring(bootorder.DefaultDiskMatch), rules[bootorder.Disk].Matcher)
	assert.Equal(t, bootorder.Substring("Built-in EFI Shell"), rules[bootorder.Shell].Matcher)

	assert.Equal(t, "standard", a.clientConfig().Profile)
	assert.True(t, a.v.GetBool("fix"))
}

func TestEmptyRuleIsRejected(t *testing.T) {
	a := parse(t, "--disk-match", "")

	_, err := a.rules()
	assert.Error(t, err)
}

func TestConfigFileAndEnvFile(t *testing.T) {
	dir := t.TempDir()

	cfgPath := filepath.Join(dir, "efibootorder.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("domain: bmc.example.org\nrules:\n  disk: NVMe\n"), 0o600))

	envPath := filepath.Join(dir, "test.env")
	require.NoError(t, os.WriteFile(envPath, []byte("EFIBOOTORDER_USERNAME=ADMIN\nEFIBOOTORDER_PASSWORD=secret\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("EFIBOOTORDER_USERNAME")
		os.Unsetenv("EFIBOOTORDER_PASSWORD")
	})

	a := parse(t, "--config", cfgPath, "--env-file", envPath)

	assert.Equal(t, "bmc.example.org", a.clientConfig().Domain)
	rules, err := a.rules()
	require.NoError(t, err)
	assert.Equal(t, bootorder.Substring("NVMe"), rules[bootorder.Disk].Matcher)

	creds, err := a.credentials()
	require.NoError(t, err)
	assert.Equal(t, "ADMIN", creds.Username)
	assert.Equal(t, "secret", creds.Password)
}

func TestUnknownRuleClassInConfigFile(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "efibootorder.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("rules:\n  floppy: UEFI USB Floppy\n"), 0o600))

	a := parse(t, "--config", cfgPath)

	_, err := a.rules()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown device class: floppy")
}

func TestMissingConfigFileFails(t *testing.T) {
	a := newApp(&bytes.Buffer{}, &bytes.Buffer{})
	cmd := a.command()
	require.NoError(t, cmd.ParseFlags([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml")}))
	assert.Error(t, a.initConfig())
}

// supermicro serves the OEM boot order resource of a single host.
type supermicro struct {
	mu     sync.Mutex
	order  []string
	resets int
}

func (s *supermicro) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch strings.TrimSuffix(r.URL.Path, "/") {
	case "/redfish/v1":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"@odata.id": "/redfish/v1/",
			"Systems":   map[string]string{"@odata.id": "/redfish/v1/Systems"},
		})
	case "/redfish/v1/Systems/1/Oem/Supermicro/FixedBootOrder":
		if r.Method == http.MethodPatch {
			var payload struct{ FixedBootOrder []string }
			_ = json.NewDecoder(r.Body).Decode(&payload)
			s.order = payload.FixedBootOrder
			w.WriteHeader(http.StatusOK)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"FixedBootOrder": s.order})
	case "/redfish/v1/Systems/1":
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"@odata.id":  "/redfish/v1/Systems/1",
			"Id":         "1",
			"PowerState": "On",
			"Actions": map[string]interface{}{
				"#ComputerSystem.Reset": map[string]interface{}{
					"target": "/redfish/v1/Systems/1/Actions/ComputerSystem.Reset",
				},
			},
		})
	case "/redfish/v1/Systems/1/Actions/ComputerSystem.Reset":
		s.resets++
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func execute(t *testing.T, args ...string) (a *app, stdout, stderr *bytes.Buffer, err error) {
	t.Helper()

	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	a = newApp(stdout, stderr)
	cmd := a.command()
	cmd.SetArgs(args)
	err = cmd.Execute()
	return a, stdout, stderr, err
}

func TestRunReportAndFix(t *testing.T) {
	bmcServer := &supermicro{order: []string{
		"UEFI Hard Disk:ubuntu",
		"UEFI Network:(B1/D0/F0) UEFI PXE IPv4: Intel(R) Ethernet Controller E810-XXV",
		"UEFI AP:UEFI: Built-in EFI Shell",
	}}
	srv := httptest.NewTLSServer(bmcServer)
	defer srv.Close()
	host := srv.Listener.Addr().String()

	common := []string{"--domain", "", "--username", "ADMIN", "--password", "secret", "--log-level", "error"}

	a, stdout, _, err := execute(t, append(common, host)...)
	require.NoError(t, err)
	assert.Equal(t, 0, a.exitCode)
	assert.Equal(t, host+"\n"+
		"UEFI Hard Disk:ubuntu ===> UEFI Network:(B1/D0/F0) UEFI PXE IPv4: Intel(R) Ethernet Controller E810-XXV\n"+
		"UEFI Network:(B1/D0/F0) UEFI PXE IPv4: Intel(R) Ethernet Controller E810-XXV ===> UEFI Hard Disk:ubuntu\n"+
		"UEFI AP:UEFI: Built-in EFI Shell\n", stdout.String())

	metricsPath := filepath.Join(t.TempDir(), "efibootorder.prom")
	a, _, _, err = execute(t, append(common, "--fix", "--metrics-file", metricsPath, host)...)
	require.NoError(t, err)
	assert.Equal(t, 0, a.exitCode)
	assert.Equal(t, 1, bmcServer.resets)
	assert.FileExists(t, metricsPath)

	a, stdout, _, err = execute(t, append(common, host)...)
	require.NoError(t, err)
	assert.Equal(t, 0, a.exitCode)
	assert.Equal(t, host+" ok\n", stdout.String())
}

func TestRunUnreachableHostFails(t *testing.T) {
	srv := httptest.NewTLSServer(&supermicro{})
	host := srv.Listener.Addr().String()
	srv.Close()

	a, _, stderr, err := execute(t, "--domain", "", "--username", "ADMIN", "--password", "secret", "--timeout", "2s", host)
	require.NoError(t, err)
	assert.Equal(t, 1, a.exitCode)
	assert.Contains(t, stderr.String(), "error: "+host)
}

func TestRunRequiresHosts(t *testing.T) {
	_, _, _, err := execute(t)
	assert.Error(t, err)
}
