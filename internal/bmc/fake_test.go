package bmc

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stmcginnis/gofish/redfish"
	"github.com/stretchr/testify/require"
)

const (
	testUser     = "admin"
	testPassword = "secret"
)

// fakeRedfish serves the subset of a Supermicro style Redfish tree the client
// touches.
type fakeRedfish struct {
	mu sync.Mutex

	oemBody        map[string]interface{}
	bootOrder      []string
	bootOptions    map[string]string
	powerState     redfish.PowerState
	powerOnOnReset bool
	// afterReset is replayed one state per system read once a reset arrived,
	// the last state sticks.
	afterReset []redfish.PowerState
	pending    []redfish.PowerState

	patches     [][]byte
	resets      []string
	systemReads int
}

func newFakeRedfish(order []string) *fakeRedfish {
	return &fakeRedfish{
		oemBody:        map[string]interface{}{DefaultOemKey: order},
		powerState:     redfish.OnPowerState,
		powerOnOnReset: true,
	}
}

func (f *fakeRedfish) writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeRedfish) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := strings.TrimSuffix(r.URL.Path, "/")
	if path == "/redfish/v1" {
		f.writeJSON(w, map[string]interface{}{
			"@odata.id":      "/redfish/v1/",
			"Id":             "RootService",
			"RedfishVersion": "1.11.0",
			"Systems":        map[string]string{"@odata.id": "/redfish/v1/Systems"},
		})
		return
	}

	user, pass, ok := r.BasicAuth()
	if !ok || user != testUser || pass != testPassword {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	switch {
	case path == DefaultOemPath && r.Method == http.MethodGet:
		f.writeJSON(w, f.oemBody)
	case path == DefaultOemPath && r.Method == http.MethodPatch:
		body := f.readPatch(w, r)
		if body == nil {
			return
		}
		var payload map[string]interface{}
		_ = json.Unmarshal(body, &payload)
		for k, v := range payload {
			f.oemBody[k] = v
		}
		w.WriteHeader(http.StatusOK)
	case path == DefaultSystemPath && r.Method == http.MethodGet:
		if len(f.pending) > 0 {
			f.powerState = f.pending[0]
			f.pending = f.pending[1:]
		}
		f.systemReads++
		f.writeJSON(w, f.system())
	case path == DefaultSystemPath && r.Method == http.MethodPatch:
		body := f.readPatch(w, r)
		if body == nil {
			return
		}
		var payload struct {
			Boot struct {
				BootOrder []string
			}
		}
		_ = json.Unmarshal(body, &payload)
		f.bootOrder = payload.Boot.BootOrder
		w.WriteHeader(http.StatusNoContent)
	case path == DefaultSystemPath+"/BootOptions":
		members := []map[string]string{}
		for ref := range f.bootOptions {
			members = append(members, map[string]string{"@odata.id": DefaultSystemPath + "/BootOptions/" + ref})
		}
		f.writeJSON(w, map[string]interface{}{"Members": members, "Members@odata.count": len(members)})
	case strings.HasPrefix(path, DefaultSystemPath+"/BootOptions/"):
		ref := strings.TrimPrefix(path, DefaultSystemPath+"/BootOptions/")
		name, ok := f.bootOptions[ref]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		f.writeJSON(w, map[string]string{"Id": ref, "BootOptionReference": ref, "DisplayName": name})
	case path == DefaultSystemPath+"/Actions/ComputerSystem.Reset" && r.Method == http.MethodPost:
		var payload struct {
			ResetType string
		}
		_ = json.NewDecoder(r.Body).Decode(&payload)
		f.resets = append(f.resets, payload.ResetType)
		if f.powerOnOnReset {
			f.powerState = redfish.OnPowerState
		}
		f.pending = append([]redfish.PowerState(nil), f.afterReset...)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (f *fakeRedfish) readPatch(w http.ResponseWriter, r *http.Request) []byte {
	var raw json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return nil
	}
	f.patches = append(f.patches, raw)
	return raw
}

func (f *fakeRedfish) system() map[string]interface{} {
	return map[string]interface{}{
		"@odata.id":  DefaultSystemPath,
		"Id":         "1",
		"Name":       "System",
		"PowerState": string(f.powerState),
		"Boot": map[string]interface{}{
			"BootOrder":   f.bootOrder,
			"BootOptions": map[string]string{"@odata.id": DefaultSystemPath + "/BootOptions"},
		},
		"Actions": map[string]interface{}{
			"#ComputerSystem.Reset": map[string]interface{}{
				"target":                            DefaultSystemPath + "/Actions/ComputerSystem.Reset",
				"ResetType@Redfish.AllowableValues": []string{"On", "ForceOff", "GracefulShutdown", "GracefulRestart", "ForceRestart"},
			},
		},
	}
}

func (f *fakeRedfish) reads() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.systemReads
}

func (f *fakeRedfish) state() (patches [][]byte, resets []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.patches...), append([]string(nil), f.resets...)
}

// startFake runs f behind TLS and returns a client configured for it together
// with the host name to pass to the client.
func startFake(t *testing.T, f *fakeRedfish, mutate func(*Config)) (*Client, string) {
	t.Helper()

	srv := httptest.NewTLSServer(f)
	t.Cleanup(srv.Close)

	cfg := DefaultConfig()
	cfg.Domain = ""
	cfg.Insecure = true
	cfg.Timeout = 5 * time.Second
	cfg.PowerPollInterval = 10 * time.Millisecond
	if mutate != nil {
		mutate(&cfg)
	}

	client, err := New(Credentials{Username: testUser, Password: testPassword}, cfg)
	require.NoError(t, err)

	return client, srv.Listener.Addr().String()
}
