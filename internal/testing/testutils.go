package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
)

const (
	ClusterID  = "0f0e7d6c-5b4a-4392-8170-6f5e4d3c2b1a"
	HostID     = "1b0f3b0e-93f4-4bd2-9b5e-5f3b1c2d3e4f"
	PullSecret = `{"auths":{"cloud.openshift.com":{"auth":"dXNlcjpwYXNz"}}}`

	// InstallerPath prefixes every route of the fake installer
	InstallerPath = installer.BasePath
)

// Kubeconfig is a minimal admin kubeconfig for a cluster named alpha
const Kubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: alpha
  cluster:
    server: https://api.alpha.example.com:6443
contexts:
- name: admin
  context:
    cluster: alpha
    user: admin
current-context: admin
users:
- name: admin
  user:
    token: secret
`

// Installer is a fake installer service. Keys are method-qualified mux
// patterns such as "GET /api/assisted-install/v1/clusters/{id}".
type Installer map[string]http.HandlerFunc

// Start serves the fake until the test ends
func (f Installer) Start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	for pattern, handler := range f {
		mux.HandleFunc(pattern, handler)
	}
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

// Client starts the fake and returns an installer client talking to it
func (f Installer) Client(t *testing.T) *installer.Client {
	t.Helper()
	server := f.Start(t)
	return installer.New(installer.Options{BaseURL: server.URL, Logger: logger.Discard(), Timeout: 5 * time.Second})
}

// WriteJSON answers with v encoded as JSON
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Reply answers every request with status and v
func Reply(status int, v interface{}) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		WriteJSON(w, status, v)
	}
}

// Failure answers with an installer error carrying reason
func Failure(status int, reason string) http.HandlerFunc {
	return Reply(status, models.InstallerError{Code: http.StatusText(status), Reason: reason})
}

// CreateTestCluster returns cluster alpha with a single master host
func CreateTestCluster(status models.ClusterStatus, hostStatus models.HostStatus) models.Cluster {
	return models.Cluster{
		ID:               ClusterID,
		Name:             "alpha",
		OpenshiftVersion: "4.7",
		Status:           status,
		Hosts: []models.Host{
			{ID: HostID, ClusterID: ClusterID, Status: hostStatus, Role: models.HostRoleMaster},
		},
	}
}
