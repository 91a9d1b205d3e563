package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dsyorkd/assisted-console/internal/config"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/services"
	testutils "github.com/dsyorkd/assisted-console/internal/testing"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const (
	clusterID  = testutils.ClusterID
	hostID     = testutils.HostID
	pullSecret = testutils.PullSecret
	kubeconfig = testutils.Kubeconfig
	installerV = testutils.InstallerPath
)

type fakeInstaller = testutils.Installer

// setupRouter serves the console routes against a fake installer
func setupRouter(t *testing.T, fake fakeInstaller) *gin.Engine {
	t.Helper()
	log := logger.Discard()
	api := fake.Client(t)
	clusters := NewClusterHandler(api,
		services.NewClusterCreator(api, config.ClusterDefaultsConfig{OpenshiftVersion: "4.7"}, log),
		services.NewClusterEditor(api, log), log)
	hosts := NewHostHandler(api, services.NewHostActions(api, log), log)
	downloads := NewDownloadHandler(api, services.NewDownloads(api, false, log), log)
	health := NewHealthHandler(api, "test")

	router := gin.New()
	router.GET("/ready", health.Ready)
	v1 := router.Group("/api/v1")
	v1.GET("/openshift-versions", clusters.Versions)
	v1.GET("/clusters", clusters.List)
	v1.POST("/clusters", clusters.Create)
	v1.GET("/clusters/new", clusters.New)
	v1.GET("/clusters/:id", clusters.Get)
	v1.PATCH("/clusters/:id", clusters.Update)
	v1.DELETE("/clusters/:id", clusters.Delete)
	v1.GET("/clusters/:id/events", clusters.Events)
	v1.GET("/clusters/:id/hosts", hosts.List)
	v1.POST("/clusters/:id/hosts/:hostId/actions/:action", hosts.Action)
	v1.DELETE("/clusters/:id/hosts/:hostId", hosts.Delete)
	v1.PATCH("/clusters/:id/hosts/:hostId/role", hosts.SetRole)
	v1.PATCH("/clusters/:id/hosts/:hostId/hostname", hosts.SetHostname)
	v1.GET("/clusters/:id/logs", downloads.ClusterLogs)
	v1.GET("/clusters/:id/hosts/:hostId/logs", downloads.HostLogs)
	v1.GET("/clusters/:id/kubeconfig", downloads.Kubeconfig)
	return router
}

func perform(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"field errors", errors.FieldErrors{"name": "Required"}, http.StatusUnprocessableEntity},
		{"validation error", errors.NewValidationError("cluster_id", "x", "must be a valid UUID"), http.StatusBadRequest},
		{"not permitted", errors.Wrap(errors.ErrActionNotPermitted, "enable"), http.StatusConflict},
		{"in flight", errors.ErrInFlight, http.StatusConflict},
		{"not found", errors.Wrap(errors.ErrNotFound, "host"), http.StatusNotFound},
		{"network", errors.NewAPIError("ListClusters", errors.KindNetwork, 0, "connection refused", nil), http.StatusBadGateway},
		{"malformed", errors.NewAPIError("GetCluster", errors.KindMalformed, http.StatusOK, "bad body", nil), http.StatusBadGateway},
		{"expired session", errors.NewAPIError("GetCluster", errors.KindAuth, 0, installer.SessionExpiredReason, nil), http.StatusUnauthorized},
		{"installer client error", errors.NewAPIError("UpdateCluster", errors.KindClient, http.StatusForbidden, "forbidden", nil), http.StatusForbidden},
		{"installer server error", errors.NewAPIError("UpdateCluster", errors.KindServer, http.StatusServiceUnavailable, "down", nil), http.StatusServiceUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, statusFor(tt.err))
		})
	}
}

func TestClusterHandler_List(t *testing.T) {
	t.Run("should list clusters", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters": testutils.Reply(http.StatusOK, []models.Cluster{testutils.CreateTestCluster(models.ClusterStatusReady, models.HostStatusKnown)}),
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp struct {
			Clusters []map[string]interface{} `json:"clusters"`
			Count    int                      `json:"count"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Count)
		assert.Equal(t, "alpha", resp.Clusters[0]["name"])
		assert.Equal(t, float64(1), resp.Clusters[0]["hosts"])
	})

	t.Run("should alert when the installer fails", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
			},
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters", nil)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, errors.ServerFailureReason, resp.Message)
		require.Len(t, resp.Alerts, 1)
		assert.Equal(t, FetchClustersFailedTitle, resp.Alerts[0].Title)
	})
}

func TestClusterHandler_Create(t *testing.T) {
	form := services.ClusterForm{Name: "beta", OpenshiftVersion: "4.7", PullSecret: pullSecret}

	t.Run("should create a cluster", func(t *testing.T) {
		var created int32
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters": testutils.Reply(http.StatusOK, []models.Cluster{}),
			"POST " + installerV + "/clusters": func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&created, 1)
				var params models.ClusterCreateParams
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
				assert.Equal(t, "beta", params.Name)
				testutils.WriteJSON(w, http.StatusCreated, models.Cluster{ID: clusterID, Name: "beta", Status: models.ClusterStatusInsufficient})
			},
		})

		w := perform(router, http.MethodPost, "/api/v1/clusters", form)

		require.Equal(t, http.StatusCreated, w.Code)
		var submission services.Submission
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submission))
		assert.Equal(t, services.CreatorSuccess, submission.State)
		assert.Equal(t, clusterID, submission.Cluster.ID)
		assert.Equal(t, int32(1), atomic.LoadInt32(&created))
	})

	t.Run("should reject a taken name", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters": testutils.Reply(http.StatusOK, []models.Cluster{{ID: clusterID, Name: "beta"}}),
		})

		w := perform(router, http.MethodPost, "/api/v1/clusters", form)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, `Name "beta" is already taken.`, resp.Fields["name"])
		assert.Empty(t, resp.Alerts)
	})

	t.Run("should report the installer's reason", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters":  testutils.Reply(http.StatusOK, []models.Cluster{}),
			"POST " + installerV + "/clusters": testutils.Failure(http.StatusBadRequest, "Base DNS domain is invalid"),
		})

		w := perform(router, http.MethodPost, "/api/v1/clusters", form)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeError(t, w)
		assert.Equal(t, "Base DNS domain is invalid", resp.Message)
		require.Len(t, resp.Alerts, 1)
		assert.Equal(t, services.CreateFailedTitle, resp.Alerts[0].Title)
	})

	t.Run("should reject a malformed body", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/clusters", bytes.NewBufferString("{"))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClusterHandler_New(t *testing.T) {
	router := setupRouter(t, fakeInstaller{
		"GET " + installerV + "/openshift_versions": testutils.Reply(http.StatusOK, models.OpenshiftVersions{
			"4.6": {DisplayName: "4.6.16", SupportLevel: "production"},
			"4.7": {DisplayName: "4.7.2", SupportLevel: "production"},
			"4.8": {DisplayName: "4.8.0-fc.0", SupportLevel: "beta"},
		}),
	})

	w := perform(router, http.MethodGet, "/api/v1/clusters/new", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var defaults services.FormDefaults
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &defaults))
	assert.Equal(t, "4.7", defaults.Form.OpenshiftVersion)
	require.Len(t, defaults.Versions, 3)
	assert.Equal(t, "4.8", defaults.Versions[0].Value)
}

func TestClusterHandler_Get(t *testing.T) {
	t.Run("should return the cluster page", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusInstalled, models.HostStatusInstalled)),
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID, nil)

		require.Equal(t, http.StatusOK, w.Code)
		var detail map[string]interface{}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &detail))
		assert.Equal(t, "alpha", detail["name"])
		assert.Equal(t, true, detail["can_download_kubeconfig"])
	})

	t.Run("should pass the installer's not found", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Failure(http.StatusNotFound, "Cluster not found"),
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID, nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeError(t, w)
		require.Len(t, resp.Alerts, 1)
		assert.Equal(t, "Cluster not found", resp.Alerts[0].Message)
	})

	t.Run("should reject ids that are not UUIDs", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{})

		w := perform(router, http.MethodGet, "/api/v1/clusters/not-a-uuid", nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestClusterHandler_Update(t *testing.T) {
	t.Run("should apply the update", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"PATCH " + installerV + "/clusters/{id}": func(w http.ResponseWriter, r *http.Request) {
				var params models.ClusterUpdateParams
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
				cluster := testutils.CreateTestCluster(models.ClusterStatusReady, models.HostStatusKnown)
				if assert.NotNil(t, params.BaseDNSDomain) {
					cluster.BaseDNSDomain = *params.BaseDNSDomain
				}
				testutils.WriteJSON(w, http.StatusOK, cluster)
			},
		})

		w := perform(router, http.MethodPatch, "/api/v1/clusters/"+clusterID, map[string]string{"base_dns_domain": "example.com"})

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("should return field errors", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{})

		w := perform(router, http.MethodPatch, "/api/v1/clusters/"+clusterID, map[string]string{"name": "Not_Valid"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
		assert.Equal(t, services.MsgNameFormat, decodeError(t, w).Fields["name"])
	})
}

func TestClusterHandler_Delete(t *testing.T) {
	router := setupRouter(t, fakeInstaller{
		"DELETE " + installerV + "/clusters/{id}": func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNoContent)
		},
	})

	w := perform(router, http.MethodDelete, "/api/v1/clusters/"+clusterID, nil)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestClusterHandler_Events(t *testing.T) {
	router := setupRouter(t, fakeInstaller{
		"GET " + installerV + "/clusters/{id}/events": func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, hostID, r.URL.Query().Get("host_id"))
			testutils.WriteJSON(w, http.StatusOK, []models.Event{{ClusterID: clusterID, HostID: hostID, Severity: models.EventSeverityInfo, Message: "Host registered"}})
		},
	})

	w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/events?host_id="+hostID, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Host registered")
}

func TestHostHandler(t *testing.T) {
	hostsPath := "/api/v1/clusters/" + clusterID + "/hosts/" + hostID

	t.Run("should list hosts", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusReady, models.HostStatusKnown)),
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/hosts", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role_label":"Control plane node"`)
	})

	t.Run("should enable a disabled host", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusInsufficient, models.HostStatusDisabled)),
			"POST " + installerV + "/clusters/{id}/hosts/{hostId}/actions/enable": testutils.Reply(http.StatusOK,
				models.Host{ID: hostID, Status: models.HostStatusDiscovering}),
		})

		w := perform(router, http.MethodPost, hostsPath+"/actions/enable", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"status":"discovering"`)
	})

	t.Run("should refuse an action the state does not permit", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusInsufficient, models.HostStatusDisabled)),
		})

		w := perform(router, http.MethodPost, hostsPath+"/actions/disable", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, decodeError(t, w).Alerts)
	})

	t.Run("should reject unknown actions", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{})

		w := perform(router, http.MethodPost, hostsPath+"/actions/install", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("should delete a host", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusReady, models.HostStatusKnown)),
			"DELETE " + installerV + "/clusters/{id}/hosts/{hostId}": func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			},
		})

		w := perform(router, http.MethodDelete, hostsPath, nil)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("should set the role", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusReady, models.HostStatusKnown)),
			"PATCH " + installerV + "/clusters/{id}": func(w http.ResponseWriter, r *http.Request) {
				var params models.ClusterUpdateParams
				assert.NoError(t, json.NewDecoder(r.Body).Decode(&params))
				cluster := testutils.CreateTestCluster(models.ClusterStatusReady, models.HostStatusKnown)
				if assert.Len(t, params.HostsRoles, 1) {
					cluster.Hosts[0].Role = params.HostsRoles[0].Role
				}
				testutils.WriteJSON(w, http.StatusOK, cluster)
			},
		})

		w := perform(router, http.MethodPatch, hostsPath+"/role", SetRoleRequest{Role: models.HostRoleWorker})

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"worker"`)
	})

	t.Run("should reject an invalid hostname", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{})

		w := perform(router, http.MethodPatch, hostsPath+"/hostname", SetHostnameRequest{Hostname: "Bad_Host"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestDownloadHandler(t *testing.T) {
	collected := time.Date(2021, 3, 1, 10, 0, 0, 0, time.UTC)

	t.Run("should stream the kubeconfig", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusInstalled, models.HostStatusInstalled)),
			"GET " + installerV + "/clusters/{id}/downloads/kubeconfig": func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, kubeconfig)
			},
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/kubeconfig", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, `attachment; filename="kubeconfig"`, w.Header().Get("Content-Disposition"))
		assert.Equal(t, kubeconfig, w.Body.String())
	})

	t.Run("should refuse the kubeconfig before installation", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusReady, models.HostStatusKnown)),
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/kubeconfig", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Empty(t, w.Header().Get("Content-Disposition"))
	})

	t.Run("should answer a broken kubeconfig with bad gateway", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusInstalled, models.HostStatusInstalled)),
			"GET " + installerV + "/clusters/{id}/downloads/kubeconfig": func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, "clusters: [")
			},
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/kubeconfig", nil)

		assert.Equal(t, http.StatusBadGateway, w.Code)
		resp := decodeError(t, w)
		require.Len(t, resp.Alerts, 1)
		assert.Equal(t, services.KubeconfigFailedTitle, resp.Alerts[0].Title)
	})

	t.Run("should stream host logs", func(t *testing.T) {
		cluster := testutils.CreateTestCluster(models.ClusterStatusError, models.HostStatusError)
		cluster.Hosts[0].LogsCollectedAt = &collected
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, cluster),
			"GET " + installerV + "/clusters/{id}/logs": func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, hostID, r.URL.Query().Get("host_id"))
				assert.Equal(t, string(models.LogsTypeHost), r.URL.Query().Get("logs_type"))
				_, _ = io.WriteString(w, "archive")
			},
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/hosts/"+hostID+"/logs", nil)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "archive", w.Body.String())
		assert.Contains(t, w.Header().Get("Content-Disposition"), hostID)
	})

	t.Run("should refuse cluster logs when none were collected", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, testutils.CreateTestCluster(models.ClusterStatusError, models.HostStatusError)),
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/logs", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("should report an unknown host", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/clusters/{id}": testutils.Reply(http.StatusOK, models.Cluster{ID: clusterID, Status: models.ClusterStatusError}),
		})

		w := perform(router, http.MethodGet, "/api/v1/clusters/"+clusterID+"/hosts/"+hostID+"/logs", nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealthHandler_Ready(t *testing.T) {
	t.Run("should be ready when the installer answers", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/openshift_versions": testutils.Reply(http.StatusOK, models.OpenshiftVersions{}),
		})

		w := perform(router, http.MethodGet, "/ready", nil)

		require.Equal(t, http.StatusOK, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "healthy", resp.Services["installer"])
	})

	t.Run("should not be ready when the installer fails", func(t *testing.T) {
		router := setupRouter(t, fakeInstaller{
			"GET " + installerV + "/openshift_versions": testutils.Failure(http.StatusServiceUnavailable, "maintenance"),
		})

		w := perform(router, http.MethodGet, "/ready", nil)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
		var resp ReadinessResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "not_ready", resp.Status)
		assert.Equal(t, "unhealthy: maintenance", resp.Services["installer"])
	})
}
