package installer

import (
	"context"
	"io"
	"net/http"
	"net/url"

	"github.com/dsyorkd/assisted-console/internal/metrics"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// API is the set of installer operations the console uses
type API interface {
	ListClusters(ctx context.Context) ([]models.Cluster, error)
	GetCluster(ctx context.Context, clusterID string) (*models.Cluster, error)
	CreateCluster(ctx context.Context, params models.ClusterCreateParams) (*models.Cluster, error)
	UpdateCluster(ctx context.Context, clusterID string, params models.ClusterUpdateParams) (*models.Cluster, error)
	DeleteCluster(ctx context.Context, clusterID string) error

	ListHosts(ctx context.Context, clusterID string) ([]models.Host, error)
	GetHost(ctx context.Context, clusterID, hostID string) (*models.Host, error)
	RegisterHost(ctx context.Context, clusterID string, params models.HostCreateParams) (*models.HostRegistrationResponse, error)
	EnableHost(ctx context.Context, clusterID, hostID string) (*models.Host, error)
	DisableHost(ctx context.Context, clusterID, hostID string) (*models.Host, error)
	ResetHost(ctx context.Context, clusterID, hostID string) (*models.Host, error)
	DeregisterHost(ctx context.Context, clusterID, hostID string) error
	GetNextSteps(ctx context.Context, clusterID, hostID string) (*models.Steps, error)
	PostStepReply(ctx context.Context, clusterID, hostID string, reply models.StepReply) error

	GetPresignedFileURL(ctx context.Context, clusterID string, params PresignedParams) (*models.Presigned, error)
	DownloadLogs(ctx context.Context, clusterID string, params LogsParams, w io.Writer) (int64, error)
	DownloadKubeconfig(ctx context.Context, clusterID string, w io.Writer) (int64, error)
	FetchURL(ctx context.Context, rawURL string, w io.Writer) (int64, error)
	GetCredentials(ctx context.Context, clusterID string) (*models.Credentials, error)

	ListEvents(ctx context.Context, clusterID, hostID string) ([]models.Event, error)
	ListOpenshiftVersions(ctx context.Context) (models.OpenshiftVersions, error)
}

var _ API = (*Client)(nil)

// PresignedParams selects the file a presigned URL is requested for
type PresignedParams struct {
	FileName string
	HostID   string
	LogsType models.LogsType
}

// LogsParams selects the logs to download
type LogsParams struct {
	HostID   string
	LogsType models.LogsType
}

// checkIDs validates field/id pairs
func (c *Client) checkIDs(op string, pairs ...string) error {
	for i := 0; i+1 < len(pairs); i += 2 {
		if err := checkID(pairs[i], pairs[i+1]); err != nil {
			metrics.ObserveInstallerRequest(op, "validation", 0)
			return err
		}
	}
	return nil
}

func clusterPath(clusterID string) string {
	return "/clusters/" + url.PathEscape(clusterID)
}

func hostPath(clusterID, hostID string) string {
	return clusterPath(clusterID) + "/hosts/" + url.PathEscape(hostID)
}

// ListClusters returns every cluster visible to the caller
func (c *Client) ListClusters(ctx context.Context) ([]models.Cluster, error) {
	var out []models.Cluster
	err := c.do(ctx, request{op: "ListClusters", method: http.MethodGet, path: "/clusters"}, &out)
	return out, err
}

// GetCluster returns a cluster including its host snapshot
func (c *Client) GetCluster(ctx context.Context, clusterID string) (*models.Cluster, error) {
	const op = "GetCluster"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return nil, err
	}
	var out models.Cluster
	if err := c.do(ctx, request{op: op, method: http.MethodGet, path: clusterPath(clusterID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCluster registers a new cluster definition
func (c *Client) CreateCluster(ctx context.Context, params models.ClusterCreateParams) (*models.Cluster, error) {
	var out models.Cluster
	err := c.do(ctx, request{op: "CreateCluster", method: http.MethodPost, path: "/clusters", body: params}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCluster applies a partial update
func (c *Client) UpdateCluster(ctx context.Context, clusterID string, params models.ClusterUpdateParams) (*models.Cluster, error) {
	const op = "UpdateCluster"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return nil, err
	}
	for _, r := range params.HostsRoles {
		if err := c.checkIDs(op, "hosts_roles.id", r.ID); err != nil {
			return nil, err
		}
	}
	for _, n := range params.HostsNames {
		if err := c.checkIDs(op, "hosts_names.id", n.ID); err != nil {
			return nil, err
		}
	}
	var out models.Cluster
	err := c.do(ctx, request{op: op, method: http.MethodPatch, path: clusterPath(clusterID), body: params}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCluster removes a cluster definition
func (c *Client) DeleteCluster(ctx context.Context, clusterID string) error {
	const op = "DeleteCluster"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return err
	}
	return c.do(ctx, request{op: op, method: http.MethodDelete, path: clusterPath(clusterID)}, nil)
}

// ListHosts returns the hosts registered with a cluster
func (c *Client) ListHosts(ctx context.Context, clusterID string) ([]models.Host, error) {
	const op = "ListHosts"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return nil, err
	}
	var out []models.Host
	err := c.do(ctx, request{op: op, method: http.MethodGet, path: clusterPath(clusterID) + "/hosts"}, &out)
	return out, err
}

// GetHost returns one host
func (c *Client) GetHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	const op = "GetHost"
	if err := c.checkIDs(op, "cluster_id", clusterID, "host_id", hostID); err != nil {
		return nil, err
	}
	var out models.Host
	if err := c.do(ctx, request{op: op, method: http.MethodGet, path: hostPath(clusterID, hostID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterHost registers a discovered host with a cluster
func (c *Client) RegisterHost(ctx context.Context, clusterID string, params models.HostCreateParams) (*models.HostRegistrationResponse, error) {
	const op = "RegisterHost"
	if err := c.checkIDs(op, "cluster_id", clusterID, "host_id", params.HostID); err != nil {
		return nil, err
	}
	var out models.HostRegistrationResponse
	err := c.do(ctx, request{op: op, method: http.MethodPost, path: clusterPath(clusterID) + "/hosts", body: params}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) hostAction(ctx context.Context, op, method, clusterID, hostID, action string) (*models.Host, error) {
	if err := c.checkIDs(op, "cluster_id", clusterID, "host_id", hostID); err != nil {
		return nil, err
	}
	var out models.Host
	err := c.do(ctx, request{op: op, method: method, path: hostPath(clusterID, hostID) + "/actions/" + action}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// EnableHost includes a disabled host in the installation again
func (c *Client) EnableHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	return c.hostAction(ctx, "EnableHost", http.MethodPost, clusterID, hostID, "enable")
}

// DisableHost excludes a host from the installation
func (c *Client) DisableHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	return c.hostAction(ctx, "DisableHost", http.MethodDelete, clusterID, hostID, "enable")
}

// ResetHost returns a failed host to discovery
func (c *Client) ResetHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	return c.hostAction(ctx, "ResetHost", http.MethodPost, clusterID, hostID, "reset")
}

// DeregisterHost removes a host from its cluster
func (c *Client) DeregisterHost(ctx context.Context, clusterID, hostID string) error {
	const op = "DeregisterHost"
	if err := c.checkIDs(op, "cluster_id", clusterID, "host_id", hostID); err != nil {
		return err
	}
	return c.do(ctx, request{op: op, method: http.MethodDelete, path: hostPath(clusterID, hostID)}, nil)
}

// GetNextSteps returns the instructions queued for a host's agent
func (c *Client) GetNextSteps(ctx context.Context, clusterID, hostID string) (*models.Steps, error) {
	const op = "GetNextSteps"
	if err := c.checkIDs(op, "cluster_id", clusterID, "host_id", hostID); err != nil {
		return nil, err
	}
	var out models.Steps
	err := c.do(ctx, request{op: op, method: http.MethodGet, path: hostPath(clusterID, hostID) + "/instructions"}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// PostStepReply reports the result of one step
func (c *Client) PostStepReply(ctx context.Context, clusterID, hostID string, reply models.StepReply) error {
	const op = "PostStepReply"
	if err := c.checkIDs(op, "cluster_id", clusterID, "host_id", hostID); err != nil {
		return err
	}
	return c.do(ctx, request{op: op, method: http.MethodPost, path: hostPath(clusterID, hostID) + "/instructions", body: reply}, nil)
}

// GetPresignedFileURL asks for a time-limited object storage URL of a cluster file
func (c *Client) GetPresignedFileURL(ctx context.Context, clusterID string, params PresignedParams) (*models.Presigned, error) {
	const op = "GetPresignedFileURL"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("file_name", params.FileName)
	if params.HostID != "" {
		if err := c.checkIDs(op, "host_id", params.HostID); err != nil {
			return nil, err
		}
		query.Set("host_id", params.HostID)
	}
	if params.LogsType != "" {
		query.Set("logs_type", string(params.LogsType))
	}
	var out models.Presigned
	err := c.do(ctx, request{op: op, method: http.MethodGet, path: clusterPath(clusterID) + "/downloads/files-presigned", query: query}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadLogs streams a logs archive to w
func (c *Client) DownloadLogs(ctx context.Context, clusterID string, params LogsParams, w io.Writer) (int64, error) {
	const op = "DownloadLogs"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return 0, err
	}
	query := url.Values{}
	if params.HostID != "" {
		if err := c.checkIDs(op, "host_id", params.HostID); err != nil {
			return 0, err
		}
		query.Set("host_id", params.HostID)
	}
	if params.LogsType != "" {
		query.Set("logs_type", string(params.LogsType))
	}
	return c.stream(ctx, request{op: op, method: http.MethodGet, path: clusterPath(clusterID) + "/logs", query: query}, w)
}

// DownloadKubeconfig streams the admin kubeconfig of a cluster to w
func (c *Client) DownloadKubeconfig(ctx context.Context, clusterID string, w io.Writer) (int64, error) {
	const op = "DownloadKubeconfig"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return 0, err
	}
	return c.stream(ctx, request{op: op, method: http.MethodGet, path: clusterPath(clusterID) + "/downloads/kubeconfig"}, w)
}

// FetchURL streams an object storage URL, such as a presigned one, to w.
// No credentials are sent.
func (c *Client) FetchURL(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	return c.stream(ctx, request{op: "FetchURL", method: http.MethodGet, external: rawURL}, w)
}

// GetCredentials returns the kubeadmin credentials of an installed cluster
func (c *Client) GetCredentials(ctx context.Context, clusterID string) (*models.Credentials, error) {
	const op = "GetCredentials"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return nil, err
	}
	var out models.Credentials
	if err := c.do(ctx, request{op: op, method: http.MethodGet, path: clusterPath(clusterID) + "/credentials"}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListEvents returns the event log of a cluster, or of one host when hostID is set
func (c *Client) ListEvents(ctx context.Context, clusterID, hostID string) ([]models.Event, error) {
	const op = "ListEvents"
	if err := c.checkIDs(op, "cluster_id", clusterID); err != nil {
		return nil, err
	}
	query := url.Values{}
	if hostID != "" {
		if err := c.checkIDs(op, "host_id", hostID); err != nil {
			return nil, err
		}
		query.Set("host_id", hostID)
	}
	var out []models.Event
	err := c.do(ctx, request{op: op, method: http.MethodGet, path: clusterPath(clusterID) + "/events", query: query}, &out)
	return out, err
}

// ListOpenshiftVersions returns the releases the installer can deploy
func (c *Client) ListOpenshiftVersions(ctx context.Context) (models.OpenshiftVersions, error) {
	var out models.OpenshiftVersions
	err := c.do(ctx, request{op: "ListOpenshiftVersions", method: http.MethodGet, path: "/openshift_versions"}, &out)
	return out, err
}
