package services

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// MockInstaller is a mock implementation of installer.API
type MockInstaller struct {
	mock.Mock
}

var _ installer.API = (*MockInstaller)(nil)

func (m *MockInstaller) ListClusters(ctx context.Context) ([]models.Cluster, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Cluster), args.Error(1)
}

func (m *MockInstaller) GetCluster(ctx context.Context, clusterID string) (*models.Cluster, error) {
	args := m.Called(ctx, clusterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cluster), args.Error(1)
}

func (m *MockInstaller) CreateCluster(ctx context.Context, params models.ClusterCreateParams) (*models.Cluster, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cluster), args.Error(1)
}

func (m *MockInstaller) UpdateCluster(ctx context.Context, clusterID string, params models.ClusterUpdateParams) (*models.Cluster, error) {
	args := m.Called(ctx, clusterID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Cluster), args.Error(1)
}

func (m *MockInstaller) DeleteCluster(ctx context.Context, clusterID string) error {
	args := m.Called(ctx, clusterID)
	return args.Error(0)
}

func (m *MockInstaller) ListHosts(ctx context.Context, clusterID string) ([]models.Host, error) {
	args := m.Called(ctx, clusterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Host), args.Error(1)
}

func (m *MockInstaller) GetHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	args := m.Called(ctx, clusterID, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Host), args.Error(1)
}

func (m *MockInstaller) RegisterHost(ctx context.Context, clusterID string, params models.HostCreateParams) (*models.HostRegistrationResponse, error) {
	args := m.Called(ctx, clusterID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.HostRegistrationResponse), args.Error(1)
}

func (m *MockInstaller) hostCall(ctx context.Context, method string, clusterID, hostID string) (*models.Host, error) {
	args := m.MethodCalled(method, ctx, clusterID, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Host), args.Error(1)
}

func (m *MockInstaller) EnableHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	return m.hostCall(ctx, "EnableHost", clusterID, hostID)
}

func (m *MockInstaller) DisableHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	return m.hostCall(ctx, "DisableHost", clusterID, hostID)
}

func (m *MockInstaller) ResetHost(ctx context.Context, clusterID, hostID string) (*models.Host, error) {
	return m.hostCall(ctx, "ResetHost", clusterID, hostID)
}

func (m *MockInstaller) DeregisterHost(ctx context.Context, clusterID, hostID string) error {
	args := m.Called(ctx, clusterID, hostID)
	return args.Error(0)
}

func (m *MockInstaller) GetNextSteps(ctx context.Context, clusterID, hostID string) (*models.Steps, error) {
	args := m.Called(ctx, clusterID, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Steps), args.Error(1)
}

func (m *MockInstaller) PostStepReply(ctx context.Context, clusterID, hostID string, reply models.StepReply) error {
	args := m.Called(ctx, clusterID, hostID, reply)
	return args.Error(0)
}

func (m *MockInstaller) GetPresignedFileURL(ctx context.Context, clusterID string, params installer.PresignedParams) (*models.Presigned, error) {
	args := m.Called(ctx, clusterID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Presigned), args.Error(1)
}

// writeArg copies a string payload configured with Return to w
func writeArg(args mock.Arguments, w io.Writer) (int64, error) {
	if err := args.Error(1); err != nil {
		return 0, err
	}
	n, err := io.WriteString(w, args.String(0))
	return int64(n), err
}

func (m *MockInstaller) DownloadLogs(ctx context.Context, clusterID string, params installer.LogsParams, w io.Writer) (int64, error) {
	return writeArg(m.Called(ctx, clusterID, params), w)
}

func (m *MockInstaller) DownloadKubeconfig(ctx context.Context, clusterID string, w io.Writer) (int64, error) {
	return writeArg(m.Called(ctx, clusterID), w)
}

func (m *MockInstaller) FetchURL(ctx context.Context, rawURL string, w io.Writer) (int64, error) {
	return writeArg(m.Called(ctx, rawURL), w)
}

func (m *MockInstaller) GetCredentials(ctx context.Context, clusterID string) (*models.Credentials, error) {
	args := m.Called(ctx, clusterID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Credentials), args.Error(1)
}

func (m *MockInstaller) ListEvents(ctx context.Context, clusterID, hostID string) ([]models.Event, error) {
	args := m.Called(ctx, clusterID, hostID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Event), args.Error(1)
}

func (m *MockInstaller) ListOpenshiftVersions(ctx context.Context) (models.OpenshiftVersions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(models.OpenshiftVersions), args.Error(1)
}
