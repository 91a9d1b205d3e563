package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
)

func strPtr(s string) *string { return &s }

func TestValidateUpdate(t *testing.T) {
	assert.NoError(t, ValidateUpdate(models.ClusterUpdateParams{}))
	assert.NoError(t, ValidateUpdate(models.ClusterUpdateParams{
		Name:         strPtr("beta"),
		SSHPublicKey: strPtr(""),
		PullSecret:   strPtr(pullSecret),
		HostsNames:   []models.HostNameUpdate{{ID: testHostID, Hostname: "worker-1"}},
	}))

	err := ValidateUpdate(models.ClusterUpdateParams{
		Name:         strPtr(strings.Repeat("b", 60)),
		SSHPublicKey: strPtr("not a key"),
		PullSecret:   strPtr("nope"),
		HostsRoles:   []models.HostRoleUpdate{{ID: testHostID, Role: models.HostRoleBootstrap}},
	})
	fields := fieldErrors(t, err)
	assert.Equal(t, MsgNameLength, fields["name"])
	assert.Equal(t, MsgSSHKeyFormat, fields["ssh_public_key"])
	assert.Equal(t, MsgPullSecretFormat, fields["pull_secret"])
	assert.Contains(t, fields, "hosts_roles")
}

func TestClusterEditor(t *testing.T) {
	ctx := context.Background()

	t.Run("should apply a valid update", func(t *testing.T) {
		api := new(MockInstaller)
		editor := NewClusterEditor(api, logger.Discard())
		params := models.ClusterUpdateParams{BaseDNSDomain: strPtr("example.com")}
		api.On("UpdateCluster", mock.Anything, testClusterID, params).
			Return(&models.Cluster{ID: testClusterID, BaseDNSDomain: "example.com"}, nil)

		cluster, err := editor.Update(ctx, alerts.NewList(), testClusterID, params)

		require.NoError(t, err)
		assert.Equal(t, "example.com", cluster.BaseDNSDomain)
	})

	t.Run("should not send an invalid update", func(t *testing.T) {
		api := new(MockInstaller)
		editor := NewClusterEditor(api, logger.Discard())

		_, err := editor.Update(ctx, alerts.NewList(), testClusterID, models.ClusterUpdateParams{Name: strPtr("Bad_Name")})

		assert.True(t, IsInvalidInput(err))
		api.AssertNotCalled(t, "UpdateCluster", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("should alert when deletion fails", func(t *testing.T) {
		api := new(MockInstaller)
		editor := NewClusterEditor(api, logger.Discard())
		list := alerts.NewList()
		api.On("DeleteCluster", mock.Anything, testClusterID).
			Return(errors.NewAPIError("DeleteCluster", errors.KindClient, 404, "Cluster not found", nil))

		err := editor.Delete(ctx, list, testClusterID)

		require.Error(t, err)
		require.Equal(t, 1, list.Len())
		assert.Equal(t, DeleteFailedTitle, list.Alerts()[0].Title)
		assert.Equal(t, "Cluster not found", list.Alerts()[0].Message)
	})
}
