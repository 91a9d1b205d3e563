package capabilities

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dsyorkd/assisted-console/internal/models"
)

func TestAllowed(t *testing.T) {
	tests := []struct {
		name     string
		action   Action
		cluster  models.ClusterStatus
		host     models.HostStatus
		expected bool
	}{
		{"should enable a disabled host in a ready cluster", ActionEnable, models.ClusterStatusReady, models.HostStatusDisabled, true},
		{"should not enable a known host", ActionEnable, models.ClusterStatusReady, models.HostStatusKnown, false},
		{"should disable a known host while adding hosts", ActionDisable, models.ClusterStatusAddingHosts, models.HostStatusKnown, true},
		{"should not disable during installation", ActionDisable, models.ClusterStatusInstalling, models.HostStatusKnown, false},
		{"should delete an added host", ActionDelete, models.ClusterStatusAddingHosts, models.HostStatusAddedToExistingCluster, true},
		{"should not delete an installing host", ActionDelete, models.ClusterStatusReady, models.HostStatusInstalling, false},
		{"should reset an errored host while adding hosts", ActionReset, models.ClusterStatusAddingHosts, models.HostStatusError, true},
		{"should not reset outside adding hosts", ActionReset, models.ClusterStatusError, models.HostStatusError, false},
		{"should edit role of a disconnected host", ActionEditRole, models.ClusterStatusPendingForInput, models.HostStatusDisconnected, true},
		{"should not edit roles while adding hosts", ActionEditRole, models.ClusterStatusAddingHosts, models.HostStatusKnown, false},
		{"should deny unknown cluster status", ActionDelete, models.ClusterStatus("exploded"), models.HostStatusKnown, false},
		{"should deny unknown host status", ActionDelete, models.ClusterStatusReady, models.HostStatus("melted"), false},
		{"should deny unknown action", Action("format"), models.ClusterStatusReady, models.HostStatusKnown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Allowed(tt.action, tt.cluster, tt.host))
		})
	}
}

func TestAllowListsAreExhaustive(t *testing.T) {
	allowed := map[Action]struct {
		clusters []models.ClusterStatus
		hosts    []models.HostStatus
	}{
		ActionEnable: {
			[]models.ClusterStatus{"pending-for-input", "insufficient", "ready", "adding-hosts"},
			[]models.HostStatus{"disabled"},
		},
		ActionDisable: {
			[]models.ClusterStatus{"pending-for-input", "insufficient", "ready", "adding-hosts"},
			[]models.HostStatus{"discovering", "disconnected", "known", "insufficient", "pending-for-input"},
		},
		ActionDelete: {
			[]models.ClusterStatus{"pending-for-input", "insufficient", "ready", "adding-hosts"},
			[]models.HostStatus{"discovering", "known", "disconnected", "disabled", "insufficient", "resetting",
				"resetting-pending-user-action", "installing-pending-user-action", "pending-for-input", "added-to-existing-cluster"},
		},
		ActionReset: {
			[]models.ClusterStatus{"adding-hosts"},
			[]models.HostStatus{"error", "installing-pending-user-action"},
		},
		ActionEditRole: {
			[]models.ClusterStatus{"pending-for-input", "insufficient", "ready"},
			[]models.HostStatus{"discovering", "known", "disconnected", "disabled", "insufficient", "pending-for-input"},
		},
	}

	contains := func(list interface{}, v interface{}) bool {
		switch l := list.(type) {
		case []models.ClusterStatus:
			for _, s := range l {
				if s == v {
					return true
				}
			}
		case []models.HostStatus:
			for _, s := range l {
				if s == v {
					return true
				}
			}
		}
		return false
	}

	for action, lists := range allowed {
		for _, cs := range models.ClusterStatuses {
			for _, hs := range models.HostStatuses {
				expected := contains(lists.clusters, cs) && contains(lists.hosts, hs)
				assert.Equal(t, expected, Allowed(action, cs, hs), "%s with cluster %s and host %s", action, cs, hs)
			}
		}
	}
}

func TestFor(t *testing.T) {
	set := For(models.ClusterStatusReady, models.HostStatusKnown)
	assert.True(t, set[ActionDisable])
	assert.True(t, set[ActionDelete])
	assert.True(t, set[ActionEditRole])
	assert.False(t, set[ActionEnable])
	assert.False(t, set[ActionReset])
	assert.Equal(t, []Action{ActionDelete, ActionDisable, ActionEditRole}, set.Permitted())

	assert.Empty(t, For("unknown", "unknown").Permitted())
}

func TestPredicates(t *testing.T) {
	assert.True(t, CanEnable(models.ClusterStatusInsufficient, models.HostStatusDisabled))
	assert.True(t, CanDisable(models.ClusterStatusInsufficient, models.HostStatusInsufficient))
	assert.True(t, CanDelete(models.ClusterStatusInsufficient, models.HostStatusResetting))
	assert.True(t, CanReset(models.ClusterStatusAddingHosts, models.HostStatusInstallingPendingUserAction))
	assert.True(t, CanEditRole(models.ClusterStatusReady, models.HostStatusDisabled))
	assert.Equal(t, CanEditRole(models.ClusterStatusReady, models.HostStatusError), CanEditHost(models.ClusterStatusReady, models.HostStatusError))
	assert.True(t, CanEditDisks(models.ClusterStatusReady, models.HostStatusKnown))
}

func TestCanDownloadKubeconfig(t *testing.T) {
	for _, cs := range models.ClusterStatuses {
		expected := cs == models.ClusterStatusInstalling || cs == models.ClusterStatusFinalizing ||
			cs == models.ClusterStatusError || cs == models.ClusterStatusCancelled || cs == models.ClusterStatusInstalled
		assert.Equal(t, expected, CanDownloadKubeconfig(cs), cs)
	}
	assert.False(t, CanDownloadKubeconfig("unknown"))
}

func TestCanInstallHost(t *testing.T) {
	day2 := &models.Cluster{Kind: models.ClusterKindAddHostsCluster, Status: models.ClusterStatusAddingHosts}

	t.Run("should allow a known host in an add-hosts cluster", func(t *testing.T) {
		assert.True(t, CanInstallHost(day2, models.HostStatusKnown))
	})

	t.Run("should deny other host statuses", func(t *testing.T) {
		assert.False(t, CanInstallHost(day2, models.HostStatusInsufficient))
	})

	t.Run("should deny regular clusters", func(t *testing.T) {
		c := &models.Cluster{Kind: models.ClusterKindCluster, Status: models.ClusterStatusAddingHosts}
		assert.False(t, CanInstallHost(c, models.HostStatusKnown))
		assert.False(t, CanInstallHost(nil, models.HostStatusKnown))
	})
}

func TestCanHostnameBeChanged(t *testing.T) {
	assert.True(t, CanHostnameBeChanged(models.HostStatusPendingForInput))
	assert.False(t, CanHostnameBeChanged(models.HostStatusDisabled))
	assert.False(t, CanHostnameBeChanged(models.HostStatusInstalled))
}
