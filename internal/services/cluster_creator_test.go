package services

import (
	"context"
	"crypto/ed25519"
	"crypto/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/ssh"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/config"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
)

const pullSecret = `{"auths":{"cloud.openshift.com":{"auth":"dXNlcjpwYXNz"}}}`

func authorizedKey(t *testing.T) string {
	t.Helper()
	pub, _, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	key, err := ssh.NewPublicKey(pub)
	require.NoError(t, err)
	return strings.TrimSpace(string(ssh.MarshalAuthorizedKey(key))) + " user@example.com"
}

func validForm() ClusterForm {
	return ClusterForm{
		Name:             "alpha",
		OpenshiftVersion: "4.7",
		PullSecret:       pullSecret,
	}
}

func fieldErrors(t *testing.T, err error) errors.FieldErrors {
	t.Helper()
	var fields errors.FieldErrors
	require.True(t, errors.As(err, &fields), "expected field errors, got %v", err)
	return fields
}

func TestValidateForm(t *testing.T) {
	key := authorizedKey(t)

	tests := []struct {
		name   string
		modify func(f *ClusterForm)
		field  string
		msg    string
	}{
		{"missing name", func(f *ClusterForm) { f.Name = "" }, "name", MsgRequired},
		{"upper case name", func(f *ClusterForm) { f.Name = "Alpha" }, "name", MsgNameFormat},
		{"trailing hyphen", func(f *ClusterForm) { f.Name = "alpha-" }, "name", MsgNameFormat},
		{"long name", func(f *ClusterForm) { f.Name = strings.Repeat("a", 55) }, "name", MsgNameLength},
		{"missing version", func(f *ClusterForm) { f.OpenshiftVersion = "" }, "openshift_version", MsgRequired},
		{"missing pull secret", func(f *ClusterForm) { f.PullSecret = "" }, "pull_secret", MsgPullSecretRequired},
		{"malformed pull secret", func(f *ClusterForm) { f.PullSecret = "{auths" }, "pull_secret", MsgPullSecretFormat},
		{"malformed ssh key", func(f *ClusterForm) { f.SSHPublicKey = "ssh-rsa nope" }, "ssh_public_key", MsgSSHKeyFormat},
		{"unknown ha mode", func(f *ClusterForm) { f.HighAvailabilityMode = "Half" }, "high_availability_mode", MsgHAMode},
	}

	for _, tt := range tests {
		t.Run("should reject "+tt.name, func(t *testing.T) {
			form := validForm()
			tt.modify(&form)

			err := ValidateForm(form)
			require.Error(t, err)
			assert.True(t, IsInvalidInput(err))
			assert.Equal(t, tt.msg, fieldErrors(t, err)[tt.field])
		})
	}

	t.Run("should accept a complete form", func(t *testing.T) {
		form := validForm()
		form.Name = strings.Repeat("a", 54)
		form.SSHPublicKey = key + "\n"
		form.HighAvailabilityMode = models.HighAvailabilityModeNone
		assert.NoError(t, ValidateForm(form))
	})
}

func TestClusterCreatorSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("should create the cluster", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{}, logger.Discard())
		list := alerts.NewList()
		list.Add(alerts.Alert{Title: "stale"})

		api.On("ListClusters", mock.Anything).Return([]models.Cluster{{Name: "beta"}}, nil)
		api.On("CreateCluster", mock.Anything, validForm().Params()).
			Return(&models.Cluster{ID: "c-1", Name: "alpha", Status: models.ClusterStatusInsufficient}, nil)

		sub, err := creator.Submit(ctx, "user-1", validForm(), list)

		require.NoError(t, err)
		assert.Equal(t, CreatorSuccess, sub.State)
		assert.Equal(t, "c-1", sub.Cluster.ID)
		assert.Equal(t, 0, list.Len())
		assert.Equal(t, CreatorEditing, creator.State("user-1"))
		api.AssertExpectations(t)
	})

	t.Run("should reject a taken name without creating", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{}, logger.Discard())

		api.On("ListClusters", mock.Anything).Return([]models.Cluster{{Name: "alpha"}}, nil)

		sub, err := creator.Submit(ctx, "user-1", validForm(), alerts.NewList())

		assert.Equal(t, CreatorEditing, sub.State)
		assert.Equal(t, `Name "alpha" is already taken.`, fieldErrors(t, err)["name"])
		api.AssertNotCalled(t, "CreateCluster", mock.Anything, mock.Anything)
	})

	t.Run("should proceed when the uniqueness check fails", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{}, logger.Discard())

		api.On("ListClusters", mock.Anything).
			Return(nil, errors.NewAPIError("ListClusters", errors.KindServer, 503, errors.ServerFailureReason, nil))
		api.On("CreateCluster", mock.Anything, mock.Anything).Return(&models.Cluster{ID: "c-1"}, nil)

		sub, err := creator.Submit(ctx, "user-1", validForm(), alerts.NewList())

		require.NoError(t, err)
		assert.Equal(t, CreatorSuccess, sub.State)
		api.AssertExpectations(t)
	})

	t.Run("should alert when the installer rejects the cluster", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{}, logger.Discard())
		list := alerts.NewList()

		api.On("ListClusters", mock.Anything).Return([]models.Cluster{}, nil)
		api.On("CreateCluster", mock.Anything, mock.Anything).
			Return(nil, errors.NewAPIError("CreateCluster", errors.KindClient, 400, "Invalid pull secret", nil))

		sub, err := creator.Submit(ctx, "user-1", validForm(), list)

		require.Error(t, err)
		assert.Equal(t, CreatorEditing, sub.State)
		assert.Equal(t, 400, errors.StatusCode(err))
		require.Equal(t, 1, list.Len())
		assert.Equal(t, alerts.Alert{Title: CreateFailedTitle, Message: "Invalid pull secret", Variant: alerts.VariantDanger}, list.Alerts()[0])
	})

	t.Run("should not contact the installer for an invalid form", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{}, logger.Discard())
		form := validForm()
		form.Name = ""

		_, err := creator.Submit(ctx, "user-1", form, alerts.NewList())

		assert.Equal(t, MsgRequired, fieldErrors(t, err)["name"])
		api.AssertNotCalled(t, "ListClusters", mock.Anything)
		api.AssertNotCalled(t, "CreateCluster", mock.Anything, mock.Anything)
	})

	t.Run("should reject a second submit while one is in flight", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{}, logger.Discard())
		started := make(chan struct{})
		release := make(chan struct{})

		api.On("ListClusters", mock.Anything).Return([]models.Cluster{}, nil)
		api.On("CreateCluster", mock.Anything, mock.Anything).
			Run(func(mock.Arguments) {
				close(started)
				<-release
			}).
			Return(&models.Cluster{ID: "c-1"}, nil).Once()

		done := make(chan error, 1)
		go func() {
			_, err := creator.Submit(ctx, "user-1", validForm(), alerts.NewList())
			done <- err
		}()
		<-started

		assert.Equal(t, CreatorSubmitting, creator.State("user-1"))
		sub, err := creator.Submit(ctx, "user-1", validForm(), alerts.NewList())
		assert.True(t, IsInFlight(err))
		assert.Equal(t, CreatorSubmitting, sub.State)
		assert.Equal(t, CreatorEditing, creator.State("user-2"))

		close(release)
		require.NoError(t, <-done)
		assert.Equal(t, CreatorEditing, creator.State("user-1"))
		api.AssertNumberOfCalls(t, "CreateCluster", 1)
	})
}

func TestClusterCreatorDefaults(t *testing.T) {
	ctx := context.Background()
	versions := models.OpenshiftVersions{
		"4.6":  {DisplayName: "4.6.16", SupportLevel: "production"},
		"4.7":  {DisplayName: "4.7.0", SupportLevel: "production"},
		"4.10": {DisplayName: "4.10.3", SupportLevel: "beta"},
	}

	t.Run("should prefer the configured version", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "pull-secret.json")
		require.NoError(t, os.WriteFile(path, []byte(pullSecret+"\n"), 0o600))

		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{OpenshiftVersion: "4.7", PullSecretFile: path}, logger.Discard())
		api.On("ListOpenshiftVersions", mock.Anything).Return(versions, nil)

		defaults, err := creator.Defaults(ctx)

		require.NoError(t, err)
		assert.Equal(t, "4.7", defaults.Form.OpenshiftVersion)
		assert.Equal(t, models.HighAvailabilityModeFull, defaults.Form.HighAvailabilityMode)
		assert.Equal(t, pullSecret, defaults.Form.PullSecret)
		require.Len(t, defaults.Versions, 3)
		assert.Equal(t, []string{"4.10", "4.7", "4.6"},
			[]string{defaults.Versions[0].Value, defaults.Versions[1].Value, defaults.Versions[2].Value})
	})

	t.Run("should fall back to the newest version", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{OpenshiftVersion: "4.9"}, logger.Discard())
		api.On("ListOpenshiftVersions", mock.Anything).Return(versions, nil)

		defaults, err := creator.Defaults(ctx)

		require.NoError(t, err)
		assert.Equal(t, "4.10", defaults.Form.OpenshiftVersion)
		assert.Empty(t, defaults.Form.PullSecret)
	})

	t.Run("should leave the version empty when none are offered", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{OpenshiftVersion: "4.7"}, logger.Discard())
		api.On("ListOpenshiftVersions", mock.Anything).Return(models.OpenshiftVersions{}, nil)

		defaults, err := creator.Defaults(ctx)

		require.NoError(t, err)
		assert.Equal(t, "", defaults.Form.OpenshiftVersion)
		assert.Empty(t, defaults.Versions)
	})

	t.Run("should fail when versions cannot be fetched", func(t *testing.T) {
		api := new(MockInstaller)
		creator := NewClusterCreator(api, config.ClusterDefaultsConfig{}, logger.Discard())
		api.On("ListOpenshiftVersions", mock.Anything).
			Return(nil, errors.NewAPIError("ListOpenshiftVersions", errors.KindNetwork, 0, "Failed to reach the installer service.", nil))

		_, err := creator.Defaults(ctx)

		assert.Equal(t, errors.KindNetwork, errors.KindOf(err))
	})
}

func TestCompareVersions(t *testing.T) {
	assert.Equal(t, 0, compareVersions("4.7", "4.7"))
	assert.Equal(t, 1, compareVersions("4.10", "4.9"))
	assert.Equal(t, -1, compareVersions("4", "4.7"))
	assert.Equal(t, -1, compareVersions("4.7", "4.8-rc"))
}
