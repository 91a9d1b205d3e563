package clusters

import (
	"strconv"

	"github.com/dsyorkd/assisted-console/internal/models"
)

// Icon is the status glyph a front end draws next to a cluster status
type Icon string

const (
	IconNone       Icon = "none"
	IconBan        Icon = "ban"
	IconFile       Icon = "file"
	IconError      Icon = "error"
	IconOK         Icon = "ok"
	IconWarning    Icon = "warning"
	IconInProgress Icon = "in-progress"
)

var statusLabels = map[models.ClusterStatus]string{
	models.ClusterStatusPendingForInput:             "Draft",
	models.ClusterStatusInsufficient:                "Draft",
	models.ClusterStatusReady:                       "Ready",
	models.ClusterStatusPreparingForInstallation:    "Preparing for installation",
	models.ClusterStatusInstalling:                  "Installing",
	models.ClusterStatusInstallingPendingUserAction: "Installing (pending action)",
	models.ClusterStatusFinalizing:                  "Finalizing",
	models.ClusterStatusInstalled:                   "Installed",
	models.ClusterStatusError:                       "Error",
	models.ClusterStatusCancelled:                   "Cancelled",
	models.ClusterStatusAddingHosts:                 "Adding hosts",
}

// StatusLabel returns the display text of a status, or the raw status when unknown
func StatusLabel(status models.ClusterStatus) string {
	if label, ok := statusLabels[status]; ok {
		return label
	}
	return string(status)
}

// StatusIcon returns the icon of a status
func StatusIcon(status models.ClusterStatus) Icon {
	switch status {
	case models.ClusterStatusCancelled:
		return IconBan
	case models.ClusterStatusInsufficient, models.ClusterStatusPendingForInput:
		return IconFile
	case models.ClusterStatusError:
		return IconError
	case models.ClusterStatusReady, models.ClusterStatusInstalled:
		return IconOK
	case models.ClusterStatusInstallingPendingUserAction:
		return IconWarning
	case models.ClusterStatusPreparingForInstallation, models.ClusterStatusInstalling,
		models.ClusterStatusFinalizing, models.ClusterStatusAddingHosts:
		return IconInProgress
	default:
		return IconNone
	}
}

// Property is one titled value of the cluster detail list
type Property struct {
	Title string `json:"title" yaml:"title"`
	Value string `json:"value" yaml:"value"`
}

// Properties returns the cluster detail list in display order
func Properties(cluster *models.Cluster) []Property {
	prefix := ""
	if cluster.ClusterNetworkHostPrefix != 0 {
		prefix = strconv.FormatInt(cluster.ClusterNetworkHostPrefix, 10)
	}
	return []Property{
		{Title: "OpenShift version", Value: cluster.OpenshiftVersion},
		{Title: "Base DNS domain", Value: cluster.BaseDNSDomain},
		{Title: "API virtual IP", Value: cluster.APIVip},
		{Title: "Ingress virtual IP", Value: cluster.IngressVip},
		{Title: "UUID", Value: cluster.ID},
		{Title: "Cluster network CIDR", Value: cluster.ClusterNetworkCIDR},
		{Title: "Cluster network host prefix", Value: prefix},
		{Title: "Service network CIDR", Value: cluster.ServiceNetworkCIDR},
	}
}
