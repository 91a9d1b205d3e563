package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/services"
	"github.com/dsyorkd/assisted-console/internal/views"
)

// cliSubmitter identifies forms submitted from this process
const cliSubmitter = "cli"

func (a *app) clustersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "clusters",
		Aliases: []string{"cluster"},
		Short:   "Cluster management commands",
	}
	cmd.AddCommand(
		a.clustersListCmd(),
		a.clustersGetCmd(),
		a.clustersCreateCmd(),
		a.clustersUpdateCmd(),
		a.clustersDeleteCmd(),
	)
	return cmd
}

func (a *app) clustersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List clusters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			clusters, err := a.api.ListClusters(cmd.Context())
			if err != nil {
				return err
			}
			rows := views.ClusterRows(clusters)
			return a.render(rows, func(w io.Writer) {
				row(w, "NAME", "ID", "VERSION", "STATUS", "HOSTS", "MASTERS", "WORKERS", "CREATED")
				for _, r := range rows {
					row(w, r.Name, r.ID, orDash(r.OpenshiftVersion), r.StatusLabel, r.Hosts, r.Masters, r.Workers, formatTime(r.CreatedAt))
				}
			})
		},
	}
}

func (a *app) clustersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <cluster-id>",
		Short: "Show a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := a.api.GetCluster(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderDetail(views.Detail(cluster))
		},
	}
}

func (a *app) renderDetail(detail views.ClusterDetail) error {
	return a.render(detail, func(w io.Writer) {
		row(w, "Name:", detail.Name)
		row(w, "ID:", detail.ID)
		row(w, "Status:", detail.StatusLabel)
		if detail.StatusInfo != "" {
			row(w, "Status info:", detail.StatusInfo)
		}
		for _, p := range detail.Properties {
			row(w, p.Title+":", orDash(p.Value))
		}
		row(w, "Hosts:", fmt.Sprintf("%d masters, %d workers", detail.Masters, detail.Workers))
		row(w, "Resources:", fmt.Sprintf("%s, %d vCPU, %s", detail.Resources.Topology, detail.Resources.VCPU, formatBytes(detail.Resources.MemoryBytes)))
		s := detail.ValidationSummary
		row(w, "Validations:", fmt.Sprintf("%d passed, %d pending, %d failed", s.Passed, s.Pending, s.Failed))
		if detail.Progress != nil && detail.Progress.ProgressInfo != "" {
			row(w, "Progress:", detail.Progress.ProgressInfo)
		}
	})
}

// readFileFlag returns the trimmed content of the file a flag names
func readFileFlag(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to read %s", path)
	}
	return strings.TrimSpace(string(data)), nil
}

func (a *app) clustersCreateCmd() *cobra.Command {
	var (
		form           services.ClusterForm
		pullSecretFile string
		sshKeyFile     string
		singleNode     bool
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new cluster",
		Long: `Create a new cluster. The OpenShift version and pull secret default to the
values of the cluster_defaults config section.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			creator := services.NewClusterCreator(a.api, a.cfg.ClusterDefaults, a.log)

			if form.OpenshiftVersion == "" || pullSecretFile == "" {
				defaults, err := creator.Defaults(cmd.Context())
				if err != nil {
					return err
				}
				if form.OpenshiftVersion == "" {
					form.OpenshiftVersion = defaults.Form.OpenshiftVersion
				}
				form.PullSecret = defaults.Form.PullSecret
			}
			if pullSecretFile != "" {
				secret, err := readFileFlag(pullSecretFile)
				if err != nil {
					return err
				}
				form.PullSecret = secret
			}
			if sshKeyFile != "" {
				key, err := readFileFlag(sshKeyFile)
				if err != nil {
					return err
				}
				form.SSHPublicKey = key
			}
			form.HighAvailabilityMode = models.HighAvailabilityModeFull
			if singleNode {
				form.HighAvailabilityMode = models.HighAvailabilityModeNone
			}

			submission, err := creator.Submit(cmd.Context(), cliSubmitter, form, a.dispatch)
			if err != nil {
				return err
			}
			return a.renderDetail(views.Detail(submission.Cluster))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&form.Name, "name", "", "cluster name")
	flags.StringVar(&form.OpenshiftVersion, "openshift-version", "", "OpenShift version")
	flags.StringVar(&form.BaseDNSDomain, "base-dns-domain", "", "base DNS domain")
	flags.StringVar(&pullSecretFile, "pull-secret-file", "", "file holding the pull secret")
	flags.StringVar(&sshKeyFile, "ssh-key-file", "", "file holding the SSH public key for the hosts")
	flags.BoolVar(&singleNode, "single-node", false, "install a single node cluster")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func (a *app) clustersUpdateCmd() *cobra.Command {
	var (
		name, baseDNSDomain, apiVip, ingressVip string
		httpProxy, httpsProxy, noProxy          string
		pullSecretFile, sshKeyFile              string
	)

	cmd := &cobra.Command{
		Use:   "update <cluster-id>",
		Short: "Update cluster settings",
		Long:  `Update the settings given on the command line and leave the others unchanged`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			var params models.ClusterUpdateParams
			set := func(flag string, value string, field **string) {
				if flags.Changed(flag) {
					v := value
					*field = &v
				}
			}
			set("name", name, &params.Name)
			set("base-dns-domain", baseDNSDomain, &params.BaseDNSDomain)
			set("api-vip", apiVip, &params.APIVip)
			set("ingress-vip", ingressVip, &params.IngressVip)
			set("http-proxy", httpProxy, &params.HTTPProxy)
			set("https-proxy", httpsProxy, &params.HTTPSProxy)
			set("no-proxy", noProxy, &params.NoProxy)
			if pullSecretFile != "" {
				secret, err := readFileFlag(pullSecretFile)
				if err != nil {
					return err
				}
				params.PullSecret = &secret
			}
			if sshKeyFile != "" {
				key, err := readFileFlag(sshKeyFile)
				if err != nil {
					return err
				}
				params.SSHPublicKey = &key
			}

			editor := services.NewClusterEditor(a.api, a.log)
			cluster, err := editor.Update(cmd.Context(), a.dispatch, args[0], params)
			if err != nil {
				return err
			}
			return a.renderDetail(views.Detail(cluster))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&name, "name", "", "cluster name")
	flags.StringVar(&baseDNSDomain, "base-dns-domain", "", "base DNS domain")
	flags.StringVar(&apiVip, "api-vip", "", "API virtual IP")
	flags.StringVar(&ingressVip, "ingress-vip", "", "ingress virtual IP")
	flags.StringVar(&httpProxy, "http-proxy", "", "HTTP proxy URL")
	flags.StringVar(&httpsProxy, "https-proxy", "", "HTTPS proxy URL")
	flags.StringVar(&noProxy, "no-proxy", "", "comma separated hosts that bypass the proxy")
	flags.StringVar(&pullSecretFile, "pull-secret-file", "", "file holding the new pull secret")
	flags.StringVar(&sshKeyFile, "ssh-key-file", "", "file holding the new SSH public key")
	return cmd
}

func (a *app) clustersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <cluster-id>",
		Short: "Delete a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			editor := services.NewClusterEditor(a.api, a.log)
			if err := editor.Delete(cmd.Context(), a.dispatch, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Cluster %s deleted\n", args[0])
			return nil
		},
	}
}
