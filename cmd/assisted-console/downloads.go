package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/services"
)

// save writes a download to path, or to stdout for "-". The download goes
// to a temporary file next to path and replaces path only once complete, so
// a failed download leaves an existing file untouched.
func (a *app) save(path string, download func(w io.Writer) (int64, error)) error {
	if path == "-" {
		_, err := download(a.out)
		return err
	}

	f, err := os.CreateTemp(filepath.Dir(path), ".assisted-console-*")
	if err != nil {
		return errors.Wrapf(err, "failed to create %s", path)
	}
	n, err := download(f)
	if closeErr := f.Close(); err == nil && closeErr != nil {
		err = errors.Wrapf(closeErr, "failed to write %s", path)
	}
	if err == nil {
		if renameErr := os.Rename(f.Name(), path); renameErr != nil {
			err = errors.Wrapf(renameErr, "failed to write %s", path)
		}
	}
	if err != nil {
		_ = os.Remove(f.Name())
		return err
	}

	fmt.Fprintf(a.out, "Saved %s to %s\n", formatBytes(n), path)
	return nil
}

func (a *app) downloads() *services.Downloads {
	return services.NewDownloads(a.api, a.cfg.Downloads.Presigned, a.log)
}

func (a *app) logsCmd() *cobra.Command {
	var hostID, file string

	cmd := &cobra.Command{
		Use:   "logs <cluster-id>",
		Short: "Download installation logs",
		Long:  `Download the installation logs of a cluster, or of one host with --host`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			clusterID := args[0]
			downloads := a.downloads()

			if hostID == "" {
				if file == "" {
					file = fmt.Sprintf("cluster_%s_logs.tar", clusterID)
				}
				return a.save(file, func(w io.Writer) (int64, error) {
					return downloads.ClusterLogs(cmd.Context(), a.dispatch, clusterID, w)
				})
			}

			cluster, err := a.api.GetCluster(cmd.Context(), clusterID)
			if err != nil {
				return err
			}
			host, ok := hosts.ByID(cluster, hostID)
			if !ok {
				return errors.Wrapf(errors.ErrNotFound, "host %s in cluster %s", hostID, clusterID)
			}
			if host.ClusterID == "" {
				host.ClusterID = clusterID
			}
			if file == "" {
				file = fmt.Sprintf("host_%s_logs.tar", hostID)
			}
			return a.save(file, func(w io.Writer) (int64, error) {
				return downloads.HostLogs(cmd.Context(), a.dispatch, host, w)
			})
		},
	}

	cmd.Flags().StringVar(&hostID, "host", "", "download the logs of this host only")
	cmd.Flags().StringVarP(&file, "file", "f", "", `destination file, "-" for stdout`)
	return cmd
}

func (a *app) kubeconfigCmd() *cobra.Command {
	var file string

	cmd := &cobra.Command{
		Use:   "kubeconfig <cluster-id>",
		Short: "Download the admin kubeconfig of an installed cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			downloads := a.downloads()
			return a.save(file, func(w io.Writer) (int64, error) {
				return downloads.Kubeconfig(cmd.Context(), a.dispatch, args[0], w)
			})
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "kubeconfig", `destination file, "-" for stdout`)
	return cmd
}
