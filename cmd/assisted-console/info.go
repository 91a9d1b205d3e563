package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/dsyorkd/assisted-console/internal/clusters"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/services"
	"github.com/dsyorkd/assisted-console/internal/validations"
)

func (a *app) validationsCmd() *cobra.Command {
	var hostID string

	cmd := &cobra.Command{
		Use:   "validations <cluster-id>",
		Short: "Show pre-installation validations",
		Long:  `Show the validations of a cluster, or of one host with --host, grouped by category`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := a.api.GetCluster(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			info := cluster.Validations()
			if hostID != "" {
				host, ok := hosts.ByID(cluster, hostID)
				if !ok {
					return errors.Wrapf(errors.ErrNotFound, "host %s in cluster %s", hostID, args[0])
				}
				info = host.Validations()
			}

			groups := validations.Groups(info)
			return a.render(groups, func(w io.Writer) {
				row(w, "CATEGORY", "STATE", "VALIDATION", "STATUS", "MESSAGE")
				for _, g := range groups {
					row(w, g.Label, g.State, "", "", "")
					for _, alert := range g.Alerts {
						for _, line := range alert.Lines {
							message := line.Message
							if line.Hint != "" {
								message += " " + line.Hint
							}
							row(w, "", "", line.Label, line.Status, message)
						}
					}
				}
			})
		},
	}

	cmd.Flags().StringVar(&hostID, "host", "", "show the validations of this host")
	return cmd
}

func (a *app) versionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "versions",
		Short: "List the OpenShift versions the installer offers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := a.api.ListOpenshiftVersions(cmd.Context())
			if err != nil {
				return err
			}
			options := services.SortVersions(versions)
			preferred := services.DefaultVersion(options, a.cfg.ClusterDefaults.OpenshiftVersion)
			return a.render(options, func(w io.Writer) {
				row(w, "VERSION", "RELEASE", "SUPPORT", "DEFAULT")
				for _, o := range options {
					def := ""
					if o.Value == preferred {
						def = "*"
					}
					row(w, o.Value, o.Label, o.SupportLevel, def)
				}
			})
		},
	}
}

func (a *app) eventsCmd() *cobra.Command {
	var hostID string

	cmd := &cobra.Command{
		Use:   "events <cluster-id>",
		Short: "Show the event log of a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			events, err := a.api.ListEvents(cmd.Context(), args[0], hostID)
			if err != nil {
				return err
			}
			return a.render(events, func(w io.Writer) {
				row(w, "TIME", "SEVERITY", "MESSAGE")
				for i := range events {
					e := &events[i]
					row(w, formatTime(&e.EventTime), e.Severity, e.Message)
				}
			})
		},
	}

	cmd.Flags().StringVar(&hostID, "host", "", "show the events of this host only")
	return cmd
}

func (a *app) watchCmd() *cobra.Command {
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "watch <cluster-id>",
		Short: "Follow a cluster until its installation settles",
		Long: `Poll a cluster and print every status change until it is installed,
has failed or was cancelled`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			watcher := services.NewWatcher(a.api, interval, a.log)
			last, err := watcher.Watch(cmd.Context(), args[0], func(c *models.Cluster) {
				a.printChange(c)
			})
			if err != nil {
				if cmd.Context().Err() != nil {
					return nil
				}
				return err
			}
			if last.Status == models.ClusterStatusError || last.Status == models.ClusterStatusCancelled {
				return fmt.Errorf("cluster %s ended in status %s", last.Name, clusters.StatusLabel(last.Status))
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", services.DefaultWatchInterval, "poll interval")
	return cmd
}

// changeLine is one status change of a watched cluster
type changeLine struct {
	Time       time.Time            `json:"time"`
	Status     models.ClusterStatus `json:"status"`
	StatusInfo string               `json:"status_info"`
	Progress   string               `json:"progress,omitempty"`
}

// printChange writes one line per change; json and yaml emit one document each
func (a *app) printChange(c *models.Cluster) {
	line := changeLine{Time: time.Now(), Status: c.Status, StatusInfo: c.StatusInfo}
	if c.Progress != nil {
		line.Progress = c.Progress.ProgressInfo
	}

	var err error
	switch a.output {
	case outputTable:
		_, err = fmt.Fprintf(a.out, "%s  %-22s %s\n", line.Time.Format("15:04:05"), clusters.StatusLabel(c.Status), c.StatusInfo)
	case outputYAML:
		if _, err = io.WriteString(a.out, "---\n"); err == nil {
			err = writeYAML(a.out, line)
		}
	default:
		err = a.render(line, nil)
	}
	if err != nil {
		a.log.WithError(err).Warn("Failed to print cluster change")
	}
}
