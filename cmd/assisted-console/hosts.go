package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/services"
	"github.com/dsyorkd/assisted-console/internal/views"
)

func (a *app) hostsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "hosts",
		Aliases: []string{"host"},
		Short:   "Host management commands",
	}

	cmd.AddCommand(a.hostsListCmd())
	actions := []struct {
		use   string
		short string
		run   func(*services.HostActions) hostAction
	}{
		{"enable", "Include a disabled host in the installation", func(h *services.HostActions) hostAction { return h.Enable }},
		{"disable", "Exclude a host from the installation", func(h *services.HostActions) hostAction { return h.Disable }},
		{"reset", "Return a failed host to discovery", func(h *services.HostActions) hostAction { return h.Reset }},
	}
	for _, action := range actions {
		cmd.AddCommand(a.hostActionCmd(action.use, action.short, action.run))
	}
	cmd.AddCommand(a.hostsDeleteCmd(), a.hostsRoleCmd(), a.hostsRenameCmd())
	return cmd
}

type hostAction func(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID string) (*models.Host, error)

func (a *app) renderHosts(rows []views.HostRow) error {
	return a.render(rows, func(w io.Writer) {
		row(w, "HOSTNAME", "ID", "ROLE", "STATUS", "HARDWARE", "CPU", "MEMORY", "DISKS", "PROGRESS", "ACTIONS")
		for _, r := range rows {
			progress := "-"
			if r.StageNumber > 0 {
				progress = fmt.Sprintf("%d/%d %s", r.StageNumber, r.StageCount, r.Stage)
			}
			actions := make([]string, len(r.Actions))
			for i, action := range r.Actions {
				actions[i] = string(action)
			}
			row(w, orDash(r.Hostname), r.ID, r.RoleLabel, r.Status, r.HardwareType,
				r.CPUCores, formatBytes(r.MemoryBytes), r.Disks, progress, orDash(strings.Join(actions, ",")))
		}
	})
}

func (a *app) hostsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <cluster-id>",
		Short: "List the hosts of a cluster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cluster, err := a.api.GetCluster(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.renderHosts(views.HostRows(cluster))
		},
	}
}

func (a *app) hostActionCmd(use, short string, pick func(*services.HostActions) hostAction) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <cluster-id> <host-id>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			run := pick(services.NewHostActions(a.api, a.log))
			host, err := run(cmd.Context(), a.dispatch, args[0], args[1])
			if err != nil {
				return err
			}
			return a.render(host, func(w io.Writer) {
				row(w, "ID", "STATUS", "STATUS INFO")
				row(w, host.ID, host.Status, orDash(host.StatusInfo))
			})
		},
	}
}

func (a *app) hostsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <cluster-id> <host-id>",
		Short: "Remove a host from its cluster",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := services.NewHostActions(a.api, a.log)
			if err := actions.Delete(cmd.Context(), a.dispatch, args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Host %s deleted\n", args[1])
			return nil
		},
	}
}

func (a *app) hostsRoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "role <cluster-id> <host-id> <auto-assign|master|worker>",
		Short:     "Set the role of a host",
		Args:      cobra.ExactArgs(3),
		ValidArgs: []string{string(models.HostRoleAutoAssign), string(models.HostRoleMaster), string(models.HostRoleWorker)},
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := services.NewHostActions(a.api, a.log)
			cluster, err := actions.SetRole(cmd.Context(), a.dispatch, args[0], args[1], models.HostRole(args[2]))
			if err != nil {
				return err
			}
			return a.renderHosts(views.HostRows(cluster))
		},
	}
}

func (a *app) hostsRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <cluster-id> <host-id> <hostname>",
		Short: "Change the hostname of a host",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			actions := services.NewHostActions(a.api, a.log)
			cluster, err := actions.SetHostname(cmd.Context(), a.dispatch, args[0], args[1], args[2])
			if err != nil {
				return err
			}
			return a.renderHosts(views.HostRows(cluster))
		},
	}
}
