// Package clusters derives cluster-level display state: aggregate hardware,
// status presentation and the property list of the detail page.
package clusters

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// Inventory paths summed by VCPUCount and MemoryAmount
const (
	CPUCountPath      = "cpu.count"
	PhysicalBytesPath = "memory.physical_bytes"
)

// Topology says which hosts count towards cluster resources
type Topology int

const (
	// TopologyNone counts no host: the cluster is not yet a valid shape
	TopologyNone Topology = iota
	// TopologyMastersOnly counts masters of a compact cluster (3+ masters, no workers)
	TopologyMastersOnly
	// TopologyWorkers counts workers once there are 3+ masters and 2+ workers
	TopologyWorkers
)

func (t Topology) String() string {
	switch t {
	case TopologyMastersOnly:
		return "masters-only"
	case TopologyWorkers:
		return "workers"
	default:
		return "none"
	}
}

// TopologyOf classifies a host list
func TopologyOf(list []models.Host) Topology {
	masters := hosts.MasterCount(list)
	workers := hosts.WorkerCount(list)
	switch {
	case masters >= 3 && workers == 0:
		return TopologyMastersOnly
	case masters >= 3 && workers >= 2:
		return TopologyWorkers
	default:
		return TopologyNone
	}
}

func (t Topology) counts(role models.HostRole) bool {
	return (t == TopologyMastersOnly && role == models.HostRoleMaster) ||
		(t == TopologyWorkers && role == models.HostRoleWorker)
}

// Resources sums the numeric inventory field at a dotted path over the hosts
// that count for the cluster topology. Deleted hosts contribute 0, as do hosts
// with no inventory, an unparseable one or a missing field.
func Resources(cluster *models.Cluster, path string) int64 {
	topology := TopologyOf(cluster.Hosts)
	if topology == TopologyNone {
		return 0
	}

	var total int64
	for i := range cluster.Hosts {
		host := &cluster.Hosts[i]
		if host.IsDeleted() || !topology.counts(host.Role) {
			continue
		}
		if _, ok := host.Inventory.Value(); !ok {
			continue
		}
		total += lookup(host.Inventory.Raw(), path)
	}
	return total
}

// lookup walks a dotted path through a JSON document
func lookup(raw, path string) int64 {
	var node interface{}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&node); err != nil {
		return 0
	}
	for _, key := range strings.Split(path, ".") {
		obj, ok := node.(map[string]interface{})
		if !ok {
			return 0
		}
		node = obj[key]
	}
	num, ok := node.(json.Number)
	if !ok {
		return 0
	}
	if n, err := num.Int64(); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(num.String(), 64); err == nil {
		return int64(f)
	}
	return 0
}

// VCPUCount is the number of CPU cores available to workloads
func VCPUCount(cluster *models.Cluster) int64 {
	return Resources(cluster, CPUCountPath)
}

// MemoryAmount is the physical memory available to workloads, in bytes
func MemoryAmount(cluster *models.Cluster) int64 {
	return Resources(cluster, PhysicalBytesPath)
}
