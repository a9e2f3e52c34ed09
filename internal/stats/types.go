// Package stats defines system metric snapshots and how they are
// collected and consolidated.
package stats

import "time"

// Snapshot is one full measurement of every tracked system metric.
// Every field except CollectionTime is optional: a nil pointer or nil
// slice means the metric was unavailable on that sample.
type Snapshot struct {
	General        GeneralStats `json:"general"`
	CPU            CPUStats     `json:"cpu"`
	Memory         *MemoryStats `json:"memory"`
	Filesystems    []MountStats `json:"filesystems"`
	Network        NetworkStats `json:"network"`
	CollectionTime time.Time    `json:"collectionTime"`
}

// GeneralStats holds uptime, boot time and load averages.
type GeneralStats struct {
	UptimeSeconds *uint64       `json:"uptimeSeconds"`
	BootTimestamp *int64        `json:"bootTimestamp"`
	LoadAverages  *LoadAverages `json:"loadAverages"`
}

// LoadAverages holds the 1/5/15-minute system load averages.
type LoadAverages struct {
	OneMinute      float64 `json:"oneMinute"`
	FiveMinutes    float64 `json:"fiveMinutes"`
	FifteenMinutes float64 `json:"fifteenMinutes"`
}

// CPUStats holds processor load and temperature.
type CPUStats struct {
	// PerLogicalCPULoadPercent has one entry per logical core, in core order.
	PerLogicalCPULoadPercent []float64 `json:"perLogicalCpuLoadPercent"`
	AggregateLoadPercent     *float64  `json:"aggregateLoadPercent"`
	TempCelsius              *float64  `json:"tempCelsius"`
}

// MemoryStats holds physical memory usage. Used and total are reported
// together or not at all.
type MemoryStats struct {
	UsedMB  uint64 `json:"usedMb"`
	TotalMB uint64 `json:"totalMb"`
}

// MountStats holds usage for one mounted filesystem.
type MountStats struct {
	FSType      string `json:"fsType"`
	MountedFrom string `json:"mountedFrom"`
	MountedOn   string `json:"mountedOn"`
	UsedMB      uint64 `json:"usedMb"`
	TotalMB     uint64 `json:"totalMb"`
}

// NetworkStats holds per-interface counters and socket usage.
type NetworkStats struct {
	Interfaces []InterfaceStats `json:"interfaces"`
	Sockets    *SocketStats     `json:"sockets"`
}

// InterfaceStats holds cumulative traffic counters for one network interface.
type InterfaceStats struct {
	Name            string   `json:"name"`
	Addresses       []string `json:"addresses"`
	SentMB          uint64   `json:"sentMb"`
	ReceivedMB      uint64   `json:"receivedMb"`
	SentPackets     uint64   `json:"sentPackets"`
	ReceivedPackets uint64   `json:"receivedPackets"`
	SendErrors      uint64   `json:"sendErrors"`
	ReceiveErrors   uint64   `json:"receiveErrors"`
}

// SocketStats holds counts of sockets in use by protocol family.
type SocketStats struct {
	TCPInUse    int `json:"tcpInUse"`
	TCPOrphaned int `json:"tcpOrphaned"`
	UDPInUse    int `json:"udpInUse"`
	TCP6InUse   int `json:"tcp6InUse"`
	UDP6InUse   int `json:"udp6InUse"`
}
