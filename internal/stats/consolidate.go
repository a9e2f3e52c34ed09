package stats

import "math"

// Consolidate reduces an ordered batch of snapshots into a single
// averaged snapshot using a single forward pass of incremental running
// means (mean += (value - mean) / n), which stays numerically stable
// without a second pass or large intermediate sums.
//
// Averaged: load averages, per-core and aggregate CPU load, temperature,
// memory used, socket counts (rounded to the nearest integer at the
// end). Memory total takes the running maximum instead, since capacity
// is not a quantity to smooth. Point-in-time fields (uptime, boot
// timestamp, collection time, filesystem list, interface list) are taken
// verbatim from the last entry in the batch.
//
// A snapshot missing a metric skips that entry's update, but later
// updates still use the batch position as their denominator, so earlier
// absences weigh in as zeros. This skews averages downward under flaky
// sampling but matches the output of every previously persisted log.
//
// The batch must not be empty; an empty batch is a contract violation
// and panics.
func Consolidate(batch []Snapshot) Snapshot {
	if len(batch) == 0 {
		panic("stats: Consolidate called with an empty batch")
	}

	var (
		oneMinute      float64
		fiveMinutes    float64
		fifteenMinutes float64

		perCoreLoads []float64
		aggregate    float64
		temp         float64

		memoryUsed  float64
		memoryTotal uint64

		tcpInUse    float64
		tcpOrphaned float64
		udpInUse    float64
		tcp6InUse   float64
		udp6InUse   float64
	)

	for i, snapshot := range batch {
		n := i + 1

		if loads := snapshot.General.LoadAverages; loads != nil {
			oneMinute = updatedAverage(oneMinute, loads.OneMinute, n)
			fiveMinutes = updatedAverage(fiveMinutes, loads.FiveMinutes, n)
			fifteenMinutes = updatedAverage(fifteenMinutes, loads.FifteenMinutes, n)
		}

		if snapshot.CPU.PerLogicalCPULoadPercent != nil {
			perCoreLoads = updatedAverages(perCoreLoads, snapshot.CPU.PerLogicalCPULoadPercent, n)
		}
		if snapshot.CPU.AggregateLoadPercent != nil {
			aggregate = updatedAverage(aggregate, *snapshot.CPU.AggregateLoadPercent, n)
		}
		if snapshot.CPU.TempCelsius != nil {
			temp = updatedAverage(temp, *snapshot.CPU.TempCelsius, n)
		}

		if memory := snapshot.Memory; memory != nil {
			memoryUsed = updatedAverage(memoryUsed, float64(memory.UsedMB), n)
			if memory.TotalMB > memoryTotal {
				memoryTotal = memory.TotalMB
			}
		}

		if sockets := snapshot.Network.Sockets; sockets != nil {
			tcpInUse = updatedAverage(tcpInUse, float64(sockets.TCPInUse), n)
			tcpOrphaned = updatedAverage(tcpOrphaned, float64(sockets.TCPOrphaned), n)
			udpInUse = updatedAverage(udpInUse, float64(sockets.UDPInUse), n)
			tcp6InUse = updatedAverage(tcp6InUse, float64(sockets.TCP6InUse), n)
			udp6InUse = updatedAverage(udp6InUse, float64(sockets.UDP6InUse), n)
		}
	}

	last := batch[len(batch)-1]
	if perCoreLoads == nil {
		perCoreLoads = []float64{}
	}

	return Snapshot{
		General: GeneralStats{
			UptimeSeconds: last.General.UptimeSeconds,
			BootTimestamp: last.General.BootTimestamp,
			LoadAverages: &LoadAverages{
				OneMinute:      oneMinute,
				FiveMinutes:    fiveMinutes,
				FifteenMinutes: fifteenMinutes,
			},
		},
		CPU: CPUStats{
			PerLogicalCPULoadPercent: perCoreLoads,
			AggregateLoadPercent:     &aggregate,
			TempCelsius:              &temp,
		},
		Memory: &MemoryStats{
			UsedMB:  uint64(math.Round(memoryUsed)),
			TotalMB: memoryTotal,
		},
		Filesystems: last.Filesystems,
		Network: NetworkStats{
			Interfaces: last.Network.Interfaces,
			Sockets: &SocketStats{
				TCPInUse:    int(math.Round(tcpInUse)),
				TCPOrphaned: int(math.Round(tcpOrphaned)),
				UDPInUse:    int(math.Round(udpInUse)),
				TCP6InUse:   int(math.Round(tcp6InUse)),
				UDP6InUse:   int(math.Round(udp6InUse)),
			},
		},
		CollectionTime: last.CollectionTime,
	}
}

// updatedAverage folds a new value into a running mean over n values.
func updatedAverage(mean, value float64, n int) float64 {
	return mean + (value-mean)/float64(n)
}

// updatedAverages folds a set of new values into element-wise running
// means. If the new set is wider than the accumulated one, the
// accumulated means are zero-padded to match before updating, so a core
// that was missing from earlier samples averages as if it reported zero.
func updatedAverages(means, values []float64, n int) []float64 {
	for len(means) < len(values) {
		means = append(means, 0)
	}
	for i, value := range values {
		means[i] = updatedAverage(means[i], value, n)
	}
	return means
}
