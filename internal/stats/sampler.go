package stats

import (
	"log/slog"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/net"
)

const bytesPerMB = 1_000_000

// Sampler produces one Snapshot per call. Sample blocks for the provided
// duration while measuring CPU load and never fails: metrics that cannot
// be read are left absent on the returned Snapshot.
type Sampler interface {
	Sample(cpuSampleDuration time.Duration) Snapshot
}

// System samples metrics from the local machine.
type System struct{}

// Sample collects all metrics. It blocks for cpuSampleDuration while the
// CPU load delta is measured.
func (System) Sample(cpuSampleDuration time.Duration) Snapshot {
	return Snapshot{
		General:        sampleGeneral(),
		CPU:            sampleCPU(cpuSampleDuration),
		Memory:         SampleMemory(),
		Filesystems:    SampleFilesystems(),
		Network:        SampleNetwork(),
		CollectionTime: time.Now(),
	}
}

func sampleGeneral() GeneralStats {
	var general GeneralStats

	if uptime, err := host.Uptime(); err != nil {
		logSampleError("reading uptime", err)
	} else {
		general.UptimeSeconds = &uptime
	}

	if bootTime, err := host.BootTime(); err != nil {
		logSampleError("reading boot time", err)
	} else {
		ts := int64(bootTime)
		general.BootTimestamp = &ts
	}

	if avg, err := load.Avg(); err != nil {
		logSampleError("reading load averages", err)
	} else {
		general.LoadAverages = &LoadAverages{
			OneMinute:      avg.Load1,
			FiveMinutes:    avg.Load5,
			FifteenMinutes: avg.Load15,
		}
	}

	return general
}

func sampleCPU(sampleDuration time.Duration) CPUStats {
	var stats CPUStats

	perCoreBefore, perCoreErr := cpu.Times(true)
	totalBefore, totalErr := cpu.Times(false)

	time.Sleep(sampleDuration)

	if perCoreErr == nil {
		perCoreAfter, err := cpu.Times(true)
		if err == nil && len(perCoreAfter) == len(perCoreBefore) {
			loads := make([]float64, len(perCoreAfter))
			for i := range perCoreAfter {
				loads[i] = busyPercent(perCoreBefore[i], perCoreAfter[i])
			}
			stats.PerLogicalCPULoadPercent = loads
		} else if err != nil {
			perCoreErr = err
		}
	}
	if perCoreErr != nil {
		logSampleError("reading per-core cpu load", perCoreErr)
	}

	if totalErr == nil {
		totalAfter, err := cpu.Times(false)
		if err == nil && len(totalAfter) == 1 && len(totalBefore) == 1 {
			aggregate := busyPercent(totalBefore[0], totalAfter[0])
			stats.AggregateLoadPercent = &aggregate
		} else if err != nil {
			totalErr = err
		}
	}
	if totalErr != nil {
		logSampleError("reading aggregate cpu load", totalErr)
	}

	if temp, ok := sampleCPUTemperature(); ok {
		stats.TempCelsius = &temp
	}

	return stats
}

// busyPercent computes the percentage of non-idle time between two
// readings of the same CPU counter set.
func busyPercent(before, after cpu.TimesStat) float64 {
	totalDelta := after.Total() - before.Total()
	if totalDelta <= 0 {
		return 0
	}
	idleDelta := (after.Idle + after.Iowait) - (before.Idle + before.Iowait)
	pct := (1 - idleDelta/totalDelta) * 100
	if pct < 0 {
		return 0
	}
	if pct > 100 {
		return 100
	}
	return pct
}

// cpuSensorPrefixes identifies which temperature sensors belong to the
// processor; everything else (NVMe, wifi, batteries) is ignored.
var cpuSensorPrefixes = []string{"coretemp", "k10temp", "zenpower", "cpu_thermal", "cpu-thermal", "acpitz"}

func sampleCPUTemperature() (float64, bool) {
	sensors, err := host.SensorsTemperatures()
	if err != nil {
		logSampleError("reading cpu temperature", err)
		return 0, false
	}
	for _, sensor := range sensors {
		for _, prefix := range cpuSensorPrefixes {
			if strings.HasPrefix(sensor.SensorKey, prefix) && sensor.Temperature > 0 {
				return sensor.Temperature, true
			}
		}
	}
	return 0, false
}

// SampleMemory reads current memory usage, or nil if unavailable.
func SampleMemory() *MemoryStats {
	vm, err := mem.VirtualMemory()
	if err != nil {
		logSampleError("reading memory usage", err)
		return nil
	}
	return &MemoryStats{
		UsedMB:  vm.Used / bytesPerMB,
		TotalMB: vm.Total / bytesPerMB,
	}
}

// SampleFilesystems reads usage for every mounted filesystem with
// non-zero capacity, or nil if the mount table is unavailable.
func SampleFilesystems() []MountStats {
	partitions, err := disk.Partitions(false)
	if err != nil {
		logSampleError("reading mounts", err)
		return nil
	}

	mounts := make([]MountStats, 0, len(partitions))
	for _, partition := range partitions {
		usage, err := disk.Usage(partition.Mountpoint)
		if err != nil {
			logSampleError("reading mount usage for "+partition.Mountpoint, err)
			continue
		}
		// Pseudo-filesystems report zero capacity and carry no signal.
		if usage.Total == 0 {
			continue
		}
		mounts = append(mounts, MountStats{
			FSType:      partition.Fstype,
			MountedFrom: partition.Device,
			MountedOn:   partition.Mountpoint,
			UsedMB:      usage.Used / bytesPerMB,
			TotalMB:     usage.Total / bytesPerMB,
		})
	}
	return mounts
}

// SampleNetwork reads interface counters and socket usage.
func SampleNetwork() NetworkStats {
	return NetworkStats{
		Interfaces: sampleInterfaces(),
		Sockets:    sampleSockets(),
	}
}

func sampleInterfaces() []InterfaceStats {
	counters, err := net.IOCounters(true)
	if err != nil {
		logSampleError("reading interface counters", err)
		return nil
	}

	addressesByName := make(map[string][]string)
	if interfaces, err := net.Interfaces(); err != nil {
		logSampleError("reading interface addresses", err)
	} else {
		for _, iface := range interfaces {
			addresses := make([]string, 0, len(iface.Addrs))
			for _, addr := range iface.Addrs {
				addresses = append(addresses, strings.Split(addr.Addr, "/")[0])
			}
			addressesByName[iface.Name] = addresses
		}
	}

	stats := make([]InterfaceStats, 0, len(counters))
	for _, counter := range counters {
		stats = append(stats, InterfaceStats{
			Name:            counter.Name,
			Addresses:       addressesByName[counter.Name],
			SentMB:          counter.BytesSent / bytesPerMB,
			ReceivedMB:      counter.BytesRecv / bytesPerMB,
			SentPackets:     counter.PacketsSent,
			ReceivedPackets: counter.PacketsRecv,
			SendErrors:      counter.Errout,
			ReceiveErrors:   counter.Errin,
		})
	}
	return stats
}

// logSampleError records a failed metric read. Metrics the platform
// simply does not expose are logged at debug so they do not flood the
// log every tick; real failures are logged as errors.
func logSampleError(msg string, err error) {
	if strings.Contains(err.Error(), "not implemented") || strings.Contains(err.Error(), "not supported") {
		slog.Debug(msg, "error", err)
	} else {
		slog.Error(msg, "error", err)
	}
}
