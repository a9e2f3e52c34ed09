package stats

import (
	"testing"
	"time"
)

func float64Ptr(v float64) *float64 { return &v }
func uint64Ptr(v uint64) *uint64    { return &v }
func int64Ptr(v int64) *int64       { return &v }

func fullSnapshot(at time.Time) Snapshot {
	return Snapshot{
		General: GeneralStats{
			UptimeSeconds: uint64Ptr(3600),
			BootTimestamp: int64Ptr(1700000000),
			LoadAverages:  &LoadAverages{OneMinute: 1.5, FiveMinutes: 1.0, FifteenMinutes: 0.5},
		},
		CPU: CPUStats{
			PerLogicalCPULoadPercent: []float64{10, 20},
			AggregateLoadPercent:     float64Ptr(15),
			TempCelsius:              float64Ptr(45),
		},
		Memory: &MemoryStats{UsedMB: 2048, TotalMB: 8192},
		Filesystems: []MountStats{
			{FSType: "ext4", MountedFrom: "/dev/sda1", MountedOn: "/", UsedMB: 100_000, TotalMB: 500_000},
		},
		Network: NetworkStats{
			Interfaces: []InterfaceStats{{Name: "eth0", SentMB: 10, ReceivedMB: 20}},
			Sockets:    &SocketStats{TCPInUse: 10, TCPOrphaned: 1, UDPInUse: 4, TCP6InUse: 2, UDP6InUse: 1},
		},
		CollectionTime: at,
	}
}

func TestConsolidateEmptyBatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic for empty batch")
		}
	}()
	Consolidate(nil)
}

func TestConsolidateUniformBatchKeepsValues(t *testing.T) {
	now := time.Now()
	batch := []Snapshot{fullSnapshot(now), fullSnapshot(now), fullSnapshot(now)}

	got := Consolidate(batch)

	loads := got.General.LoadAverages
	if loads == nil || loads.OneMinute != 1.5 || loads.FiveMinutes != 1.0 || loads.FifteenMinutes != 0.5 {
		t.Errorf("load averages = %+v, want the uniform input values", loads)
	}
	if *got.CPU.AggregateLoadPercent != 15 {
		t.Errorf("aggregate load = %v, want 15", *got.CPU.AggregateLoadPercent)
	}
	if *got.CPU.TempCelsius != 45 {
		t.Errorf("temperature = %v, want 45", *got.CPU.TempCelsius)
	}
	if got.CPU.PerLogicalCPULoadPercent[0] != 10 || got.CPU.PerLogicalCPULoadPercent[1] != 20 {
		t.Errorf("per-core loads = %v, want [10 20]", got.CPU.PerLogicalCPULoadPercent)
	}
	if got.Memory.UsedMB != 2048 || got.Memory.TotalMB != 8192 {
		t.Errorf("memory = %+v, want the uniform input values", got.Memory)
	}
	if got.Network.Sockets.TCPInUse != 10 {
		t.Errorf("tcp in use = %d, want 10", got.Network.Sockets.TCPInUse)
	}
}

func TestConsolidateMemoryAveragesUsedAndMaxesTotal(t *testing.T) {
	batch := []Snapshot{
		{Memory: &MemoryStats{UsedMB: 10, TotalMB: 100}},
		{Memory: &MemoryStats{UsedMB: 20, TotalMB: 50}},
	}

	got := Consolidate(batch)

	if got.Memory.UsedMB != 15 {
		t.Errorf("used = %d, want average 15", got.Memory.UsedMB)
	}
	if got.Memory.TotalMB != 100 {
		t.Errorf("total = %d, want maximum 100, not an average", got.Memory.TotalMB)
	}
}

func TestConsolidateRoundsSocketAverages(t *testing.T) {
	batch := []Snapshot{
		{Network: NetworkStats{Sockets: &SocketStats{TCPInUse: 1}}},
		{Network: NetworkStats{Sockets: &SocketStats{TCPInUse: 2}}},
	}

	got := Consolidate(batch)

	if got.Network.Sockets.TCPInUse != 2 {
		t.Errorf("tcp in use = %d, want round(1.5) = 2", got.Network.Sockets.TCPInUse)
	}
}

func TestConsolidateTakesPointInTimeFieldsFromLastEntry(t *testing.T) {
	first := fullSnapshot(time.Unix(100, 0))
	last := fullSnapshot(time.Unix(200, 0))
	last.General.UptimeSeconds = uint64Ptr(7200)
	last.General.BootTimestamp = int64Ptr(1700000100)
	last.Filesystems = []MountStats{{MountedOn: "/data", UsedMB: 1, TotalMB: 2}}
	last.Network.Interfaces = []InterfaceStats{{Name: "wlan0"}}

	got := Consolidate([]Snapshot{first, last})

	if *got.General.UptimeSeconds != 7200 {
		t.Errorf("uptime = %d, want the last entry's 7200", *got.General.UptimeSeconds)
	}
	if *got.General.BootTimestamp != 1700000100 {
		t.Errorf("boot timestamp = %d, want the last entry's", *got.General.BootTimestamp)
	}
	if !got.CollectionTime.Equal(time.Unix(200, 0)) {
		t.Errorf("collection time = %v, want the last entry's", got.CollectionTime)
	}
	if len(got.Filesystems) != 1 || got.Filesystems[0].MountedOn != "/data" {
		t.Errorf("filesystems = %+v, want the last entry's list", got.Filesystems)
	}
	if len(got.Network.Interfaces) != 1 || got.Network.Interfaces[0].Name != "wlan0" {
		t.Errorf("interfaces = %+v, want the last entry's list", got.Network.Interfaces)
	}
}

func TestConsolidateRaggedCoreWidthsPadWithZero(t *testing.T) {
	batch := []Snapshot{
		{CPU: CPUStats{PerLogicalCPULoadPercent: []float64{30}}},
		{CPU: CPUStats{PerLogicalCPULoadPercent: []float64{10, 50}}},
	}

	got := Consolidate(batch)

	cores := got.CPU.PerLogicalCPULoadPercent
	if len(cores) != 2 {
		t.Fatalf("per-core loads = %v, want 2 cores", cores)
	}
	if cores[0] != 20 {
		t.Errorf("core 0 = %v, want (30+10)/2 = 20", cores[0])
	}
	if cores[1] != 25 {
		t.Errorf("core 1 = %v, want (0+50)/2 = 25 with the missing width padded as zero", cores[1])
	}
}

// TestConsolidateAbsentMetricSkew pins the compatibility behavior for
// metrics missing from part of a batch: an absence before a present
// value averages in as zero, while a trailing absence leaves the
// running mean untouched.
func TestConsolidateAbsentMetricSkew(t *testing.T) {
	absent := Snapshot{}
	present := Snapshot{CPU: CPUStats{AggregateLoadPercent: float64Ptr(50)}}

	got := Consolidate([]Snapshot{absent, present})
	if *got.CPU.AggregateLoadPercent != 25 {
		t.Errorf("absent-then-present aggregate = %v, want 50/2 = 25", *got.CPU.AggregateLoadPercent)
	}

	got = Consolidate([]Snapshot{present, absent})
	if *got.CPU.AggregateLoadPercent != 50 {
		t.Errorf("present-then-absent aggregate = %v, want 50", *got.CPU.AggregateLoadPercent)
	}
}

func TestConsolidateAllAbsentYieldsZeroedAverages(t *testing.T) {
	got := Consolidate([]Snapshot{{}, {}})

	if got.General.LoadAverages == nil || got.General.LoadAverages.OneMinute != 0 {
		t.Errorf("load averages = %+v, want zeroed but present", got.General.LoadAverages)
	}
	if got.Memory == nil || got.Memory.UsedMB != 0 || got.Memory.TotalMB != 0 {
		t.Errorf("memory = %+v, want zeroed but present", got.Memory)
	}
	if got.Network.Sockets == nil {
		t.Error("sockets = nil, want zeroed but present")
	}
	if got.CPU.PerLogicalCPULoadPercent == nil {
		t.Error("per-core loads = nil, want empty but present")
	}
}

func TestUpdatedAverageMatchesArithmeticMean(t *testing.T) {
	values := []float64{3, 7, 9, 21}
	var mean float64
	for i, v := range values {
		mean = updatedAverage(mean, v, i+1)
	}
	if mean != 10 {
		t.Errorf("running mean = %v, want 10", mean)
	}
}
