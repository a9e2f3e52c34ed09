package stats

import (
	"os"
	"runtime"
	"strconv"
	"strings"
)

// sampleSockets reads socket usage from /proc/net/sockstat and
// /proc/net/sockstat6. gopsutil has no call that exposes orphaned TCP
// sockets or the kernel's in-use totals, so the files are parsed
// directly. Returns nil on platforms without procfs.
func sampleSockets() *SocketStats {
	if runtime.GOOS != "linux" {
		return nil
	}

	v4, err := os.ReadFile("/proc/net/sockstat")
	if err != nil {
		logSampleError("reading socket stats", err)
		return nil
	}

	var stats SocketStats
	parseSockstat(string(v4), map[string]*int{
		"TCP:inuse":  &stats.TCPInUse,
		"TCP:orphan": &stats.TCPOrphaned,
		"UDP:inuse":  &stats.UDPInUse,
	})

	// sockstat6 is missing on kernels built without IPv6; the v4 counts
	// are still worth reporting.
	if v6, err := os.ReadFile("/proc/net/sockstat6"); err == nil {
		parseSockstat(string(v6), map[string]*int{
			"TCP6:inuse": &stats.TCP6InUse,
			"UDP6:inuse": &stats.UDP6InUse,
		})
	}

	return &stats
}

// parseSockstat scans lines of the form "TCP: inuse 25 orphan 0 tw 2"
// and stores the counters named by proto:field keys in wanted.
func parseSockstat(content string, wanted map[string]*int) {
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) < 3 {
			continue
		}
		proto := strings.TrimSuffix(fields[0], ":")
		for i := 1; i+1 < len(fields); i += 2 {
			dest, ok := wanted[proto+":"+fields[i]]
			if !ok {
				continue
			}
			if value, err := strconv.Atoi(fields[i+1]); err == nil {
				*dest = value
			}
		}
	}
}
