// Package dashboard builds the template contexts for the chart
// dashboard pages.
package dashboard

import (
	"fmt"
	"strings"
	"time"

	"statsdash/internal/stats"
)

const (
	perCPULineColorLight = "#00000044"
	perCPULineColorDark  = "#ffffff44"
	cpuLineColor         = "#ffcc00"
	cpuFillColor         = "#ffcc0099"

	temperatureLineColor = "#990000"
	temperatureFillColor = "#99000099"

	memLineColor = "#0055ff"
	memFillColor = "#0055ff99"

	sentLineColor     = "#44eeaa"
	receivedLineColor = "#44dd22"

	sendErrorsLineColor    = "#ff8800"
	receiveErrorsLineColor = "#ff4400"

	tcpLineColor = "#44eedd"
	udpLineColor = "#44bbdd"

	loadAvg1LineColor  = "#ff00ff"
	loadAvg5LineColor  = "#bb00ff"
	loadAvg15LineColor = "#7700ff"
)

// Context is the template context for the dashboard page.
type Context struct {
	Title          string
	DarkMode       bool
	Charts         []Chart
	Sections       []Section
	LastUpdateTime string
}

// Chart describes one rendered chart.
type Chart struct {
	// ID must be unique within the page.
	ID       string
	Title    string
	Datasets []Dataset
	XLabel   string
	YLabel   string
	XValues  []string
	MinY     float64
	// MaxY of zero lets the chart scale to its data.
	MaxY float64
	// Text lines shown next to the chart.
	AccompanyingText1 string
	AccompanyingText2 string
}

// Dataset is one line on a chart.
type Dataset struct {
	Name      string
	LineColor string
	FillColor string
	Values    []float64
	Fill      bool
}

// Section is a block of textual stats below the charts.
type Section struct {
	Name        string
	Stats       []string
	Subsections []Subsection
}

// Subsection is a named group of stat lines within a section.
type Subsection struct {
	Name  string
	Stats []string
}

// ErrorContext is the template context for the error page.
type ErrorContext struct {
	Title   string
	Message string
}

// FromSnapshots builds the dashboard context from a chronological
// (oldest first) history. An empty history renders a "no data" page.
func FromSnapshots(snapshots []stats.Snapshot, darkMode bool) Context {
	const title = "Dashboard"

	if len(snapshots) == 0 {
		return Context{
			Title:          title,
			DarkMode:       darkMode,
			Sections:       []Section{{Name: "No data yet"}},
			LastUpdateTime: "N/A",
		}
	}

	mostRecent := snapshots[len(snapshots)-1]

	var sections []Section
	if section, ok := buildGeneralSection(mostRecent.General); ok {
		sections = append(sections, section)
	}
	if section, ok := buildNetworkSection(mostRecent.Network); ok {
		sections = append(sections, section)
	}
	if mostRecent.Filesystems != nil {
		sections = append(sections, buildFilesystemsSection(mostRecent.Filesystems))
	}

	var charts []Chart
	charts = append(charts, buildCPUCharts(snapshots, darkMode)...)
	charts = append(charts, buildMemoryChart(snapshots))
	charts = append(charts, buildLoadAverageChart(snapshots))
	charts = append(charts, buildNetworkCharts(snapshots)...)

	return Context{
		Title:          title,
		DarkMode:       darkMode,
		Charts:         charts,
		Sections:       sections,
		LastUpdateTime: mostRecent.CollectionTime.Format(time.RFC3339),
	}
}

func buildGeneralSection(general stats.GeneralStats) (Section, bool) {
	var lines []string
	if general.UptimeSeconds != nil {
		lines = append(lines, fmt.Sprintf("Uptime: %d seconds", *general.UptimeSeconds))
	}
	if general.BootTimestamp != nil {
		bootTime := time.Unix(*general.BootTimestamp, 0)
		lines = append(lines, fmt.Sprintf("Booted at: %s", bootTime.Format(time.RFC3339)))
	}
	if len(lines) == 0 {
		return Section{}, false
	}
	return Section{Name: "System", Stats: lines}, true
}

func buildNetworkSection(network stats.NetworkStats) (Section, bool) {
	var subsections []Subsection
	if sockets := network.Sockets; sockets != nil {
		subsections = append(subsections, Subsection{
			Name: "Sockets",
			Stats: []string{
				fmt.Sprintf("TCP: %d in use total, %d IPv6, %d orphaned",
					sockets.TCPInUse, sockets.TCP6InUse, sockets.TCPOrphaned),
				fmt.Sprintf("UDP: %d in use total, %d IPv6",
					sockets.UDPInUse, sockets.UDP6InUse),
			},
		})
	}

	for _, iface := range network.Interfaces {
		subsections = append(subsections, Subsection{
			Name: iface.Name,
			Stats: []string{
				fmt.Sprintf("IP addresses: %s", strings.Join(iface.Addresses, ", ")),
				fmt.Sprintf("Sent: %d packets, %d MB, %d errors",
					iface.SentPackets, iface.SentMB, iface.SendErrors),
				fmt.Sprintf("Received: %d packets, %d MB, %d errors",
					iface.ReceivedPackets, iface.ReceivedMB, iface.ReceiveErrors),
			},
		})
	}

	if len(subsections) == 0 {
		return Section{}, false
	}
	return Section{Name: "Network", Subsections: subsections}, true
}

func buildFilesystemsSection(mounts []stats.MountStats) Section {
	var totalUsedMB, totalMB uint64
	subsections := make([]Subsection, 0, len(mounts))
	for _, mount := range mounts {
		totalUsedMB += mount.UsedMB
		totalMB += mount.TotalMB
		usedPct := percentage(mount.UsedMB, mount.TotalMB)
		subsections = append(subsections, Subsection{
			Name: mount.MountedOn,
			Stats: []string{
				fmt.Sprintf("Type: %s", mount.FSType),
				fmt.Sprintf("Mounted from: %s", mount.MountedFrom),
				fmt.Sprintf("Usage: %d / %d MB (%.2f%%)", mount.UsedMB, mount.TotalMB, usedPct),
			},
		})
	}

	return Section{
		Name: "Filesystems",
		Stats: []string{fmt.Sprintf("Total usage: %d / %d MB (%.2f%%)",
			totalUsedMB, totalMB, percentage(totalUsedMB, totalMB))},
		Subsections: subsections,
	}
}

func buildCPUCharts(snapshots []stats.Snapshot, darkMode bool) []Chart {
	aggregateValues := make([]float64, 0, len(snapshots))
	tempValues := make([]float64, 0, len(snapshots))
	perCPUValues := make([][]float64, 0, len(snapshots))
	xValues := make([]string, 0, len(snapshots))

	for _, snapshot := range snapshots {
		aggregateValues = append(aggregateValues, floatOrZero(snapshot.CPU.AggregateLoadPercent))
		tempValues = append(tempValues, floatOrZero(snapshot.CPU.TempCelsius))
		perCPUValues = append(perCPUValues, snapshot.CPU.PerLogicalCPULoadPercent)
		xValues = append(xValues, formatTime(snapshot.CollectionTime))
	}

	datasets := []Dataset{{
		Name:      "Total",
		LineColor: cpuLineColor,
		FillColor: cpuFillColor,
		Values:    aggregateValues,
		Fill:      true,
	}}

	perCPULineColor := perCPULineColorLight
	if darkMode {
		perCPULineColor = perCPULineColorDark
	}
	for i, values := range transpose(perCPUValues, len(snapshots)) {
		datasets = append(datasets, Dataset{
			Name:      fmt.Sprintf("CPU %d", i),
			LineColor: perCPULineColor,
			Values:    values,
		})
	}

	return []Chart{
		{
			ID:                "cpu-usage-chart",
			Title:             "CPU Usage",
			Datasets:          datasets,
			XLabel:            "Time",
			YLabel:            "Usage (%)",
			XValues:           xValues,
			MaxY:              100,
			AccompanyingText1: fmt.Sprintf("%.2f%%", lastOrZero(aggregateValues)),
		},
		{
			ID:    "cpu-temp-chart",
			Title: "Temperature",
			Datasets: []Dataset{{
				Name:      "Celsius",
				LineColor: temperatureLineColor,
				FillColor: temperatureFillColor,
				Values:    tempValues,
				Fill:      true,
			}},
			XLabel:            "Time",
			YLabel:            "Temperature (C)",
			XValues:           xValues,
			MaxY:              85,
			AccompanyingText1: fmt.Sprintf("%.2f°C", lastOrZero(tempValues)),
		},
	}
}

func buildMemoryChart(snapshots []stats.Snapshot) Chart {
	memoryValues := make([]float64, 0, len(snapshots))
	xValues := make([]string, 0, len(snapshots))
	var maxTotalMB uint64

	for _, snapshot := range snapshots {
		if memory := snapshot.Memory; memory != nil {
			if memory.TotalMB > maxTotalMB {
				maxTotalMB = memory.TotalMB
			}
			memoryValues = append(memoryValues, float64(memory.UsedMB))
		} else {
			memoryValues = append(memoryValues, 0)
		}
		xValues = append(xValues, formatTime(snapshot.CollectionTime))
	}

	text1, text2 := "-- / -- MB", "--%"
	if memory := snapshots[len(snapshots)-1].Memory; memory != nil {
		text1 = fmt.Sprintf("%d / %d MB", memory.UsedMB, memory.TotalMB)
		text2 = fmt.Sprintf("%.2f%%", percentage(memory.UsedMB, memory.TotalMB))
	}

	return Chart{
		ID:    "ram-chart",
		Title: "Memory Usage",
		Datasets: []Dataset{{
			Name:      "Used",
			LineColor: memLineColor,
			FillColor: memFillColor,
			Values:    memoryValues,
			Fill:      true,
		}},
		XLabel:            "Time",
		YLabel:            "Usage (MB)",
		XValues:           xValues,
		MaxY:              float64(maxTotalMB),
		AccompanyingText1: text1,
		AccompanyingText2: text2,
	}
}

func buildLoadAverageChart(snapshots []stats.Snapshot) Chart {
	oneMinValues := make([]float64, 0, len(snapshots))
	fiveMinValues := make([]float64, 0, len(snapshots))
	fifteenMinValues := make([]float64, 0, len(snapshots))
	xValues := make([]string, 0, len(snapshots))

	for _, snapshot := range snapshots {
		if loads := snapshot.General.LoadAverages; loads != nil {
			oneMinValues = append(oneMinValues, loads.OneMinute)
			fiveMinValues = append(fiveMinValues, loads.FiveMinutes)
			fifteenMinValues = append(fifteenMinValues, loads.FifteenMinutes)
		} else {
			oneMinValues = append(oneMinValues, 0)
			fiveMinValues = append(fiveMinValues, 0)
			fifteenMinValues = append(fifteenMinValues, 0)
		}
		xValues = append(xValues, formatTime(snapshot.CollectionTime))
	}

	return Chart{
		ID:    "load-average-chart",
		Title: "Load Average",
		Datasets: []Dataset{
			{Name: "1 minute", LineColor: loadAvg1LineColor, Values: oneMinValues},
			{Name: "5 minutes", LineColor: loadAvg5LineColor, Values: fiveMinValues},
			{Name: "15 minutes", LineColor: loadAvg15LineColor, Values: fifteenMinValues},
		},
		XLabel:  "Time",
		YLabel:  "Load average",
		XValues: xValues,
		AccompanyingText1: fmt.Sprintf("1: %.2f, 5: %.2f, 15: %.2f",
			lastOrZero(oneMinValues), lastOrZero(fiveMinValues), lastOrZero(fifteenMinValues)),
	}
}

func buildNetworkCharts(snapshots []stats.Snapshot) []Chart {
	sentValues := make([]float64, 0, len(snapshots))
	receivedValues := make([]float64, 0, len(snapshots))
	sendErrorValues := make([]float64, 0, len(snapshots))
	receiveErrorValues := make([]float64, 0, len(snapshots))
	tcpValues := make([]float64, 0, len(snapshots))
	udpValues := make([]float64, 0, len(snapshots))
	xValues := make([]string, 0, len(snapshots))

	for _, snapshot := range snapshots {
		var sent, received, sendErrors, receiveErrors float64
		for _, iface := range snapshot.Network.Interfaces {
			sent += float64(iface.SentMB)
			received += float64(iface.ReceivedMB)
			sendErrors += float64(iface.SendErrors)
			receiveErrors += float64(iface.ReceiveErrors)
		}
		sentValues = append(sentValues, sent)
		receivedValues = append(receivedValues, received)
		sendErrorValues = append(sendErrorValues, sendErrors)
		receiveErrorValues = append(receiveErrorValues, receiveErrors)

		if sockets := snapshot.Network.Sockets; sockets != nil {
			tcpValues = append(tcpValues, float64(sockets.TCPInUse))
			udpValues = append(udpValues, float64(sockets.UDPInUse))
		} else {
			tcpValues = append(tcpValues, 0)
			udpValues = append(udpValues, 0)
		}

		xValues = append(xValues, formatTime(snapshot.CollectionTime))
	}

	return []Chart{
		{
			ID:    "network-usage-chart",
			Title: "Cumulative Network Usage",
			Datasets: []Dataset{
				{Name: "Sent", LineColor: sentLineColor, Values: sentValues},
				{Name: "Received", LineColor: receivedLineColor, Values: receivedValues},
			},
			XLabel:  "Time",
			YLabel:  "Total (MB)",
			XValues: xValues,
			AccompanyingText1: fmt.Sprintf("%.0f MB sent, %.0f MB received",
				lastOrZero(sentValues), lastOrZero(receivedValues)),
		},
		{
			ID:    "network-errors-chart",
			Title: "Cumulative Network Errors",
			Datasets: []Dataset{
				{Name: "Send", LineColor: sendErrorsLineColor, Values: sendErrorValues},
				{Name: "Receive", LineColor: receiveErrorsLineColor, Values: receiveErrorValues},
			},
			XLabel:  "Time",
			YLabel:  "Total errors",
			XValues: xValues,
			AccompanyingText1: fmt.Sprintf("%.0f send, %.0f receive",
				lastOrZero(sendErrorValues), lastOrZero(receiveErrorValues)),
		},
		{
			ID:    "sockets-chart",
			Title: "Socket Usage",
			Datasets: []Dataset{
				{Name: "TCP", LineColor: tcpLineColor, Values: tcpValues},
				{Name: "UDP", LineColor: udpLineColor, Values: udpValues},
			},
			XLabel:  "Time",
			YLabel:  "In use",
			XValues: xValues,
			AccompanyingText1: fmt.Sprintf("%.0f TCP, %.0f UDP",
				lastOrZero(tcpValues), lastOrZero(udpValues)),
		},
	}
}

// transpose turns per-snapshot core load rows into per-core series. The
// core count is taken from the widest row; snapshots missing a core
// contribute zero so every series spans the full time axis.
func transpose(rows [][]float64, width int) [][]float64 {
	var coreCount int
	for _, row := range rows {
		if len(row) > coreCount {
			coreCount = len(row)
		}
	}

	series := make([][]float64, coreCount)
	for i := range series {
		series[i] = make([]float64, width)
	}
	for snapshotIndex, row := range rows {
		for coreIndex, value := range row {
			series[coreIndex][snapshotIndex] = value
		}
	}
	return series
}

func percentage(used, total uint64) float64 {
	if total == 0 {
		return 0
	}
	return float64(used) / float64(total) * 100
}

func floatOrZero(value *float64) float64 {
	if value == nil {
		return 0
	}
	return *value
}

func lastOrZero(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return values[len(values)-1]
}

func formatTime(t time.Time) string {
	return t.Format("03:04:05 PM")
}
