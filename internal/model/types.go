package model

import "time"

// Usage holds a percent plus used/total in GiB for RAM or a volume
type Usage struct {
	Percent float64
	UsedGB  float64
	TotalGB float64
}

// MetricSample is one instantaneous reading of the host
type MetricSample struct {
	CPUPercent float64
	RAM        Usage
	Disk       Usage
	Load       [3]float64 // 1m, 5m, 15m
	Uptime     time.Duration
}

// ContainerInfo holds Docker container information
type ContainerInfo struct {
	Name    string
	State   string
	Image   string
	ID      string
	Running bool
}

// BytesToGB converts a byte count to GiB.
func BytesToGB(b uint64) float64 {
	return float64(b) / (1024 * 1024 * 1024)
}
