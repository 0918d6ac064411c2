package sysinfo

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/subosito/gotenv"
)

// DefaultOSReleasePaths are tried in order. The first one is where the host
// filesystem is mounted when running inside a container.
var DefaultOSReleasePaths = []string{"/host/etc/os-release", "/etc/os-release"}

const unknown = "Unknown"

// Info describes the machine the benchmarks ran on
type Info struct {
	Cores    int     `json:"cores" yaml:"cores"`
	MemoryGB float64 `json:"memory_gb" yaml:"memory_gb"`
	OS       string  `json:"os" yaml:"os"`
}

// String renders the one-line host summary used in chart footers
func (i Info) String() string {
	cores := "?"
	if i.Cores > 0 {
		cores = fmt.Sprintf("%d", i.Cores)
	}
	ram := "?"
	if i.MemoryGB > 0 {
		ram = fmt.Sprintf("%.1fGB", i.MemoryGB)
	}
	osName := i.OS
	if osName == "" {
		osName = "?"
	}
	return fmt.Sprintf("Host: %s cores | %s RAM | %s", cores, ram, osName)
}

// Collector gathers host information. The zero value reads the default
// os-release locations.
type Collector struct {
	OSReleasePaths []string
}

// Collect gathers host information with the default collector
func Collect(ctx context.Context) Info {
	return Collector{}.Collect(ctx)
}

// Collect never fails; anything it cannot determine stays zero or "Unknown"
func (c Collector) Collect(ctx context.Context) Info {
	var info Info

	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		info.Cores = n
	}

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		info.MemoryGB = float64(vm.Total) / (1024 * 1024 * 1024)
	}

	paths := c.OSReleasePaths
	if paths == nil {
		paths = DefaultOSReleasePaths
	}
	info.OS = DistroName(paths)
	if info.OS == "" {
		info.OS = platformName(ctx)
	}

	return info
}

// DistroName returns PRETTY_NAME (or NAME) from the first readable
// os-release file that defines one
func DistroName(paths []string) string {
	for _, path := range paths {
		f, err := os.Open(path)
		if err != nil {
			continue
		}
		env := gotenv.Parse(f)
		f.Close()

		if name := strings.TrimSpace(env["PRETTY_NAME"]); name != "" {
			return name
		}
		if name := strings.TrimSpace(env["NAME"]); name != "" {
			return name
		}
	}
	return ""
}

func platformName(ctx context.Context) string {
	hi, err := host.InfoWithContext(ctx)
	if err != nil || hi.OS == "" {
		return unknown
	}
	if hi.KernelVersion == "" {
		return hi.OS
	}
	return hi.OS + " " + hi.KernelVersion
}
