package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Rough working-set per analysis worker: decoded grayscale thumbs plus
// per-frame detection slices.
const workerMemoryBudget = 256 << 20

func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Failed to read open file limit: %v", err)
		return
	}

	rLimit.Cur = 2048
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	err = syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Failed to raise open file limit: %v", err)
	} else {
		fmt.Printf("[*] Open file limit raised to %d\n", rLimit.Cur)
	}
}

// AutoWorkers sizes the analysis worker pool from the host: one worker per
// logical CPU, reduced when available memory cannot back them all, and
// capped by limit when positive.
func AutoWorkers(limit int) int {
	workers := 1

	if n, err := cpu.Counts(true); err == nil && n > 0 {
		workers = n
	}

	if vm, err := mem.VirtualMemory(); err == nil && vm.Available > 0 {
		byMem := int(vm.Available / workerMemoryBudget)
		if byMem < 1 {
			byMem = 1
		}
		if byMem < workers {
			workers = byMem
		}
	}

	if limit > 0 && workers > limit {
		workers = limit
	}
	return workers
}

// FindLatestDump finds the most recent detection dump in a directory.
func FindLatestDump(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	extensions := []string{".json", ".msgpack", ".mp"}
	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		isDump := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				isDump = true
				break
			}
		}
		if isDump {
			info, err := f.Info()
			if err != nil {
				continue
			}
			if info.ModTime().After(latestTime) {
				latestTime = info.ModTime()
				latestFile = filepath.Join(dir, f.Name())
			}
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no detection dumps found in %s", dir)
	}

	return latestFile, nil
}
