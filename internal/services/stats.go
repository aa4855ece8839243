package services

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"quill-backend/internal/models"
)

// StatsService reports a best-effort snapshot of host memory and the
// inference daemon's footprint.
type StatsService struct{}

func NewStatsService() *StatsService {
	return &StatsService{}
}

// Snapshot gathers current memory numbers. Per-process failures (races
// with process exit, permission errors) are skipped.
func (s *StatsService) Snapshot(ctx context.Context) (models.StatsResponse, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return models.StatsResponse{}, fmt.Errorf("failed to read system memory: %w", err)
	}

	var ollamaMB float64
	procs, err := process.ProcessesWithContext(ctx)
	if err == nil {
		for _, p := range procs {
			name, err := p.NameWithContext(ctx)
			if err != nil || !strings.Contains(strings.ToLower(name), "ollama") {
				continue
			}
			info, err := p.MemoryInfoWithContext(ctx)
			if err != nil || info == nil {
				continue
			}
			ollamaMB += float64(info.RSS) / 1024 / 1024
		}
	}

	return models.StatsResponse{
		SystemMemoryPercent: vm.UsedPercent,
		OllamaMemoryMB:      math.Round(ollamaMB*100) / 100,
		TotalMemoryGB:       math.Round(float64(vm.Total)/(1<<30)*10) / 10,
	}, nil
}
