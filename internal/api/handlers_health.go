// Cinematch - Content-Based Movie Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package api

import (
	"context"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"

	"github.com/tomtom215/cinematch/internal/cache"
	"github.com/tomtom215/cinematch/internal/models"
)

// Health handles GET /api/v1/health.
//
// The process is alive whenever this answers; status is "degraded" until
// the first index is loaded.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ready := h.engine.Ready()
	status := "healthy"
	if !ready {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, success(r, models.HealthResponse{
		Status:     status,
		Version:    h.version,
		IndexReady: ready,
		Uptime:     time.Since(h.startTime).Seconds(),
	}, start))
}

// HealthReady handles GET /api/v1/health/ready: 200 once an index is
// loaded, 503 before.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	if !h.engine.Ready() {
		respondError(w, http.StatusServiceUnavailable, ErrCodeIndexNotReady, "Index is not ready", nil)
		return
	}
	respondJSON(w, http.StatusOK, success(r, map[string]bool{"ready": true}, time.Now()))
}

// Status handles GET /api/v1/status.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	stats := h.engine.Stats()

	resp := models.StatusResponse{
		Version: h.version,
		Index: models.IndexStatus{
			Ready:           stats.Ready,
			Source:          stats.Source,
			Fingerprint:     stats.Fingerprint,
			BuiltAt:         stats.BuiltAt,
			BuildDurationMS: stats.Index.BuildDuration.Milliseconds(),
			Items:           stats.Index.Items,
			VocabularySize:  stats.Index.VocabularySize,
			DegenerateItems: stats.Index.DegenerateItems,
			DuplicateTitles: stats.Index.DuplicateTitles,
			DroppedMovies:   stats.Merge.DroppedMovies,
			Requests:        stats.Requests,
			NotFound:        stats.NotFound,
			Builds:          stats.Builds,
			SnapshotLoads:   stats.SnapshotLoads,
		},
		Host:   hostStatus(r.Context()),
		Caches: map[string]models.CacheStatus{},
	}
	if h.responses != nil {
		resp.Caches["response"] = cacheStatus(h.responses.Stats())
	}
	if h.posters != nil {
		resp.Caches["poster"] = cacheStatus(h.posters.CacheStats())
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, success(r, resp, start))
}

func cacheStatus(s cache.Stats) models.CacheStatus {
	return models.CacheStatus{Size: s.Size, Hits: s.Hits, Misses: s.Misses, HitRate: s.HitRate()}
}

// hostStatus collects process and host figures. Probes that fail on the
// current platform leave their fields zero.
func hostStatus(ctx context.Context) models.HostStatus {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	hs := models.HostStatus{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: ms.HeapAlloc,
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if vm, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		hs.MemTotalBytes = vm.Total
		hs.MemUsedPercent = vm.UsedPercent
	}
	if n, err := cpu.CountsWithContext(ctx, true); err == nil {
		hs.CPUCount = n
	}
	if avg, err := load.AvgWithContext(ctx); err == nil {
		hs.LoadAverage1m = avg.Load1
	}
	if proc, err := process.NewProcessWithContext(ctx, int32(os.Getpid())); err == nil { //nolint:gosec // pid fits in int32
		if mi, err := proc.MemoryInfoWithContext(ctx); err == nil {
			hs.ProcessRSSBytes = mi.RSS
		}
	}
	return hs
}
