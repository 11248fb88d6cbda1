// Package server provides the HTTP server and routing for QuantGold.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/aristath/quantgold/internal/clientdata"
	"github.com/aristath/quantgold/internal/database"
)

// SystemHandlers handles system-wide monitoring endpoints
type SystemHandlers struct {
	log         zerolog.Logger
	dataDir     string
	startupTime time.Time
	cacheDB     *database.DB
}

// NewSystemHandlers creates a new system handlers instance
func NewSystemHandlers(log zerolog.Logger, dataDir string, cacheDB *database.DB) *SystemHandlers {
	return &SystemHandlers{
		log:         log.With().Str("component", "system_handlers").Logger(),
		dataDir:     dataDir,
		startupTime: time.Now(),
		cacheDB:     cacheDB,
	}
}

// HandleHealth handles GET /health
func (h *SystemHandlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// HandleSystemStatus returns process uptime, host load and cache statistics
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, ramPercent := h.getSystemStats()

	response := map[string]interface{}{
		"data": map[string]interface{}{
			"uptime_seconds": time.Since(h.startupTime).Seconds(),
			"cpu_percent":    cpuPercent,
			"ram_percent":    ramPercent,
			"cache":          h.cacheStats(),
		},
		"metadata": map[string]interface{}{
			"timestamp": time.Now().Format(time.RFC3339),
		},
	}

	h.writeJSON(w, http.StatusOK, response)
}

// cacheStats reports per-table row counts and the database file size
func (h *SystemHandlers) cacheStats() map[string]interface{} {
	stats := map[string]interface{}{}

	if h.cacheDB == nil {
		return stats
	}

	tables := map[string]int64{}
	for _, table := range clientdata.AllTables {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", table)
		if err := h.cacheDB.Conn().QueryRow(query).Scan(&count); err != nil {
			h.log.Warn().Err(err).Str("table", table).Msg("Failed to count cache rows")
			continue
		}
		tables[table] = count
	}
	stats["tables"] = tables

	if info, err := os.Stat(filepath.Join(h.dataDir, "cache.db")); err == nil {
		stats["file_size_bytes"] = info.Size()
	}

	return stats
}

// getSystemStats returns CPU and RAM usage percentages. The short CPU sample
// window keeps the endpoint responsive for dashboard polling.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

// writeJSON writes a JSON response
func (h *SystemHandlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
