package scheduler

import (
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"

	"framepress/internal/engine"
)

// Lane is one worker slot. The hardware lane drives the accelerator and
// runs its jobs strictly serially; software lanes run in parallel, one
// engine process each. Row is the lane's fixed terminal row, assigned at
// scheduler start and owned exclusively for the run.
type Lane struct {
	Variant engine.Variant
	Index   int
	Row     int
	Name    string
}

// BuildLanes derives the lane set from encoder availability and the
// configured worker counts. The hardware lane exists only when both the
// config asks for it and the engine offers the accelerated encoder. A
// software lane count of zero derives one from the CPU.
func BuildLanes(availability engine.Availability, hardwareLane bool, softwareLanes int) []Lane {
	var lanes []Lane
	row := 1
	if hardwareLane && availability.Hardware {
		lanes = append(lanes, Lane{Variant: engine.VariantHardware, Index: 0, Row: row, Name: "gpu"})
		row++
	}
	count := softwareLanes
	if count == 0 {
		count = defaultSoftwareLanes()
	}
	if !availability.Software {
		count = 0
	}
	for i := 0; i < count; i++ {
		lanes = append(lanes, Lane{Variant: engine.VariantSoftware, Index: i, Row: row, Name: fmt.Sprintf("cpu%d", i+1)})
		row++
	}
	return lanes
}

// defaultSoftwareLanes sizes the pool from the logical CPU count. Each
// software encode is itself multithreaded, so one lane per four logical
// CPUs keeps the machine responsive.
func defaultSoftwareLanes() int {
	logical, err := cpu.Counts(true)
	if err != nil || logical < 1 {
		return 1
	}
	lanes := logical / 4
	if lanes < 1 {
		return 1
	}
	return lanes
}

// Assign distributes jobs round-robin across the lanes, cycling through
// them in order. Within one lane, jobs keep their assignment order.
func Assign(jobCount int, lanes []Lane) [][]int {
	assignments := make([][]int, len(lanes))
	if len(lanes) == 0 {
		return assignments
	}
	for job := 0; job < jobCount; job++ {
		lane := job % len(lanes)
		assignments[lane] = append(assignments[lane], job)
	}
	return assignments
}
