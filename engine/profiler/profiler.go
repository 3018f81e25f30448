package profiler

import (
	"log"
	"runtime"
	"time"
)

// Phase is a timed section of a frame.
type Phase int

const (
	PhaseUpdate Phase = iota
	PhaseRender
	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseUpdate:
		return "update"
	case PhaseRender:
		return "render"
	default:
		return "unknown"
	}
}

// Stats is one reporting interval's summary.
type Stats struct {
	FPS    float64
	Update time.Duration // mean update phase per frame
	Render time.Duration // mean render phase per frame

	// Drawn and Culled are the draw counts of the last recorded frame.
	Drawn  int
	Culled int

	HeapMB      float64
	AllocRateMB float64 // MB allocated per second over the interval
	SysMB       float64
	GCCount     uint32
	LastPause   time.Duration
	MaxPause    time.Duration // longest GC pause since the previous report
}

// Profiler tracks frame rate, phase timings, draw counts and memory statistics.
// It reports once per interval and is meant to be driven from the frame loop thread.
type Profiler struct {
	now            func() time.Time
	updateInterval time.Duration
	logEnabled     bool

	frameCount int
	lastTime   time.Time
	phaseTotal [phaseCount]time.Duration
	drawn      int
	culled     int

	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64
	last           Stats
}

// NewProfiler creates a Profiler reporting every second to the log.
//
// Parameters:
//   - options: a variadic list of ProfilerBuilderOption functions
//
// Returns:
//   - *Profiler: the profiler
func NewProfiler(options ...ProfilerBuilderOption) *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
		logEnabled:     true,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Begin starts timing a phase and returns the function that stops it.
//
//	defer prof.Begin(profiler.PhaseRender)()
func (p *Profiler) Begin(phase Phase) func() {
	start := p.now()
	return func() {
		if phase >= 0 && phase < phaseCount {
			p.phaseTotal[phase] += p.now().Sub(start)
		}
	}
}

// RecordDraw stores the renderer's counts for the current frame.
func (p *Profiler) RecordDraw(drawn, culled int) {
	p.drawn = drawn
	p.culled = culled
}

// Tick should be called once per frame after rendering.
// When the interval has elapsed it computes Stats and logs them if logging is enabled.
//
// Returns:
//   - bool: true if a report was produced this tick
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval || elapsed <= 0 {
		return false
	}

	s := Stats{
		FPS:    float64(p.frameCount) / elapsed.Seconds(),
		Update: p.phaseTotal[PhaseUpdate] / time.Duration(p.frameCount),
		Render: p.phaseTotal[PhaseRender] / time.Duration(p.frameCount),
		Drawn:  p.drawn,
		Culled: p.culled,
	}
	p.readMemory(&s, elapsed)

	if p.logEnabled {
		log.Printf("[Profiler] FPS: %.2f | Update: %s | Render: %s | Drawn: %d Culled: %d | Heap: %.2f MB | Alloc Rate: %.2f MB/s | GC: %d (last: %s, max: %s) | Sys: %.2f MB",
			s.FPS, s.Update, s.Render, s.Drawn, s.Culled, s.HeapMB, s.AllocRateMB, s.GCCount, s.LastPause, s.MaxPause, s.SysMB)
	}

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.phaseTotal = [phaseCount]time.Duration{}
	return true
}

func (p *Profiler) readMemory(s *Stats, elapsed time.Duration) {
	runtime.ReadMemStats(&p.memStats)
	s.HeapMB = float64(p.memStats.Alloc) / 1024 / 1024
	s.SysMB = float64(p.memStats.Sys) / 1024 / 1024
	allocDelta := p.memStats.TotalAlloc - p.lastTotalAlloc
	s.AllocRateMB = float64(allocDelta) / 1024 / 1024 / elapsed.Seconds()

	gcCount := p.memStats.NumGC
	s.GCCount = gcCount
	if gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPause = time.Duration(p.memStats.PauseNs[(gcCount-1)%256])
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPause = max(s.MaxPause, time.Duration(p.memStats.PauseNs[i%256]))
		}
	}
	p.lastGCCount = gcCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
}

// Stats returns the most recent report. It is zero until the first interval elapses.
func (p *Profiler) Stats() Stats {
	return p.last
}
