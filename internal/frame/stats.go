package frame

import (
	"time"

	"github.com/loov/hrtime"
)

// Stats summarizes the frames rendered so far. Frames counts presents that
// reached the display; TimelineValue is the last submitted value.
type Stats struct {
	Frames        uint64
	Rebuilds      int
	TimelineValue uint64
	LastFrame     time.Duration
	AverageFrame  time.Duration
}

type statsTracker struct {
	frames    uint64
	rebuilds  int
	value     uint64
	last      time.Duration
	total     time.Duration
	interval  time.Duration
	lastLog   time.Duration
	logFrames uint64
	logTotal  time.Duration
}

func newStatsTracker(interval time.Duration) statsTracker {
	return statsTracker{interval: interval, lastLog: hrtime.Now()}
}

func (s *statsTracker) submitted(value uint64) {
	s.value = value
}

// frame counts a presented frame.
func (s *statsTracker) frame(elapsed time.Duration) {
	s.frames++
	s.last = elapsed
	s.total += elapsed
	s.logFrames++
	s.logTotal += elapsed

	if s.interval <= 0 {
		return
	}

	now := hrtime.Now()
	if now-s.lastLog < s.interval {
		return
	}

	logger.Debugf("%d frames in the last %v, average cpu frame time %v, timeline at %d",
		s.logFrames, (now - s.lastLog).Round(time.Millisecond), s.logTotal/time.Duration(s.logFrames), s.value)
	s.lastLog = now
	s.logFrames = 0
	s.logTotal = 0
}

func (s *statsTracker) snapshot() Stats {
	stats := Stats{
		Frames:        s.frames,
		Rebuilds:      s.rebuilds,
		TimelineValue: s.value,
		LastFrame:     s.last,
	}
	if s.frames > 0 {
		stats.AverageFrame = s.total / time.Duration(s.frames)
	}
	return stats
}
