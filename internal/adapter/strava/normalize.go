package strava

import (
	"strings"
	"time"

	"healthsync/internal/domain"
)

// Normalize converts a raw Strava activity into a canonical session.
// Pure function; heart-rate and other optional fields stay nil when the
// upstream omitted them.
func Normalize(a Activity) domain.Session {
	distKm := domain.DistanceKm(a.Distance, "meters")
	s := domain.Session{
		StartTime:       a.StartDate.UTC(),
		DistanceKm:      distKm,
		DurationSeconds: a.MovingTime,
		PaceSecPerKm:    domain.Pace(a.MovingTime, distKm),
		AvgHeartRate:    a.AvgHeartRate,
		MaxHeartRate:    a.MaxHeartRate,
		ElevationGainM:  a.ElevationGain,
		ActivityType:    activityType(a.Type),
		Calories:        a.Calories,
		Source:          Source,
	}
	if a.ElapsedTime > 0 {
		end := a.StartDate.Add(time.Duration(a.ElapsedTime * float64(time.Second))).UTC()
		s.EndTime = &end
	}
	return s
}

func activityType(t string) string {
	switch t {
	case "Run", "TrailRun", "VirtualRun":
		return "running"
	case "Ride", "VirtualRide", "GravelRide":
		return "cycling"
	default:
		return strings.ToLower(t)
	}
}
