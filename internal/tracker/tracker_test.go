package tracker

import (
	"testing"
	"time"

	"WeatherEdge/internal/model"
)

func floatp(v float64) *float64 { return &v }

func reading(c float64) model.Reading {
	return model.Reading{TempValue: floatp(c), UnitCode: "wmoUnit:degC"}
}

func TestMidnightLST(t *testing.T) {
	cases := []struct {
		name   string
		now    time.Time
		offset int
		want   time.Time
	}{
		{
			"afternoon UTC, eastern station",
			time.Date(2026, 2, 18, 14, 0, 0, 0, time.UTC), -5,
			time.Date(2026, 2, 18, 5, 0, 0, 0, time.UTC),
		},
		{
			"early UTC rolls back to previous LST day",
			time.Date(2026, 2, 18, 3, 0, 0, 0, time.UTC), -8,
			time.Date(2026, 2, 17, 8, 0, 0, 0, time.UTC),
		},
		{
			"exactly LST midnight",
			time.Date(2026, 2, 18, 5, 0, 0, 0, time.UTC), -5,
			time.Date(2026, 2, 18, 5, 0, 0, 0, time.UTC),
		},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := MidnightLST(c.now, c.offset); !got.Equal(c.want) {
				t.Errorf("MidnightLST = %v, want %v", got, c.want)
			}
		})
	}
}

func TestDayWindowLST(t *testing.T) {
	date := time.Date(2026, 2, 18, 0, 0, 0, 0, time.UTC)
	start, end := DayWindowLST(date, -5)
	if want := time.Date(2026, 2, 18, 5, 0, 0, 0, time.UTC); !start.Equal(want) {
		t.Errorf("start = %v, want %v", start, want)
	}
	if want := time.Date(2026, 2, 19, 5, 0, 0, 0, time.UTC); !end.Equal(want) {
		t.Errorf("end = %v, want %v", end, want)
	}
}

func TestRunningHigh_FiveMinuteStation(t *testing.T) {
	// 10.4°C is the warmest reading: floor(10.4*9/5+32) = floor(50.72) = 50.
	readings := []model.Reading{reading(10.0), reading(10.4), reading(9.8)}
	got := RunningHigh(readings, model.StationFiveMinute)
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Observed != 50 {
		t.Errorf("Observed = %d, want 50", got.Observed)
	}
	if got.Probable < got.Observed {
		t.Errorf("Probable %d < Observed %d", got.Probable, got.Observed)
	}
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
}

func TestRunningHigh_ProbableCrossesBoundary(t *testing.T) {
	// 4.4°C converts to 39.92°F (floors to 39) but the true value could be
	// 4.45°C = 40.01°F, so the probable max crosses to 40.
	got := RunningHigh([]model.Reading{reading(4.4)}, model.StationFiveMinute)
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Observed != 39 || got.Probable != 40 {
		t.Errorf("got %d/%d, want 39/40", got.Observed, got.Probable)
	}
}

func TestRunningHigh_HourlyStationRounds(t *testing.T) {
	// 21.1°C = 69.98°F came from a whole-°F report, so round() recovers 70.
	got := RunningHigh([]model.Reading{reading(21.1)}, model.StationHourly)
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Observed != 70 || got.Probable != 70 {
		t.Errorf("got %d/%d, want 70/70", got.Observed, got.Probable)
	}
}

func TestRunningHigh_DSMRaisesOnly(t *testing.T) {
	r := reading(10.0) // floor(50.0) = 50
	r.Max24h = floatp(11.0)
	got := RunningHigh([]model.Reading{r}, model.StationFiveMinute)
	if got == nil {
		t.Fatal("expected a result")
	}
	// DSM floor(11*9/5+32) = floor(51.8) = 51 beats the computed 50
	if got.Observed != 51 || got.Probable != 51 {
		t.Errorf("got %d/%d, want 51/51", got.Observed, got.Probable)
	}

	low := reading(15.0) // floor(59.0) = 59, above the DSM value
	low.Max24h = floatp(11.0)
	got = RunningHigh([]model.Reading{low}, model.StationFiveMinute)
	if got.Observed != 59 {
		t.Errorf("DSM lowered the max to %d, want 59", got.Observed)
	}
}

func TestRunningHigh_DSMWithoutReadings(t *testing.T) {
	r := model.Reading{Max24h: floatp(11.0)}
	got := RunningHigh([]model.Reading{r}, model.StationFiveMinute)
	if got == nil {
		t.Fatal("DSM alone should still produce a result")
	}
	if got.Observed != 51 || got.Count != 0 {
		t.Errorf("got %d with count %d, want 51 with count 0", got.Observed, got.Count)
	}
}

func TestRunningHigh_NoData(t *testing.T) {
	if got := RunningHigh(nil, model.StationFiveMinute); got != nil {
		t.Errorf("no readings: got %+v, want nil", got)
	}
	nulls := []model.Reading{{UnitCode: "wmoUnit:degC"}, {UnitCode: "wmoUnit:degC"}}
	if got := RunningHigh(nulls, model.StationFiveMinute); got != nil {
		t.Errorf("all-null readings: got %+v, want nil", got)
	}
}

func TestRunningHigh_FahrenheitUnitGuard(t *testing.T) {
	r := model.Reading{TempValue: floatp(50.0), UnitCode: "wmoUnit:degF"}
	got := RunningHigh([]model.Reading{r}, model.StationFiveMinute)
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Observed != 50 {
		t.Errorf("Observed = %d, want 50 after converting 50°F through Celsius", got.Observed)
	}
}

func TestRunningLow_FiveMinuteStation(t *testing.T) {
	// Coldest is 9.8°C = 49.64°F → 49 conservative; the band cannot move it
	// here because floor(9.75*9/5+32) = floor(49.55) = 49 as well.
	readings := []model.Reading{reading(10.0), reading(9.8), reading(10.4)}
	got := RunningLow(readings, model.StationFiveMinute)
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Observed != 49 || got.Probable != 49 {
		t.Errorf("got %d/%d, want 49/49", got.Observed, got.Probable)
	}
	if got.Count != 3 {
		t.Errorf("Count = %d, want 3", got.Count)
	}
}

func TestRunningLow_ProbableCrossesBoundary(t *testing.T) {
	// 10.0°C floors to exactly 50°F, but the true value could be 9.95°C =
	// 49.91°F, so the probable min drops to 49.
	got := RunningLow([]model.Reading{reading(10.0)}, model.StationFiveMinute)
	if got == nil {
		t.Fatal("expected a result")
	}
	if got.Observed != 50 || got.Probable != 49 {
		t.Errorf("got %d/%d, want 50/49", got.Observed, got.Probable)
	}
}

func TestRunningLow_HourlyStation(t *testing.T) {
	got := RunningLow([]model.Reading{reading(21.1), reading(20.0)}, model.StationHourly)
	if got == nil {
		t.Fatal("expected a result")
	}
	// 20.0°C = 68.0°F exactly; no band for hourly observers
	if got.Observed != 68 || got.Probable != 68 {
		t.Errorf("got %d/%d, want 68/68", got.Observed, got.Probable)
	}
}
