package conditions

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestDefaultsTimeBands(t *testing.T) {
	cases := []struct {
		hour      int
		timeOfDay string
		traffic   string
	}{
		{6, "Morning", "Medium"},
		{11, "Morning", "Medium"},
		{12, "Afternoon", "High"},
		{16, "Afternoon", "High"},
		{17, "Evening", "High"},
		{20, "Evening", "High"},
		{21, "Night", "Low"},
		{3, "Night", "Low"},
	}

	for _, tc := range cases {
		clock := fixedClock(time.Date(2025, time.March, 10, tc.hour, 0, 0, 0, time.UTC))
		c := NewDefaulterWithClock(clock).Defaults()

		assert.Equal(t, tc.timeOfDay, c.TimeOfDay, "hour %d", tc.hour)
		assert.Equal(t, tc.traffic, c.TrafficVolume, "hour %d", tc.hour)
	}
}

func TestDefaultsMonsoonSeason(t *testing.T) {
	clock := fixedClock(time.Date(2025, time.July, 15, 10, 0, 0, 0, time.UTC))
	c := NewDefaulterWithClock(clock).Defaults()

	assert.Equal(t, "Rainy", c.Weather)
	assert.Equal(t, "Wet", c.RoadSurface)
	assert.Equal(t, "medium", c.Visibility)
}

func TestDefaultsDrySeason(t *testing.T) {
	clock := fixedClock(time.Date(2025, time.March, 15, 10, 0, 0, 0, time.UTC))
	c := NewDefaulterWithClock(clock).Defaults()

	assert.Equal(t, "Clear", c.Weather)
	assert.Equal(t, "Dry", c.RoadSurface)
	assert.Equal(t, "high", c.Visibility)
}

func TestDefaultsLightCondition(t *testing.T) {
	day := NewDefaulterWithClock(fixedClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))).Defaults()
	assert.Equal(t, "Daylight", day.LightCondition)

	night := NewDefaulterWithClock(fixedClock(time.Date(2025, time.March, 15, 22, 0, 0, 0, time.UTC))).Defaults()
	assert.Equal(t, "Night_with_lights", night.LightCondition)
}

func TestDefaultsWeekend(t *testing.T) {
	saturday := NewDefaulterWithClock(fixedClock(time.Date(2025, time.March, 15, 12, 0, 0, 0, time.UTC))).Defaults()
	assert.True(t, saturday.IsWeekend)

	monday := NewDefaulterWithClock(fixedClock(time.Date(2025, time.March, 17, 12, 0, 0, 0, time.UTC))).Defaults()
	assert.False(t, monday.IsWeekend)
}

func TestWeatherWinterFog(t *testing.T) {
	d := NewDefaulterWithClock(fixedClock(time.Date(2025, time.January, 5, 6, 0, 0, 0, time.UTC)))
	snap := d.Weather("New Delhi")

	assert.Equal(t, "Foggy", snap.Weather)
	assert.Equal(t, "low", snap.Visibility)
	assert.Equal(t, "Dry", snap.RoadSurface)
}

func TestWeatherMonsoon(t *testing.T) {
	d := NewDefaulterWithClock(fixedClock(time.Date(2025, time.August, 5, 14, 0, 0, 0, time.UTC)))
	snap := d.Weather("Mumbai, Maharashtra")

	assert.Equal(t, "Rainy", snap.Weather)
	assert.Equal(t, "Wet", snap.RoadSurface)
	assert.Equal(t, 85, snap.Humidity)
	assert.Equal(t, "Daylight", snap.LightCondition)
	assert.Equal(t, 30, snap.Temperature)
}

func TestWeatherWinterTemperatureDrop(t *testing.T) {
	d := NewDefaulterWithClock(fixedClock(time.Date(2025, time.December, 20, 14, 0, 0, 0, time.UTC)))
	snap := d.Weather("Jaipur, Rajasthan")

	assert.Equal(t, "Clear", snap.Weather)
	assert.Equal(t, 23, snap.Temperature)
}
