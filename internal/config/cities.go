package config

import "WeatherEdge/internal/model"

// City describes one tracked market city: its observation station, the
// fixed standard-time offset its settlement windows run on, and the
// exchange series tickers for its daily markets.
type City struct {
	Key          string             `yaml:"key"`
	Name         string             `yaml:"name"`
	Station      string             `yaml:"station"`
	Lat          float64            `yaml:"lat"`
	Lon          float64            `yaml:"lon"`
	StationClass model.StationClass `yaml:"station_class"`
	LSTOffset    int                `yaml:"lst_utc_offset"`
	HighSeries   string             `yaml:"high_series"`
	LowSeries    string             `yaml:"low_series"` // empty when no LOW market trades
}

// TierOne cities sort first in digests: their markets are the most liquid.
var TierOne = map[string]bool{
	"PHX": true,
	"MIA": true,
	"LAS": true,
	"HOU": true,
	"SAT": true,
	"DAL": true,
}

// DefaultCities is the standard 20-city roster. Station picks matter:
// settlement follows the official station, which is not always the biggest
// airport (Chicago Midway, Houston Hobby, Dallas-Fort Worth).
func DefaultCities() []City {
	return []City{
		{Key: "NYC", Name: "New York City", Station: "KNYC", Lat: 40.7790, Lon: -73.9692, StationClass: model.StationHourly, LSTOffset: -5, HighSeries: "KXHIGHNY", LowSeries: "KXLOWTNYC"},
		{Key: "CHI", Name: "Chicago", Station: "KMDW", Lat: 41.7841, Lon: -87.7551, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHCHI", LowSeries: "KXLOWTCHI"},
		{Key: "LAX", Name: "Los Angeles", Station: "KLAX", Lat: 33.9382, Lon: -118.3870, StationClass: model.StationFiveMinute, LSTOffset: -8, HighSeries: "KXHIGHLAX", LowSeries: "KXLOWTLAX"},
		{Key: "MIA", Name: "Miami", Station: "KMIA", Lat: 25.7881, Lon: -80.3169, StationClass: model.StationFiveMinute, LSTOffset: -5, HighSeries: "KXHIGHMIA", LowSeries: "KXLOWTMIA"},
		{Key: "DEN", Name: "Denver", Station: "KDEN", Lat: 39.8466, Lon: -104.6560, StationClass: model.StationFiveMinute, LSTOffset: -7, HighSeries: "KXHIGHDEN", LowSeries: "KXLOWTDEN"},
		{Key: "PHX", Name: "Phoenix", Station: "KPHX", Lat: 33.4373, Lon: -112.0078, StationClass: model.StationFiveMinute, LSTOffset: -7, HighSeries: "KXHIGHTPHX"},
		{Key: "AUS", Name: "Austin", Station: "KAUS", Lat: 30.2099, Lon: -97.6806, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHAUS", LowSeries: "KXLOWTAUS"},
		{Key: "PHL", Name: "Philadelphia", Station: "KPHL", Lat: 39.8721, Lon: -75.2407, StationClass: model.StationFiveMinute, LSTOffset: -5, HighSeries: "KXHIGHPHIL", LowSeries: "KXLOWTPHIL"},
		{Key: "SFO", Name: "San Francisco", Station: "KSFO", Lat: 37.6213, Lon: -122.3790, StationClass: model.StationFiveMinute, LSTOffset: -8, HighSeries: "KXHIGHTSFO"},
		{Key: "SEA", Name: "Seattle", Station: "KSEA", Lat: 47.4502, Lon: -122.3088, StationClass: model.StationFiveMinute, LSTOffset: -8, HighSeries: "KXHIGHTSEA"},
		{Key: "DAL", Name: "Dallas", Station: "KDFW", Lat: 32.8998, Lon: -97.0403, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHTDAL"},
		{Key: "ATL", Name: "Atlanta", Station: "KATL", Lat: 33.6304, Lon: -84.4221, StationClass: model.StationFiveMinute, LSTOffset: -5, HighSeries: "KXHIGHTATL"},
		{Key: "LAS", Name: "Las Vegas", Station: "KLAS", Lat: 36.0840, Lon: -115.1537, StationClass: model.StationFiveMinute, LSTOffset: -8, HighSeries: "KXHIGHTLV"},
		{Key: "HOU", Name: "Houston", Station: "KHOU", Lat: 29.6454, Lon: -95.2789, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHTHOU"},
		{Key: "DCA", Name: "Washington DC", Station: "KDCA", Lat: 38.8512, Lon: -77.0402, StationClass: model.StationFiveMinute, LSTOffset: -5, HighSeries: "KXHIGHTDC"},
		{Key: "BOS", Name: "Boston", Station: "KBOS", Lat: 42.3656, Lon: -71.0096, StationClass: model.StationFiveMinute, LSTOffset: -5, HighSeries: "KXHIGHTBOS"},
		{Key: "MSY", Name: "New Orleans", Station: "KMSY", Lat: 29.9934, Lon: -90.2580, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHTNOLA"},
		{Key: "MSP", Name: "Minneapolis", Station: "KMSP", Lat: 44.8848, Lon: -93.2223, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHTMIN"},
		{Key: "SAT", Name: "San Antonio", Station: "KSAT", Lat: 29.5337, Lon: -98.4698, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHTSATX"},
		{Key: "OKC", Name: "Oklahoma City", Station: "KOKC", Lat: 35.3931, Lon: -97.6007, StationClass: model.StationFiveMinute, LSTOffset: -6, HighSeries: "KXHIGHTOKC"},
	}
}
