package model

import (
	"sync"
	"time"
)

var (
	etOnce sync.Once
	etLoc  *time.Location
)

// EasternTime returns the America/New_York location. Market event days and
// delivery windows run on Eastern civil time, unlike settlement windows
// which run on fixed station LST.
func EasternTime() *time.Location {
	etOnce.Do(func() {
		loc, err := time.LoadLocation("America/New_York")
		if err != nil {
			loc = time.FixedZone("EST", -5*3600)
		}
		etLoc = loc
	})
	return etLoc
}
