package codec

import (
	"strings"
	"sync"
	"time"
	_ "time/tzdata"

	"github.com/wippyai/oci-runtime/errors"
)

// Regions is the zone region table. A region's id is its index plus one;
// ids are part of the TIMESTAMP WITH TIME ZONE encoding, so entries are
// only ever appended.
var Regions = []string{
	"UTC",
	"Africa/Cairo",
	"Africa/Johannesburg",
	"Africa/Lagos",
	"Africa/Nairobi",
	"America/Anchorage",
	"America/Argentina/Buenos_Aires",
	"America/Bogota",
	"America/Chicago",
	"America/Denver",
	"America/Halifax",
	"America/Los_Angeles",
	"America/Mexico_City",
	"America/New_York",
	"America/Phoenix",
	"America/Santiago",
	"America/Sao_Paulo",
	"America/St_Johns",
	"America/Toronto",
	"America/Vancouver",
	"Asia/Bangkok",
	"Asia/Dhaka",
	"Asia/Dubai",
	"Asia/Hong_Kong",
	"Asia/Jakarta",
	"Asia/Jerusalem",
	"Asia/Kathmandu",
	"Asia/Kolkata",
	"Asia/Manila",
	"Asia/Seoul",
	"Asia/Shanghai",
	"Asia/Singapore",
	"Asia/Taipei",
	"Asia/Tehran",
	"Asia/Tokyo",
	"Atlantic/Azores",
	"Atlantic/Reykjavik",
	"Australia/Adelaide",
	"Australia/Brisbane",
	"Australia/Perth",
	"Australia/Sydney",
	"Europe/Amsterdam",
	"Europe/Athens",
	"Europe/Berlin",
	"Europe/Dublin",
	"Europe/Helsinki",
	"Europe/Istanbul",
	"Europe/Kyiv",
	"Europe/Lisbon",
	"Europe/London",
	"Europe/Madrid",
	"Europe/Moscow",
	"Europe/Paris",
	"Europe/Prague",
	"Europe/Rome",
	"Europe/Stockholm",
	"Europe/Warsaw",
	"Europe/Zurich",
	"Pacific/Auckland",
	"Pacific/Honolulu",
	"US/Eastern",
	"US/Central",
	"US/Mountain",
	"US/Pacific",
}

var (
	regionOnce  sync.Once
	regionIndex map[string]int
	locCache    sync.Map // name -> *time.Location
)

func buildRegionIndex() {
	regionIndex = make(map[string]int, len(Regions))
	for i, name := range Regions {
		regionIndex[strings.ToUpper(name)] = i + 1
	}
}

// RegionID returns the id of a region name (case-insensitive).
func RegionID(name string) (int, bool) {
	regionOnce.Do(buildRegionIndex)
	id, ok := regionIndex[strings.ToUpper(name)]
	return id, ok
}

// RegionName returns the canonical name of a region id.
func RegionName(id int) (string, bool) {
	if id < 1 || id > len(Regions) {
		return "", false
	}
	return Regions[id-1], true
}

// LoadRegion resolves a region name to a location. Names outside the
// region table are still resolved when the zone database knows them.
func LoadRegion(name string) (*time.Location, error) {
	if id, ok := RegionID(name); ok {
		name = Regions[id-1]
	}
	if l, ok := locCache.Load(name); ok {
		return l.(*time.Location), nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, errors.New(errors.PhaseFormat, errors.KindUnsupported).
			Value(name).
			Cause(err).
			Detail("unknown time zone region %q", name).
			Build()
	}
	locCache.Store(name, loc)
	return loc, nil
}
