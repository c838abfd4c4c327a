package section

import "time"

// Metadata is the decoded content of Sections 0, 1 and 3: everything
// needed to interpret Section 4 before the structural walk begins.
type Metadata struct {
	Size    int // total message size in bytes, from Section 0
	Edition int // 3 or 4

	Master        int
	Centre        int
	SubCentre     int
	Update        int
	Sect2Present  bool
	Category      int
	CategoryInt   int
	CategoryLoc   int
	MasterVersion int
	LocalVersion  int
	DateTime      time.Time
}

func assembleDateTime(edition int, year, month, day, hour, minute, second int) time.Time {
	if edition < 4 {
		if year > 50 {
			year += 1900
		} else {
			year += 2000
		}
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
}
