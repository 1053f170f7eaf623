package timezone

import "time"

var Location *time.Location

func init() {
	var err error
	Location, err = time.LoadLocation("Asia/Shanghai")
	if err != nil {
		panic(err)
	}
}

// force the timezone to match the portal's, the server reports
// wall-clock datetimes with no offset so interpreting them anywhere
// else corrupts deadlines when manipulating <time.Time>.Year()/Month()/Day()/...
func Now() time.Time {
	return time.Now().In(Location)
}
