package weblearn

import (
	"thuassist-backend/lib/restyutil"
	"thuassist-backend/lib/telemetry"
)

var tracer = telemetry.Tracer("thuassist.lib.scrapers.weblearn")
var restyInstrumentOutput restyutil.InstrumentOutput

func SetRestyInstrumentOutput(out restyutil.InstrumentOutput) {
	restyInstrumentOutput = out
}
