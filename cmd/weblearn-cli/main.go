package main

import (
	"thuassist-backend/cmd/weblearn-cli/commands"
	"thuassist-backend/lib/serviceutil"
	"thuassist-backend/lib/telemetry"
)

func main() {
	ctx := serviceutil.SignalContext()
	telemetry.SetupFromEnv(ctx, "weblearn-cli")
	telemetry.InitSlog(true)
	telemetry.InstrumentPerfStats(ctx)
	commands.ExecuteContext(ctx)
}
