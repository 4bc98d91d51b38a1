package main

import (
	"astrocat/cmd/astrocat/cmd"
	"astrocat/pkg/osutil"
)

func main() {
	ctx, cancel := osutil.SignalContext()
	defer cancel()

	cmd.Execute(ctx)
}
