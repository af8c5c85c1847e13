package application

import "expvar"

// authStats is published at /api/debug/vars when debug metrics are enabled.
var authStats = expvar.NewMap("account_core")

func countEvent(name string) { authStats.Add(name, 1) }
