package httptransport

import "expvar"

var (
	metricGameCreateTotal    = expvar.NewInt("gauntlet_game_create_total")
	metricJoinTotal          = expvar.NewInt("gauntlet_join_total")
	metricCheckInSubmitTotal = expvar.NewInt("gauntlet_checkin_submit_total")
	metricCommandErrorsTotal = expvar.NewInt("gauntlet_command_errors_total")

	metricSSEConnectionsTotal  = expvar.NewInt("gauntlet_sse_connections_total")
	metricSSEConnectionsActive = expvar.NewInt("gauntlet_sse_connections_active")
)
