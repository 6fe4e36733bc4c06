/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

// Package metrics exposes Prometheus counters for the event pipeline. The
// listener is the single place resolutions become observable, so all counting
// happens there.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	EventsReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_events_received_total",
		Help: "Stimulus events received by the listener, per destination machine",
	}, []string{"machine"})

	Resolutions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "fsm_resolutions_total",
		Help: "Transition resolutions, per machine and outcome kind",
	}, []string{"machine", "kind"})
)

// Handler serves the default Prometheus registry, mounted by the HTTP server.
func Handler() http.Handler {
	return promhttp.Handler()
}
