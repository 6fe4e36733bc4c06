/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
	"github.com/massenz/fsm-refmodel/metrics"
	"github.com/massenz/fsm-refmodel/storage"
)

const (
	Api              = "/api/v1"
	HealthEndpoint   = "/health"
	MetricsEndpoint  = "/metrics"
	MachinesEndpoint = Api + "/machines"
	EventsEndpoint   = Api + "/events"
)

var (
	// Release carries the version of the binary, as set by the build script
	// See: https://blog.alexellis.io/inject-build-time-vars-golang/
	Release string

	shouldTrace  bool
	logger       = log.NewLog("server")
	storeManager storage.StoreManager
	fleet        *machine.Fleet
	events       chan<- api.EventRequest
)

func trace(endpoint string) func() {
	if !shouldTrace {
		return func() {}
	}
	start := time.Now()
	logger.Trace("Handling: [%s]\n", endpoint)
	return func() { logger.Trace("%s took %s\n", endpoint, time.Since(start)) }
}

func defaultContent(w http.ResponseWriter) {
	w.Header().Add(ContentType, ApplicationJson)
}

func EnableTracing() {
	shouldTrace = true
	logger.Level = log.TRACE
}

func SetLogLevel(level log.LogLevel) {
	logger.Level = level
}

// NewRouter returns a gorilla/mux Router for the server routes; exposed so
// that path params are testable.
func NewRouter() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc(HealthEndpoint, HealthHandler).Methods("GET")
	r.Handle(MetricsEndpoint, metrics.Handler()).Methods("GET")
	r.HandleFunc(strings.Join([]string{MachinesEndpoint, "{machine_id}"}, "/"),
		GetMachineHandler).Methods("GET")
	r.HandleFunc(strings.Join([]string{MachinesEndpoint, "{machine_id}", "events"}, "/"),
		PostEventHandler).Methods("POST")
	r.HandleFunc(strings.Join([]string{EventsEndpoint, "{event_id}", "outcome"}, "/"),
		GetOutcomeHandler).Methods("GET")
	return r
}

func NewHTTPServer(addr string, logLevel log.LogLevel) *http.Server {
	logger.Level = logLevel
	return &http.Server{
		Addr:    addr,
		Handler: NewRouter(),
	}
}

func SetStore(store storage.StoreManager) {
	storeManager = store
}

func SetFleet(machines *machine.Fleet) {
	fleet = machines
}

// SetEventsChannel wires the channel onto which accepted events are posted for
// the listener to process.
func SetEventsChannel(ch chan<- api.EventRequest) {
	events = ch
}
