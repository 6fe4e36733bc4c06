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
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/massenz/fsm-refmodel/api"
)

func GetMachineHandler(w http.ResponseWriter, r *http.Request) {
	defer trace(r.RequestURI)()
	defaultContent(w)

	vars := mux.Vars(r)
	if vars == nil {
		logger.Error("Unexpected missing path parameter machine_id in Request URI: %s",
			r.RequestURI)
		http.Error(w, "Unexpected error", http.StatusInternalServerError)
		return
	}

	machineId := vars["machine_id"]
	ctx, ok := fleet.Lookup(machineId)
	if !ok {
		http.Error(w, fmt.Sprintf("Machine %s does not exist on this server", machineId),
			http.StatusNotFound)
		return
	}
	res := MachineResponse{
		ID:          machineId,
		Diagnostics: ctx.Diagnostics().Snapshot(),
	}
	if storeManager != nil {
		if snapshot, ok := storeManager.GetSnapshot(machineId); ok {
			res.Snapshot = snapshot
		}
	}
	json.NewEncoder(w).Encode(res)
}

func PostEventHandler(w http.ResponseWriter, r *http.Request) {
	defer trace(r.RequestURI)()
	defaultContent(w)

	vars := mux.Vars(r)
	if vars == nil {
		logger.Error("Unexpected missing path parameter machine_id in Request URI: %s",
			r.RequestURI)
		http.Error(w, "Unexpected error", http.StatusInternalServerError)
		return
	}
	machineId := vars["machine_id"]
	if _, ok := fleet.Lookup(machineId); !ok {
		http.Error(w, fmt.Sprintf("Machine %s does not exist on this server", machineId),
			http.StatusNotFound)
		return
	}

	var body EventRequestBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	command := api.Command(body.Command)
	if !command.Known() {
		http.Error(w, fmt.Sprintf("command `%s`: %s", body.Command, api.UnknownCommandError),
			http.StatusBadRequest)
		return
	}

	event := api.NewStimulusEventWithPayload(command, body.Payload)
	if events == nil {
		http.Error(w, "events channel not configured", http.StatusServiceUnavailable)
		return
	}
	events <- api.EventRequest{MachineId: machineId, Event: event}

	w.Header().Add("Location",
		strings.Join([]string{EventsEndpoint, event.EventId, "outcome"}, "/"))
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(EventAcceptedResponse{
		EventId:   event.EventId,
		MachineId: machineId,
	})
}
