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

	"github.com/gorilla/mux"
)

func GetOutcomeHandler(w http.ResponseWriter, r *http.Request) {
	defer trace(r.RequestURI)()
	defaultContent(w)

	vars := mux.Vars(r)
	if vars == nil {
		logger.Error("Unexpected missing path parameter event_id in Request URI: %s",
			r.RequestURI)
		http.Error(w, "Unexpected error", http.StatusInternalServerError)
		return
	}
	eventId := vars["event_id"]
	if storeManager == nil {
		http.Error(w, "no storage configured", http.StatusServiceUnavailable)
		return
	}
	outcome, ok := storeManager.GetOutcomeForEvent(eventId)
	if !ok {
		http.Error(w, fmt.Sprintf("Outcome for event %s not found", eventId),
			http.StatusNotFound)
		return
	}
	json.NewEncoder(w).Encode(OutcomeResponse{EventId: eventId, Outcome: outcome})
}
