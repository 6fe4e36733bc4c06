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
)

// NOTE: We make the handlers "exportable" so they can be tested, do NOT call directly.

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	// Standard preamble for all handlers, sets tracing (if enabled) and default content type.
	defer trace(r.RequestURI)()
	defaultContent(w)

	if storeManager != nil {
		if err := storeManager.Health(); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(MessageResponse{Error: err.Error()})
			return
		}
	}
	res := MessageResponse{Msg: "UP"}
	if Release != "" {
		res.Msg = fmt.Sprintf("UP (%s)", Release)
	}
	err := json.NewEncoder(w).Encode(res)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
