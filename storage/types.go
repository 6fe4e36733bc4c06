/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/massenz/fsm-refmodel/api"
)

func Error(msg string) func(string) error {
	return func(key string) error {
		return fmt.Errorf(msg, key)
	}
}

var (
	IllegalStoreError  = Error("error storing invalid data: %v")
	AlreadyExistsError = Error("key %s already exists")
	NotFoundError      = Error("key %s not found")
)

// Snapshot mirrors the externally observable part of a Context: the machine's
// current and previous identities, keyed by machine ID. It is what observers
// read from the store after each handled event.
type Snapshot struct {
	ID        string            `json:"id"`
	ConfigId  string            `json:"config_id"`
	State     api.StateIdentity `json:"state"`
	Previous  api.StateIdentity `json:"previous"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (s *Snapshot) String() string {
	out, err := json.Marshal(*s)
	if err != nil {
		return err.Error()
	}
	return string(out)
}
