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
	"sync"
	"time"

	slf4go "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
)

type InMemoryStore struct {
	logger       *slf4go.Log
	mux          sync.RWMutex
	backingStore map[string][]byte
}

func NewInMemoryStore() StoreManager {
	return &InMemoryStore{
		backingStore: make(map[string][]byte),
		logger:       slf4go.NewLog("InMemoryStore"),
	}
}

func (csm *InMemoryStore) get(key string, value any) bool {
	csm.mux.RLock()
	defer csm.mux.RUnlock()

	data, ok := csm.backingStore[key]
	csm.logger.Trace("key %s - Found: %t", key, ok)
	if ok {
		if err := json.Unmarshal(data, value); err != nil {
			csm.logger.Error(err.Error())
			return false
		}
	}
	return ok
}

func (csm *InMemoryStore) put(key string, value any) error {
	csm.mux.Lock()
	defer csm.mux.Unlock()

	data, err := json.Marshal(value)
	if err == nil {
		csm.logger.Trace("Storing key %s [%T]", key, value)
		csm.backingStore[key] = data
	}
	return err
}

func (csm *InMemoryStore) GetConfig(versionId string) (*machine.Configuration, bool) {
	key := NewKeyForConfig(versionId)
	csm.logger.Debug("Fetching Configuration [%s]", key)
	cfg := &machine.Configuration{}
	return cfg, csm.get(key, cfg)
}

func (csm *InMemoryStore) PutConfig(cfg *machine.Configuration) error {
	if cfg == nil {
		return IllegalStoreError("nil configuration")
	}
	key := NewKeyForConfig(cfg.VersionID())
	csm.mux.RLock()
	_, found := csm.backingStore[key]
	csm.mux.RUnlock()
	if found {
		return AlreadyExistsError(key)
	}
	csm.logger.Debug("Storing Configuration [%s] with key: %s", cfg.VersionID(), key)
	return csm.put(key, cfg)
}

func (csm *InMemoryStore) GetSnapshot(id string) (*Snapshot, bool) {
	key := NewKeyForSnapshot(id)
	var snapshot Snapshot
	if csm.get(key, &snapshot) {
		csm.logger.Debug("Found machine [%s] in state: %s", key, snapshot.State)
		return &snapshot, true
	}
	csm.logger.Debug("Not found for key %s", key)
	return nil, false
}

func (csm *InMemoryStore) PutSnapshot(id string, snapshot *Snapshot) error {
	if snapshot == nil {
		return IllegalStoreError(id)
	}
	key := NewKeyForSnapshot(id)
	csm.logger.Debug("Storing machine [%s] with key: %s", id, key)
	return csm.put(key, snapshot)
}

func (csm *InMemoryStore) AddEventOutcome(eventId string, outcome *api.Diagnostic,
	ttl time.Duration) error {
	if outcome == nil {
		return IllegalStoreError(eventId)
	}
	key := NewKeyForOutcome(eventId)
	return csm.put(key, outcome)
}

func (csm *InMemoryStore) GetOutcomeForEvent(eventId string) (*api.Diagnostic, bool) {
	key := NewKeyForOutcome(eventId)
	var outcome api.Diagnostic
	return &outcome, csm.get(key, &outcome)
}

func (csm *InMemoryStore) SetLogLevel(level slf4go.LogLevel) {
	csm.logger.Level = level
}

// SetTimeout does not really make sense for an in-memory store, so this is a no-op.
func (csm *InMemoryStore) SetTimeout(_ time.Duration) {
	// do nothing
}

// GetTimeout does not really make sense for an in-memory store,
// so this just returns a NeverExpire constant.
func (csm *InMemoryStore) GetTimeout() time.Duration {
	return NeverExpire
}

func (csm *InMemoryStore) Health() error {
	return nil
}
