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
	"time"

	log "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
)

const NeverExpire = 0

type ConfigurationStorageManager interface {
	GetConfig(versionId string) (*machine.Configuration, bool)

	// PutConfig stores the Configuration under its VersionID; Configurations
	// are immutable, overwriting an existing version is an error.
	PutConfig(cfg *machine.Configuration) error
}

type SnapshotStorageManager interface {
	GetSnapshot(id string) (*Snapshot, bool)

	// PutSnapshot creates or updates the snapshot for the machine whose `id`
	// is given.
	PutSnapshot(id string, snapshot *Snapshot) error
}

type OutcomeStorageManager interface {
	// AddEventOutcome stores the Diagnostic recorded for an event, so that
	// observers can retrieve it after the fact.
	//
	// Optionally, it will remove the outcome after a given `ttl`
	// (time-to-live); use `NeverExpire` to keep the outcome forever.
	AddEventOutcome(eventId string, outcome *api.Diagnostic, ttl time.Duration) error

	GetOutcomeForEvent(eventId string) (*api.Diagnostic, bool)
}

type StoreManager interface {
	log.Loggable
	ConfigurationStorageManager
	SnapshotStorageManager
	OutcomeStorageManager
	SetTimeout(duration time.Duration)
	GetTimeout() time.Duration
	Health() error
}
