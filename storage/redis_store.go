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
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	slf4go "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
)

const (
	DefaultRedisPort  = "6379"
	DefaultRedisDb    = 0
	DefaultMaxRetries = 3
	DefaultTimeout    = 200 * time.Millisecond
)

type RedisStore struct {
	logger     *slf4go.Log
	client     redis.UniversalClient
	Timeout    time.Duration
	MaxRetries int
}

// NewRedisStore connects to a single Redis node, or to a cluster when
// `cluster` is set; `address` may be a comma-separated list of nodes.
func NewRedisStore(address string, cluster bool, db int, timeout time.Duration,
	maxRetries int) StoreManager {
	logger := slf4go.NewLog(fmt.Sprintf("redis://%s/%d", address, db))
	var client redis.UniversalClient
	if cluster {
		client = redis.NewClusterClient(&redis.ClusterOptions{
			Addrs: strings.Split(address, ","),
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr: address,
			DB:   db, // 0 means default DB
		})
	}
	return &RedisStore{
		logger:     logger,
		client:     client,
		Timeout:    timeout,
		MaxRetries: maxRetries,
	}
}

func NewRedisStoreWithDefaults(address string) StoreManager {
	return NewRedisStore(address, false, DefaultRedisDb, DefaultTimeout, DefaultMaxRetries)
}

func (csm *RedisStore) GetConfig(versionId string) (*machine.Configuration, bool) {
	key := NewKeyForConfig(versionId)
	var cfg machine.Configuration
	if err := csm.get(key, &cfg); err != nil {
		csm.logger.Error("Error retrieving configuration `%s`: %s", versionId, err.Error())
		return nil, false
	}
	return &cfg, true
}

func (csm *RedisStore) PutConfig(cfg *machine.Configuration) error {
	if cfg == nil {
		return IllegalStoreError("nil configuration")
	}
	key := NewKeyForConfig(cfg.VersionID())
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), csm.Timeout)
	defer cancel()
	// Configurations are immutable: SETNX refuses a second write.
	set, err := csm.client.SetNX(ctx, key, data, NeverExpire).Result()
	if err != nil {
		csm.logger.Error("Error storing configuration `%s`: %s", key, err.Error())
		return err
	}
	if !set {
		return AlreadyExistsError(key)
	}
	return nil
}

func (csm *RedisStore) GetSnapshot(id string) (*Snapshot, bool) {
	key := NewKeyForSnapshot(id)
	var snapshot Snapshot
	if err := csm.get(key, &snapshot); err != nil {
		csm.logger.Error("Error retrieving machine `%s`: %s", key, err.Error())
		return nil, false
	}
	return &snapshot, true
}

func (csm *RedisStore) PutSnapshot(id string, snapshot *Snapshot) error {
	if snapshot == nil {
		return IllegalStoreError(id)
	}
	key := NewKeyForSnapshot(id)
	return csm.put(key, snapshot, NeverExpire)
}

func (csm *RedisStore) AddEventOutcome(eventId string, outcome *api.Diagnostic,
	ttl time.Duration) error {
	if outcome == nil {
		return IllegalStoreError(eventId)
	}
	key := NewKeyForOutcome(eventId)
	return csm.put(key, outcome, ttl)
}

func (csm *RedisStore) GetOutcomeForEvent(eventId string) (*api.Diagnostic, bool) {
	key := NewKeyForOutcome(eventId)
	var outcome api.Diagnostic
	if err := csm.get(key, &outcome); err != nil {
		csm.logger.Error("Error retrieving outcome for event `%s`: %s", key, err.Error())
		return nil, false
	}
	return &outcome, true
}

func (csm *RedisStore) SetTimeout(duration time.Duration) {
	csm.Timeout = duration
}

func (csm *RedisStore) GetTimeout() time.Duration {
	return csm.Timeout
}

// SetLogLevel for RedisStore implements the Loggable interface.
func (csm *RedisStore) SetLogLevel(level slf4go.LogLevel) {
	csm.logger.Level = level
}

// `get` abstracts away the common functionality of looking for a key in Redis,
// with a given timeout and a number of retries.
func (csm *RedisStore) get(key string, value any) error {
	attemptsLeft := csm.MaxRetries
	csm.logger.Trace("Looking up key `%s` (Max retries: %d)", key, attemptsLeft)
	var cancel context.CancelFunc
	defer func() {
		if cancel != nil {
			cancel()
		}
	}()
	for {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), csm.Timeout)
		attemptsLeft--
		cmd := csm.client.Get(ctx, key)
		data, err := cmd.Bytes()
		if err == redis.Nil {
			// The key isn't there, no point in retrying
			csm.logger.Debug("Key `%s` not found", key)
			return NotFoundError(key)
		} else if err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				// The error here may be recoverable, so we'll keep trying until we run out of attempts
				csm.logger.Error(err.Error())
				if attemptsLeft == 0 {
					csm.logger.Error("max retries reached, giving up")
					return err
				}
				csm.logger.Trace("retrying after timeout, attempts left: %d", attemptsLeft)
				csm.wait()
			} else {
				// This is a different error, we'll just return it
				csm.logger.Error(err.Error())
				return err
			}
		} else {
			return json.Unmarshal(data, value)
		}
	}
}

func (csm *RedisStore) put(key string, value any, ttl time.Duration) error {
	attemptsLeft := csm.MaxRetries
	csm.logger.Trace("Storing key `%s` (Max retries: %d)", key, attemptsLeft)
	var cancel context.CancelFunc
	defer func() {
		if cancel != nil {
			cancel()
		}
	}()
	for {
		var ctx context.Context
		ctx, cancel = context.WithTimeout(context.Background(), csm.Timeout)
		attemptsLeft--
		data, err := json.Marshal(value)
		if err != nil {
			csm.logger.Error("cannot convert value to JSON: %q", err)
			return err
		}
		cmd := csm.client.Set(ctx, key, data, ttl)
		if _, err = cmd.Result(); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				// The error here may be recoverable, so we'll keep trying until we run out of attempts
				csm.logger.Error(err.Error())
				if attemptsLeft == 0 {
					csm.logger.Error("max retries reached, giving up")
					return err
				}
				csm.logger.Trace("retrying after timeout, attempts left: %d", attemptsLeft)
				csm.wait()
			} else {
				return err
			}
		} else {
			return nil
		}
	}
}

func (csm *RedisStore) Health() error {
	ctx, cancel := context.WithTimeout(context.Background(), csm.Timeout)
	defer cancel()

	if _, err := csm.client.Ping(ctx).Result(); err != nil {
		csm.logger.Error("Error pinging redis: %s", err.Error())
		return fmt.Errorf("redis health check failed: %w", err)
	}
	return nil
}

// wait is a helper function that sleeps for a random amount of time between 0 and half second.
// Poor man's backoff.
func (csm *RedisStore) wait() {
	waitForMsec := rand.Intn(500)
	time.Sleep(time.Duration(waitForMsec) * time.Millisecond)
}
