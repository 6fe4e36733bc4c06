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
	"strings"
)

const (
	KeyPrefixComponentsSeparator = ":"
	KeyPrefixIDSeparator         = "#"
)

// Here we keep all the key definitions for the various Redis collections.

// NewKeyForConfig configs#<name:version>
func NewKeyForConfig(id string) string {
	prefix := "configs"
	return strings.Join([]string{prefix, id}, KeyPrefixIDSeparator)
}

// NewKeyForSnapshot fsm#<machine:id>
func NewKeyForSnapshot(id string) string {
	prefix := "fsm"
	return strings.Join([]string{prefix, id}, KeyPrefixIDSeparator)
}

// NewKeyForOutcome events:outcome#<event:id>
func NewKeyForOutcome(eventId string) string {
	prefix := strings.Join([]string{"events", "outcome"}, KeyPrefixComponentsSeparator)
	return strings.Join([]string{prefix, eventId}, KeyPrefixIDSeparator)
}
