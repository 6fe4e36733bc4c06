/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package machine

import (
	"fmt"
	"sort"
	"sync"
)

// Fleet indexes the live Contexts by machine ID, for the event listener and
// the observer surfaces. It only hands out references: all event delivery
// still goes through each Context's own Handle.
type Fleet struct {
	mux      sync.RWMutex
	machines map[string]*Context
}

func NewFleet() *Fleet {
	return &Fleet{machines: make(map[string]*Context)}
}

func (f *Fleet) Add(c *Context) error {
	f.mux.Lock()
	defer f.mux.Unlock()
	if _, found := f.machines[c.ID()]; found {
		return fmt.Errorf("machine `%s` already in fleet", c.ID())
	}
	f.machines[c.ID()] = c
	return nil
}

func (f *Fleet) Lookup(id string) (*Context, bool) {
	f.mux.RLock()
	defer f.mux.RUnlock()
	c, ok := f.machines[id]
	return c, ok
}

func (f *Fleet) IDs() []string {
	f.mux.RLock()
	defer f.mux.RUnlock()
	ids := make([]string, 0, len(f.machines))
	for id := range f.machines {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (f *Fleet) Len() int {
	f.mux.RLock()
	defer f.mux.RUnlock()
	return len(f.machines)
}
