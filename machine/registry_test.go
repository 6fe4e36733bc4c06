/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package machine_test

import (
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
)

var _ = Describe("State Registry", func() {

	var registry *machine.Registry

	BeforeEach(func() {
		registry = machine.NewRegistry()
	})

	Context("with a registered constructor", func() {
		var built int32

		BeforeEach(func() {
			built = 0
			registry.Register(api.StateRun, func() machine.State {
				atomic.AddInt32(&built, 1)
				return &testState{id: api.StateRun}
			})
		})

		It("constructs the instance on first lookup", func() {
			s, err := registry.InstanceFor(api.StateRun)
			Expect(err).ToNot(HaveOccurred())
			Expect(s.Identity()).To(Equal(api.StateRun))
			Expect(atomic.LoadInt32(&built)).To(Equal(int32(1)))
		})
		It("always returns the same shared instance", func() {
			first, err := registry.InstanceFor(api.StateRun)
			Expect(err).ToNot(HaveOccurred())
			second, err := registry.InstanceFor(api.StateRun)
			Expect(err).ToNot(HaveOccurred())
			Expect(first).To(BeIdenticalTo(second))
			Expect(atomic.LoadInt32(&built)).To(Equal(int32(1)))
		})
		It("constructs at most once under concurrent lookups", func() {
			var wg sync.WaitGroup
			for i := 0; i < 20; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := registry.InstanceFor(api.StateRun)
					Expect(err).ToNot(HaveOccurred())
				}()
			}
			wg.Wait()
			Expect(atomic.LoadInt32(&built)).To(Equal(int32(1)))
		})
	})

	Context("with missing or broken constructors", func() {
		It("fails on an unregistered identity", func() {
			_, err := registry.InstanceFor(api.StateSleep)
			Expect(err).To(MatchError(machine.ErrUnregisteredState))
		})
		It("fails on a constructor returning nil", func() {
			registry.Register(api.StateIdle, func() machine.State { return nil })
			_, err := registry.InstanceFor(api.StateIdle)
			Expect(err).To(MatchError(machine.ErrNilState))
		})
	})

	Context("when instantiating eagerly", func() {
		It("builds every identity up front", func() {
			cfg := testConfiguration()
			registry := newTestRegistry(cfg)
			Expect(registry.Instantiate(cfg.States...)).To(Succeed())
		})
		It("fails fast on the first missing identity", func() {
			registry.Register(api.StateInit, func() machine.State {
				return &testState{id: api.StateInit}
			})
			err := registry.Instantiate(api.StateInit, api.StateRun)
			Expect(err).To(MatchError(machine.ErrUnregisteredState))
		})
	})
})
