/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package storage_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	slf4go "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/storage"
)

var _ = Describe("InMemory Store", func() {

	var store storage.StoreManager

	BeforeEach(func() {
		store = storage.NewInMemoryStore()
		store.SetLogLevel(slf4go.NONE)
	})

	Context("for configurations", func() {
		It("stores and retrieves by version ID", func() {
			cfg := testConfiguration("orders")
			Expect(store.PutConfig(cfg)).To(Succeed())

			found, ok := store.GetConfig(cfg.VersionID())
			Expect(ok).To(BeTrue())
			Expect(found.Name).To(Equal("orders"))
			Expect(found.StartingState).To(Equal(api.StateInit))
		})
		It("refuses to overwrite an existing version", func() {
			cfg := testConfiguration("orders")
			Expect(store.PutConfig(cfg)).To(Succeed())
			Expect(store.PutConfig(cfg)).To(HaveOccurred())
		})
		It("rejects a nil configuration", func() {
			Expect(store.PutConfig(nil)).To(HaveOccurred())
		})
		It("misses an unknown version", func() {
			_, ok := store.GetConfig("orders:v9")
			Expect(ok).To(BeFalse())
		})
	})

	Context("for snapshots", func() {
		It("stores and retrieves the machine snapshot", func() {
			snapshot := &storage.Snapshot{
				ID:        "m1",
				ConfigId:  "orders:v1",
				State:     api.StateRun,
				Previous:  api.StateInit,
				UpdatedAt: time.Now(),
			}
			Expect(store.PutSnapshot("m1", snapshot)).To(Succeed())

			found, ok := store.GetSnapshot("m1")
			Expect(ok).To(BeTrue())
			Expect(found.State).To(Equal(api.StateRun))
			Expect(found.Previous).To(Equal(api.StateInit))
		})
		It("overwrites a snapshot on update", func() {
			Expect(store.PutSnapshot("m1", &storage.Snapshot{ID: "m1", State: api.StateInit})).
				To(Succeed())
			Expect(store.PutSnapshot("m1", &storage.Snapshot{ID: "m1", State: api.StateRun})).
				To(Succeed())
			found, ok := store.GetSnapshot("m1")
			Expect(ok).To(BeTrue())
			Expect(found.State).To(Equal(api.StateRun))
		})
		It("rejects a nil snapshot", func() {
			Expect(store.PutSnapshot("m1", nil)).To(HaveOccurred())
		})
		It("misses an unknown machine", func() {
			_, ok := store.GetSnapshot("m9")
			Expect(ok).To(BeFalse())
		})
	})

	Context("for event outcomes", func() {
		It("stores and retrieves the diagnostic", func() {
			outcome := &api.Diagnostic{
				Kind:    api.TransitionAccepted,
				From:    api.StateInit,
				To:      api.StateRun,
				EventId: "evt-1",
			}
			Expect(store.AddEventOutcome("evt-1", outcome, storage.NeverExpire)).To(Succeed())

			found, ok := store.GetOutcomeForEvent("evt-1")
			Expect(ok).To(BeTrue())
			Expect(found.Kind).To(Equal(api.TransitionAccepted))
			Expect(found.To).To(Equal(api.StateRun))
		})
		It("rejects a nil outcome", func() {
			Expect(store.AddEventOutcome("evt-1", nil, storage.NeverExpire)).To(HaveOccurred())
		})
	})

	It("is always healthy", func() {
		Expect(store.Health()).To(Succeed())
		Expect(store.GetTimeout()).To(Equal(time.Duration(storage.NeverExpire)))
	})
})
