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
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/machine"
)

var _ = Describe("Configurations", func() {

	Context("when well defined", func() {
		var cfg *machine.Configuration

		BeforeEach(func() {
			cfg = testConfiguration()
		})

		It("validates without errors", func() {
			Expect(machine.CheckValid(cfg)).To(Succeed())
		})
		It("computes its version ID", func() {
			Expect(cfg.VersionID()).To(Equal("orders:v2"))
		})
		It("knows its states", func() {
			Expect(cfg.HasState(api.StateRun)).To(BeTrue())
			Expect(cfg.HasState(api.StateSleep)).To(BeFalse())
		})
		It("derives the legal-transition table", func() {
			table := cfg.Table()
			Expect(table.Allows(api.StateInit, api.StateRun)).To(BeTrue())
			Expect(table.Allows(api.StateInit, api.StateEnd)).To(BeFalse())
			Expect(table.Terminal(api.StateEnd)).To(BeTrue())
			Expect(table.Terminal(api.StateRun)).To(BeFalse())
		})
		It("derives the decision table", func() {
			rules := cfg.Rules()
			Expect(rules[machine.RuleKey{From: api.StateInit, Command: api.CmdStart}]).
				To(Equal(api.StateRun))
			_, ok := rules[machine.RuleKey{From: api.StateInit, Command: api.CmdHalt}]
			Expect(ok).To(BeFalse())
		})
		It("derives per-state successor edges", func() {
			edges := cfg.Edges(api.StateRun)
			Expect(edges).To(HaveLen(2))
			Expect(edges[api.CmdHalt]).To(Equal(api.StateEnd))
			Expect(cfg.Edges(api.StateEnd)).To(BeEmpty())
		})
	})

	Context("when ill defined", func() {
		It("fails without a name", func() {
			cfg := testConfiguration()
			cfg.Name = ""
			Expect(machine.CheckValid(cfg)).To(MatchError(machine.MissingNameConfigurationError))
		})
		It("fails without states", func() {
			cfg := testConfiguration()
			cfg.States = nil
			Expect(machine.CheckValid(cfg)).To(MatchError(machine.MissingStatesConfigurationError))
		})
		It("fails without a starting state", func() {
			cfg := testConfiguration()
			cfg.StartingState = ""
			Expect(machine.CheckValid(cfg)).To(
				MatchError(machine.EmptyStartingStateConfigurationError))
		})
		It("fails when the starting state is not one of the states", func() {
			cfg := testConfiguration()
			cfg.StartingState = api.StateSleep
			Expect(machine.CheckValid(cfg)).To(
				MatchError(machine.MismatchStartingStateConfigurationError))
		})
		It("fails on an unknown identity", func() {
			cfg := testConfiguration()
			cfg.States = append(cfg.States, "warp")
			Expect(machine.CheckValid(cfg)).To(HaveOccurred())
		})
		It("fails on an unknown command", func() {
			cfg := testConfiguration()
			cfg.Transitions = append(cfg.Transitions,
				machine.Transition{From: api.StateInit, To: api.StateRun, Event: "fly"})
			Expect(machine.CheckValid(cfg)).To(HaveOccurred())
		})
		It("fails on a state no transition uses", func() {
			cfg := testConfiguration()
			cfg.States = append(cfg.States, api.StateIdle)
			Expect(machine.CheckValid(cfg)).To(HaveOccurred())
		})
	})

	Context("when read from YAML", func() {
		var dir string

		BeforeEach(func() {
			var err error
			dir, err = os.MkdirTemp("", "config")
			Expect(err).ToNot(HaveOccurred())
		})
		AfterEach(func() {
			os.RemoveAll(dir)
		})

		It("parses a valid file", func() {
			path := filepath.Join(dir, "orders.yaml")
			Expect(os.WriteFile(path, []byte(`
name: orders
version: v2
starting_state: init
states: [init, run, end]
transitions:
  - { from: init, to: run, event: start }
  - { from: run, to: end, event: halt }
`), 0644)).To(Succeed())

			cfg, err := machine.FromFile(path)
			Expect(err).ToNot(HaveOccurred())
			Expect(cfg.VersionID()).To(Equal("orders:v2"))
			Expect(cfg.StartingState).To(Equal(api.StateInit))
			Expect(cfg.Transitions).To(HaveLen(2))
		})
		It("rejects an invalid file", func() {
			path := filepath.Join(dir, "bad.yaml")
			Expect(os.WriteFile(path, []byte(`
name: orders
starting_state: init
states: []
`), 0644)).To(Succeed())

			_, err := machine.FromFile(path)
			Expect(err).To(HaveOccurred())
		})
		It("fails on a missing file", func() {
			_, err := machine.FromFile(filepath.Join(dir, "nope.yaml"))
			Expect(err).To(HaveOccurred())
		})
	})
})
