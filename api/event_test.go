/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package api_test

import (
	"encoding/json"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/fsm-refmodel/api"
)

var _ = Describe("Stimulus Events", func() {

	Context("when created", func() {
		It("carries a unique ID and a timestamp", func() {
			evt := api.NewStimulusEvent(api.CmdStart)
			Expect(evt.EventId).ToNot(BeEmpty())
			Expect(evt.Timestamp).ToNot(BeZero())
			Expect(evt.Command).To(Equal(api.CmdStart))

			other := api.NewStimulusEvent(api.CmdStart)
			Expect(other.EventId).ToNot(Equal(evt.EventId))
		})
		It("can carry an opaque payload", func() {
			evt := api.NewStimulusEventWithPayload(api.CmdStop, map[string]string{"reason": "test"})
			Expect(evt.Payload).ToNot(BeNil())
		})
	})

	Context("when partially filled", func() {
		It("is completed by UpdateEvent", func() {
			evt := api.StimulusEvent{Command: api.CmdWake}
			api.UpdateEvent(&evt)
			Expect(evt.EventId).ToNot(BeEmpty())
			Expect(evt.Timestamp).ToNot(BeZero())
		})
		It("preserves an existing ID", func() {
			evt := api.StimulusEvent{EventId: "fixed-id", Command: api.CmdWake}
			api.UpdateEvent(&evt)
			Expect(evt.EventId).To(Equal("fixed-id"))
		})
	})

	Context("when serialized", func() {
		It("round-trips as JSON", func() {
			evt := api.NewStimulusEvent(api.CmdHalt)
			var decoded api.StimulusEvent
			Expect(json.Unmarshal([]byte(evt.String()), &decoded)).To(Succeed())
			Expect(decoded.EventId).To(Equal(evt.EventId))
			Expect(decoded.Command).To(Equal(api.CmdHalt))
		})
	})
})

var _ = Describe("Identities and Commands", func() {
	It("recognizes the known identities", func() {
		for _, id := range api.KnownIdentities {
			Expect(id.Known()).To(BeTrue())
		}
	})
	It("rejects reserved and unknown identities", func() {
		Expect(api.StateError.Known()).To(BeFalse())
		Expect(api.StateNone.Known()).To(BeFalse())
		Expect(api.StateIdentity("bogus").Known()).To(BeFalse())
	})
	It("recognizes the known commands", func() {
		for _, cmd := range api.KnownCommands {
			Expect(cmd.Known()).To(BeTrue())
		}
		Expect(api.Command("fly").Known()).To(BeFalse())
	})
})
