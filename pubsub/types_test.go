/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package pubsub_test

import (
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/pubsub"
)

var _ = Describe("Event Messages", func() {

	Context("when complete", func() {
		It("converts to a request, preserving the sender's values", func() {
			sent := time.Now().Add(-1 * time.Minute)
			msg := pubsub.EventMessage{
				Sender:         "test-sender",
				Destination:    "dev-1",
				EventId:        "evt-1",
				Command:        "start",
				EventTimestamp: sent,
			}
			request, err := msg.ToRequest()
			Expect(err).ToNot(HaveOccurred())
			Expect(request.MachineId).To(Equal("dev-1"))
			Expect(request.Event.EventId).To(Equal("evt-1"))
			Expect(request.Event.Command).To(Equal(api.CmdStart))
			Expect(request.Event.Timestamp).To(Equal(sent))
		})
	})

	Context("when partially filled", func() {
		It("generates the missing ID and timestamp", func() {
			msg := pubsub.EventMessage{Destination: "dev-1", Command: "stop"}
			request, err := msg.ToRequest()
			Expect(err).ToNot(HaveOccurred())
			Expect(request.Event.EventId).ToNot(BeEmpty())
			Expect(request.Event.Timestamp).ToNot(BeZero())
		})
	})

	Context("when malformed", func() {
		It("fails without a destination", func() {
			msg := pubsub.EventMessage{Command: "start"}
			_, err := msg.ToRequest()
			Expect(err).To(MatchError(api.MissingMachineError))
		})
		It("fails on an unknown command", func() {
			msg := pubsub.EventMessage{Destination: "dev-1", Command: "fly"}
			_, err := msg.ToRequest()
			Expect(err).To(MatchError(api.UnknownCommandError))
		})
	})
})
