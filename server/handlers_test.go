/*
 * Copyright (c) 2023 AlertAvert.com.  All rights reserved.
 *
 * Licensed under the Apache License, Version 2.0
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Author: Marco Massenzio (marco@alertavert.com)
 */

package server_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"time"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	slf4go "github.com/massenz/slf4go/logging"

	"github.com/massenz/fsm-refmodel/api"
	"github.com/massenz/fsm-refmodel/device"
	"github.com/massenz/fsm-refmodel/machine"
	"github.com/massenz/fsm-refmodel/server"
	"github.com/massenz/fsm-refmodel/storage"
)

var _ = Describe("API Handlers", func() {

	var (
		svr    *httptest.Server
		store  storage.StoreManager
		fleet  *machine.Fleet
		events chan api.EventRequest
	)

	BeforeEach(func() {
		store = storage.NewInMemoryStore()
		store.SetLogLevel(slf4go.NONE)
		fleet = machine.NewFleet()
		events = make(chan api.EventRequest, 10)

		ctx, err := device.Assemble("dev-1", device.DefaultConfiguration(), device.Mediated)
		Expect(err).ToNot(HaveOccurred())
		Expect(fleet.Add(ctx)).To(Succeed())

		server.SetStore(store)
		server.SetFleet(fleet)
		server.SetEventsChannel(events)
		svr = newTestServer()
	})

	AfterEach(func() {
		svr.Close()
	})

	Context("on the health endpoint", func() {
		It("reports UP with a healthy store", func() {
			res, err := http.Get(svr.URL + server.HealthEndpoint)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(http.StatusOK))
			Expect(res.Header.Get(server.ContentType)).To(
				ContainSubstring(server.ApplicationJson))
		})
	})

	Context("on the metrics endpoint", func() {
		It("exposes the Prometheus registry", func() {
			res, err := http.Get(svr.URL + server.MetricsEndpoint)
			Expect(err).ToNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(http.StatusOK))
		})
	})

	Context("when fetching a machine", func() {
		It("returns the diagnostics of a live machine", func() {
			ctx, _ := fleet.Lookup("dev-1")
			Expect(ctx.Handle(api.NewStimulusEvent(api.CmdStart))).To(Succeed())

			res, err := http.Get(svr.URL + server.MachinesEndpoint + "/dev-1")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(http.StatusOK))

			var body server.MachineResponse
			Expect(json.NewDecoder(res.Body).Decode(&body)).To(Succeed())
			Expect(body.ID).To(Equal("dev-1"))
			Expect(body.Diagnostics).To(HaveLen(1))
			Expect(body.Diagnostics[0].Kind).To(Equal(api.TransitionAccepted))
		})
		It("includes the stored snapshot when available", func() {
			Expect(store.PutSnapshot("dev-1", &storage.Snapshot{
				ID:        "dev-1",
				ConfigId:  "device:v1",
				State:     api.StateRun,
				Previous:  api.StateInit,
				UpdatedAt: time.Now(),
			})).To(Succeed())

			res, err := http.Get(svr.URL + server.MachinesEndpoint + "/dev-1")
			Expect(err).ToNot(HaveOccurred())

			var body server.MachineResponse
			Expect(json.NewDecoder(res.Body).Decode(&body)).To(Succeed())
			Expect(body.Snapshot).ToNot(BeNil())
			Expect(body.Snapshot.State).To(Equal(api.StateRun))
		})
		It("returns 404 for an unknown machine", func() {
			res, err := http.Get(svr.URL + server.MachinesEndpoint + "/dev-9")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Context("when posting an event", func() {
		post := func(machineId string, body any) *http.Response {
			data, err := json.Marshal(body)
			Expect(err).ToNot(HaveOccurred())
			res, err := http.Post(
				fmt.Sprintf("%s%s/%s/events", svr.URL, server.MachinesEndpoint, machineId),
				server.ApplicationJson, bytes.NewReader(data))
			Expect(err).ToNot(HaveOccurred())
			return res
		}

		It("accepts a valid command and enqueues the request", func() {
			res := post("dev-1", server.EventRequestBody{Command: "start"})
			Expect(res.StatusCode).To(Equal(http.StatusAccepted))

			var accepted server.EventAcceptedResponse
			Expect(json.NewDecoder(res.Body).Decode(&accepted)).To(Succeed())
			Expect(accepted.EventId).ToNot(BeEmpty())
			Expect(accepted.MachineId).To(Equal("dev-1"))
			Expect(res.Header.Get("Location")).To(
				Equal(server.EventsEndpoint + "/" + accepted.EventId + "/outcome"))

			var request api.EventRequest
			Eventually(events).Should(Receive(&request))
			Expect(request.MachineId).To(Equal("dev-1"))
			Expect(request.Event.EventId).To(Equal(accepted.EventId))
			Expect(request.Event.Command).To(Equal(api.CmdStart))
		})
		It("rejects an unknown command", func() {
			res := post("dev-1", server.EventRequestBody{Command: "fly"})
			Expect(res.StatusCode).To(Equal(http.StatusBadRequest))
		})
		It("returns 404 for an unknown machine", func() {
			res := post("dev-9", server.EventRequestBody{Command: "start"})
			Expect(res.StatusCode).To(Equal(http.StatusNotFound))
		})
	})

	Context("when fetching an event outcome", func() {
		It("returns the stored diagnostic", func() {
			Expect(store.AddEventOutcome("evt-1", &api.Diagnostic{
				Kind:    api.TransitionAccepted,
				From:    api.StateInit,
				To:      api.StateRun,
				EventId: "evt-1",
			}, storage.NeverExpire)).To(Succeed())

			res, err := http.Get(svr.URL + server.EventsEndpoint + "/evt-1/outcome")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(http.StatusOK))

			var body server.OutcomeResponse
			Expect(json.NewDecoder(res.Body).Decode(&body)).To(Succeed())
			Expect(body.EventId).To(Equal("evt-1"))
			Expect(body.Outcome.Kind).To(Equal(api.TransitionAccepted))
		})
		It("returns 404 for an unknown event", func() {
			res, err := http.Get(svr.URL + server.EventsEndpoint + "/evt-9/outcome")
			Expect(err).ToNot(HaveOccurred())
			Expect(res.StatusCode).To(Equal(http.StatusNotFound))
		})
	})
})
