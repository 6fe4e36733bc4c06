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
	"fmt"
	"sync"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/massenz/fsm-refmodel/api"
)

var _ = Describe("Diagnostics", func() {

	var diags *api.DiagnosticLog

	BeforeEach(func() {
		diags = api.NewDiagnosticLog()
	})

	Context("when empty", func() {
		It("has no last record", func() {
			_, ok := diags.Last()
			Expect(ok).To(BeFalse())
			Expect(diags.Len()).To(BeZero())
			Expect(diags.Snapshot()).To(BeEmpty())
		})
	})

	Context("with records appended", func() {
		BeforeEach(func() {
			diags.Append(api.Diagnostic{Kind: api.TransitionAccepted, EventId: "e1"})
			diags.Append(api.Diagnostic{Kind: api.InvalidTransitionAttempted, EventId: "e2"})
			diags.Append(api.Diagnostic{Kind: api.TransitionAccepted, EventId: "e3"})
		})
		It("preserves append order", func() {
			records := diags.Snapshot()
			Expect(records).To(HaveLen(3))
			Expect(records[0].EventId).To(Equal("e1"))
			Expect(records[2].EventId).To(Equal("e3"))
		})
		It("returns the most recent record", func() {
			last, ok := diags.Last()
			Expect(ok).To(BeTrue())
			Expect(last.EventId).To(Equal("e3"))
		})
		It("counts records by kind", func() {
			Expect(diags.Count(api.TransitionAccepted)).To(Equal(2))
			Expect(diags.Count(api.InvalidTransitionAttempted)).To(Equal(1))
			Expect(diags.Count(api.AlreadyTerminal)).To(BeZero())
		})
		It("hands out copies, not the backing slice", func() {
			records := diags.Snapshot()
			records[0].EventId = "mutated"
			fresh := diags.Snapshot()
			Expect(fresh[0].EventId).To(Equal("e1"))
		})
	})

	Context("under concurrent appends", func() {
		It("loses no records", func() {
			var wg sync.WaitGroup
			for i := 0; i < 10; i++ {
				wg.Add(1)
				go func(n int) {
					defer wg.Done()
					for j := 0; j < 100; j++ {
						diags.Append(api.Diagnostic{
							Kind:    api.TransitionAccepted,
							EventId: fmt.Sprintf("%d-%d", n, j),
						})
					}
				}(i)
			}
			wg.Wait()
			Expect(diags.Len()).To(Equal(1000))
		})
	})
})
