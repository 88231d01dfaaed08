package sysarr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ehwlab/sysevo/sysarr"
)

var _ = Describe("FrameAddress", func() {
	It("should pack the address fields", func() {
		addr := sysarr.NewFrameAddress(2, 0, false, 0, 60, 34)
		Expect(uint32(addr)).To(Equal(uint32(2<<26 | 60<<7 | 34)))

		addr = sysarr.NewFrameAddress(2, 0, true, 1, 65, 26)
		Expect(uint32(addr)).To(Equal(uint32(2<<26 | 1<<22 | 1<<17 | 65<<7 | 26)))
	})
})

var _ = Describe("DefaultFrameTable", func() {
	var table sysarr.FrameTable

	BeforeEach(func() {
		table = sysarr.DefaultFrameTable()
	})

	It("should cover four array instances", func() {
		Expect(table.Instances()).To(Equal(4))
	})

	It("should give every column region a distinct address", func() {
		seen := make(map[sysarr.FrameAddress]bool)
		for arr := range table {
			for _, addr := range table[arr] {
				Expect(seen[addr]).To(BeFalse(), "duplicate address %#08x", uint32(addr))
				seen[addr] = true
			}
		}
	})

	It("should pair the two frame offsets of each column", func() {
		for arr := range table {
			for i := 0; i < sysarr.Columns; i += 2 {
				Expect(uint32(table[arr][i]) & 0x7F).To(Equal(uint32(34)))
				Expect(uint32(table[arr][i+1]) & 0x7F).To(Equal(uint32(26)))
				// Same physical column, different frame offset.
				Expect(uint32(table[arr][i]) &^ uint32(0x7F)).
					To(Equal(uint32(table[arr][i+1]) &^ uint32(0x7F)))
			}
		}
	})
})
