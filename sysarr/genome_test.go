package sysarr_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ehwlab/sysevo/sysarr"
)

var _ = Describe("Codec", func() {
	var (
		codec sysarr.Codec
		g     sysarr.Genome
	)

	BeforeEach(func() {
		codec = sysarr.NewCodec(sysarr.DefaultGeometry())
		g.Reset()
	})

	It("should classify gene coordinates", func() {
		Expect(codec.KindAt(0, 0)).To(Equal(sysarr.GeneOutMux))
		Expect(codec.KindAt(0, 3)).To(Equal(sysarr.GeneInMux))
		Expect(codec.KindAt(5, 0)).To(Equal(sysarr.GeneInMux))
		Expect(codec.KindAt(1, 1)).To(Equal(sysarr.GenePE))
		Expect(codec.KindAt(sysarr.Height, sysarr.Width)).To(Equal(sysarr.GenePE))
	})

	It("should round-trip every legal coordinate and value", func() {
		for row := 0; row <= sysarr.Height; row++ {
			for col := 0; col <= sysarr.Width; col++ {
				legal := codec.Legal(codec.KindAt(row, col))
				for v := 0; v < legal; v++ {
					codec.Set(&g, row, col, v)
					Expect(codec.At(&g, row, col)).To(Equal(v),
						"gene (%d, %d) = %d", row, col, v)
				}
			}
		}
	})

	It("should keep neighboring genes intact on write", func() {
		for row := 0; row <= sysarr.Height; row++ {
			for col := 1; col <= sysarr.Width; col++ {
				codec.Set(&g, row, col, 1)
			}
		}
		codec.Set(&g, 4, 4, 7)

		for row := 0; row <= sysarr.Height; row++ {
			for col := 1; col <= sysarr.Width; col++ {
				want := 1
				if row == 4 && col == 4 {
					want = 7
				}
				Expect(codec.At(&g, row, col)).To(Equal(want))
			}
		}
	})

	It("should report a missing readout marker as -1", func() {
		Expect(codec.At(&g, 0, 0)).To(Equal(-1))
	})

	It("should tag exactly one east-column row with the readout marker", func() {
		geo := codec.Geometry()
		codec.Set(&g, 0, 0, 5)
		Expect(codec.At(&g, 0, 0)).To(Equal(5))

		// Moving the readout must untag the old row.
		codec.Set(&g, 0, 0, 2)
		Expect(codec.At(&g, 0, 0)).To(Equal(2))

		woffs := []int{0, 0, 0, 0, 1, 1, 1, 1, 2}
		shift := []uint{0, 8, 16, 24, 0, 8, 16, 24, 0}
		marker := uint32(geo.FunctionCount() + geo.InMuxCount() + 1)
		tagged := 0
		for ii := 0; ii < sysarr.Height; ii++ {
			w := g.Cfg[woffs[ii+1]+sysarr.WordsPerColumn*(sysarr.Width+1)]
			if (w>>shift[ii+1])&sysarr.GeneMask == marker {
				tagged++
			}
		}
		Expect(tagged).To(Equal(1))
	})

	It("should store input-mux values offset past the function table", func() {
		geo := codec.Geometry()
		codec.Set(&g, 0, 1, 0)
		raw := g.Cfg[sysarr.WordsPerColumn*1] & sysarr.GeneMask
		Expect(int(raw)).To(Equal(geo.FunctionCount()))
	})

	It("should panic on an out-of-range coordinate", func() {
		Expect(func() { codec.Set(&g, sysarr.Height+1, 0, 0) }).To(Panic())
		Expect(func() { codec.Set(&g, 0, sysarr.Width+1, 0) }).To(Panic())
		Expect(func() { codec.At(&g, -1, 0) }).To(Panic())
	})

	It("should panic on an out-of-range value", func() {
		geo := codec.Geometry()
		Expect(func() { codec.Set(&g, 0, 0, sysarr.Height) }).To(Panic())
		Expect(func() { codec.Set(&g, 0, 1, geo.InMuxCount()) }).To(Panic())
		Expect(func() { codec.Set(&g, 1, 1, geo.FunctionCount()) }).To(Panic())
		Expect(func() { codec.Set(&g, 1, 1, -1) }).To(Panic())
	})

	It("should leave a reset genome all ones", func() {
		for _, w := range g.Cfg {
			Expect(w).To(Equal(uint32(0xFFFFFFFF)))
		}
	})
})

var _ = Describe("Geometry", func() {
	It("should size the default geometry", func() {
		geo := sysarr.DefaultGeometry()
		Expect(geo.FunctionCount()).To(Equal(16))
		Expect(geo.InMuxCount()).To(Equal(9))
		Expect(geo.LUTCount()).To(Equal(16 + 9 + sysarr.OutMuxCount))
		Expect(geo.IdentityPE()).To(Equal(11))
		Expect(geo.IdentityTap()).To(Equal(4))
	})

	It("should size the large geometry", func() {
		geo := sysarr.Geometry{Functions: sysarr.LargeSet, Window: 5}
		Expect(geo.FunctionCount()).To(Equal(19))
		Expect(geo.InMuxCount()).To(Equal(25))
		Expect(geo.IdentityPE()).To(Equal(1))
		Expect(geo.IdentityTap()).To(Equal(12))
	})
})
