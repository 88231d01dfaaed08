package icap_test

import (
	"github.com/golang/mock/gomock"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/ehwlab/sysevo/icap"
	"github.com/ehwlab/sysevo/sysarr"
)

func copyFilter(codec sysarr.Codec) sysarr.Genome {
	geo := codec.Geometry()
	var g sysarr.Genome
	g.Reset()
	for i := 0; i <= sysarr.Height; i++ {
		for j := 0; j <= sysarr.Width; j++ {
			switch {
			case i == 0 && j == 0:
				codec.Set(&g, 0, 0, sysarr.IdentityOut)
			case i == 0 || j == 0:
				codec.Set(&g, i, j, geo.IdentityTap())
			default:
				codec.Set(&g, i, j, geo.IdentityPE())
			}
		}
	}
	return g
}

var _ = Describe("Programmer", func() {
	var (
		mockCtrl   *gomock.Controller
		port       *MockReconfigPort
		frames     sysarr.FrameTable
		programmer *icap.Programmer
		codec      sysarr.Codec
		g          sysarr.Genome
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		port = NewMockReconfigPort(mockCtrl)
		frames = sysarr.DefaultFrameTable()
		programmer = icap.NewProgrammer(port, frames)
		codec = sysarr.NewCodec(sysarr.DefaultGeometry())
		g = copyFilter(codec)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should write every column on the first program", func() {
		port.EXPECT().Busy().Return(false).Times(sysarr.Columns)
		port.EXPECT().WriteData(gomock.Any()).Times(sysarr.Columns)
		port.EXPECT().Commit(gomock.Any()).Times(sysarr.Columns)

		Expect(programmer.Program(&g, 0)).To(Equal(sysarr.Columns))
	})

	It("should skip every column on an identical reprogram", func() {
		port.EXPECT().Busy().Return(false).AnyTimes()
		port.EXPECT().WriteData(gomock.Any()).AnyTimes()
		port.EXPECT().Commit(gomock.Any()).AnyTimes()
		programmer.Program(&g, 0)

		Expect(programmer.Program(&g, 0)).To(Equal(0))
	})

	It("should rewrite only the changed column", func() {
		port.EXPECT().Busy().Return(false).AnyTimes()
		port.EXPECT().WriteData(gomock.Any()).Times(sysarr.Columns)
		port.EXPECT().Commit(gomock.Any()).Times(sysarr.Columns)
		programmer.Program(&g, 0)

		codec.Set(&g, 2, 3, 7)
		base := sysarr.WordsPerColumn * 3
		words := [sysarr.WordsPerColumn]uint32{g.Cfg[base], g.Cfg[base+1], g.Cfg[base+2]}

		gomock.InOrder(
			port.EXPECT().WriteData(words),
			port.EXPECT().Commit(frames[0][3]),
		)
		Expect(programmer.Program(&g, 0)).To(Equal(1))
	})

	It("should poll the port idle again when it reports busy", func() {
		// A genome differing from the sentinel in exactly one column, with
		// the port busy twice before going idle.
		var oneCol sysarr.Genome
		oneCol.Reset()
		codec.Set(&oneCol, 1, 1, 0)

		gomock.InOrder(
			port.EXPECT().Busy().Return(true),
			port.EXPECT().Busy().Return(true),
			port.EXPECT().Busy().Return(false),
			port.EXPECT().WriteData(gomock.Any()),
			port.EXPECT().Commit(frames[0][1]),
		)
		Expect(programmer.Program(&oneCol, 0)).To(Equal(1))
	})

	It("should keep per-instance caches independent", func() {
		port.EXPECT().Busy().Return(false).AnyTimes()
		port.EXPECT().WriteData(gomock.Any()).Times(2 * sysarr.Columns)
		port.EXPECT().Commit(gomock.Any()).Times(2 * sysarr.Columns)

		Expect(programmer.Program(&g, 0)).To(Equal(sysarr.Columns))
		Expect(programmer.Program(&g, 1)).To(Equal(sysarr.Columns))
		Expect(programmer.Program(&g, 0)).To(Equal(0))
		Expect(programmer.Program(&g, 1)).To(Equal(0))
	})

	It("should panic on an out-of-range instance", func() {
		Expect(func() { programmer.Program(&g, frames.Instances()) }).To(Panic())
	})

	It("should report the instance count", func() {
		Expect(programmer.Instances()).To(Equal(frames.Instances()))
	})
})
