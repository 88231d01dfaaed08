package fabric_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/ehwlab/sysevo/fabric"
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

func testImage() []byte {
	img := make([]byte, sysarr.ImgSize)
	for i := range img {
		img[i] = byte(i*31 + i/sysarr.ImgWidth)
	}
	return img
}

var _ = Describe("System", func() {
	var (
		system     *fabric.System
		controller *icap.Controller
		codec      sysarr.Codec
		img        []byte
	)

	BeforeEach(func() {
		system = fabric.NewBuilder().
			WithEngine(sim.NewSerialEngine()).
			WithFreq(1 * sim.GHz).
			WithEvalDelay(4).
			Build("Fabric")
		controller = icap.NewController(system, system, sysarr.DefaultFrameTable())
		codec = sysarr.NewCodec(sysarr.DefaultGeometry())

		img = testImage()
		system.LoadInput(img)
		system.LoadReference(img)
	})

	It("should commit exactly the programmed words", func() {
		g := copyFilter(codec)
		controller.Program(&g, 0)
		for system.Busy() {
		}

		Expect(system.Committed(0)).To(Equal(g.Cfg))
	})

	It("should filter an exact copy through the copy filter", func() {
		g := copyFilter(codec)
		controller.Program(&g, 0)
		controller.Go(sysarr.CmdCompare(1))

		Expect(controller.Fitness(0)).To(Equal(uint32(0)))
	})

	It("should measure a constant filter against a dark reference", func() {
		g := copyFilter(codec)
		// Constant 255 in the PE feeding the readout.
		codec.Set(&g, sysarr.IdentityOut+1, sysarr.Width, 7)
		system.LoadReference(make([]byte, sysarr.ImgSize))

		controller.Program(&g, 0)
		controller.Go(sysarr.CmdCompare(1))

		Expect(controller.Fitness(0)).To(Equal(uint32(255 * sysarr.ImgSize)))
	})

	It("should store array 0's output on a filter command", func() {
		g := copyFilter(codec)
		controller.Program(&g, 0)
		controller.Go(sysarr.CmdCompare(1) | sysarr.CmdFilter)

		Expect(system.Output()).To(Equal(img))
	})

	It("should evaluate selected arrays independently", func() {
		identity := copyFilter(codec)
		bright := copyFilter(codec)
		codec.Set(&bright, sysarr.IdentityOut+1, sysarr.Width, 7)

		controller.Program(&identity, 0)
		controller.Program(&bright, 1)
		controller.Go(sysarr.CmdCompare(2))

		Expect(controller.Fitness(0)).To(Equal(uint32(0)))
		Expect(controller.Fitness(1)).ToNot(Equal(uint32(0)))
	})

	It("should panic on an unmapped frame address", func() {
		Expect(func() {
			system.Commit(sysarr.NewFrameAddress(2, 0, false, 3, 1, 34))
		}).To(Panic())
	})

	It("should panic on a wrongly sized image", func() {
		Expect(func() { system.LoadInput(make([]byte, 16)) }).To(Panic())
		Expect(func() { system.LoadReference(make([]byte, 16)) }).To(Panic())
	})
})
