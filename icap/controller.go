package icap

import "github.com/ehwlab/sysevo/sysarr"

// A Controller pairs a Programmer with the evaluation registers. It is the
// complete hardware handle the evolution engine works against.
type Controller struct {
	*Programmer
	eval sysarr.EvalControl
}

// NewController returns a controller over the two hardware ports.
func NewController(
	port sysarr.ReconfigPort,
	eval sysarr.EvalControl,
	frames sysarr.FrameTable,
) *Controller {
	return &Controller{
		Programmer: NewProgrammer(port, frames),
		eval:       eval,
	}
}

// Start launches filtering on the arrays selected by mode and returns
// without waiting. It first polls the reconfiguration port idle so no
// evaluation starts while a commit is still in flight. Until the matching
// Wait returns, the addressed fitness registers are undefined.
func (c *Controller) Start(mode uint32) {
	for c.port.Busy() {
	}
	c.eval.SetCtrl(mode)
}

// Wait blocks until every array addressed by the most recent Start has
// finished. A poll that never completes is a fatal hardware fault; no
// timeout is modeled here.
func (c *Controller) Wait() {
	for c.eval.Ctrl() != 0 {
	}
}

// Go filters and waits for the result.
func (c *Controller) Go(mode uint32) {
	c.Start(mode)
	c.Wait()
}

// Fitness reads one array's fitness register: the sum of absolute
// differences against the reference image. Lower is better; 0 is exact.
func (c *Controller) Fitness(arr int) uint32 {
	return c.eval.Fitness(arr)
}
