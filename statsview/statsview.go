// Package statsview runs a local HTTP server offering runtime statistics
// of the interpreter process. Underlying functionality is provided by
// "github.com/go-echarts/statsview".
//
// After launch, graphical statistics are viewable at:
//
//	localhost:12608/debug/statsview
//
// And standard Go pprof statistics at:
//
//	localhost:12608/debug/pprof/
package statsview

import (
	"fmt"
	"io"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

const Address = "localhost:12608"
const url = "/debug/statsview"

// URL returns the statistics page of a server at addr.
func URL(addr string) string {
	return "http://" + addr + url
}

// Launch a new goroutine running the statsview at addr, or Address if addr
// is empty.
func Launch(output io.Writer, addr string) {
	if len(addr) == 0 {
		addr = Address
	}

	go func() {
		viewer.SetConfiguration(viewer.WithAddr(addr))
		mgr := statsview.New()
		mgr.Start()
	}()

	fmt.Fprintf(output, "stats server available at %s\n", URL(addr))
}
