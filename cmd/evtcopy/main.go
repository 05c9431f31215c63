// Command evtcopy lists, validates, and filters/copies records between
// event-storage files (Section 6 CLI surface).
package main

import "os"

func main() {
	_ = newEvtcopyApp().Run(os.Args)
}
