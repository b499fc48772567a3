// Command diaglog inspects and administers diagnostic log capture: it reads the
// durable warn/error subset, queries a running debug server, and runs a demo
// service in development mode.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
