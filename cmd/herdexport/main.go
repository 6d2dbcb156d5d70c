// Command herdexport renders herd records to CSV or XLSX files and
// classifies sale dates from the command line.
//
//	herdexport export --in records.json --name herd --columns tag:Tag,weight:Weight --out ./exports
//	herdexport export --in - --name herd --stdout < records.json
//	herdexport countdown --target 2026-11-02 --now 2026-10-18
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
