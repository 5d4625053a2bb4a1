package main

import (
	"os"

	"github.com/hcanalytics/hdw-app/hdw/hdwcli"
	"github.com/hcanalytics/hdw-app/log"
)

func main() {
	if err := hdwcli.GetApp().Run(os.Args); err != nil {
		log.Pipeline.Fatal(err)
	}
}
