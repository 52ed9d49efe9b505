// cmd/cli/main.go
package main

import (
	"os"

	"github.com/Annany2002/nebula-nlsql/internal/cliapp"
	"github.com/Annany2002/nebula-nlsql/internal/logger"
)

var (
	customLog = logger.NewLogger()
)

func main() {
	if err := cliapp.NewApp(cliapp.DefaultRuntime()).Run(os.Args); err != nil {
		customLog.Fatal(err)
	}
}
