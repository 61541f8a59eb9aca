// Command yadis performs Yadis and XRI service discovery from the command line.
package main

import (
	"fmt"
	"os"

	"github.com/sirosfoundation/go-yadis/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
