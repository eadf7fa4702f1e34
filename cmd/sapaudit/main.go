package main

import "github.com/polcn/sap-log-analyzer2/internal/cli"

func main() {
	cli.Execute()
}
