package main

import (
	"github.com/finalitylabs/qcert/cmd/bootstrap/cmd"
)

func main() {
	cmd.Execute()
}
