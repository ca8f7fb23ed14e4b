package main

import "github.com/settopay/setto-server-sdk-go/internal/cmd"

func main() {
	cmd.Execute()
}
