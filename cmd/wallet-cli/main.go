package main

import "hmy-wallet/cmd/wallet-cli/cmd"

func main() {
	cmd.Execute()
}
