// main is the entry point for the mlforensics CLI.
package main

import (
	"github.com/huangsam/mlforensics/cmd"
	"github.com/huangsam/mlforensics/internal/contract"
	"github.com/huangsam/mlforensics/internal/iocache"
)

func main() {
	defer iocache.CloseStores()
	defer func() { _ = contract.L().Sync() }()

	if err := cmd.Execute(); err != nil {
		iocache.CloseStores()
		contract.LogFatal("Error starting CLI", err)
	}
}
