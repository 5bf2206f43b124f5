package main

import (
	"fmt"
	"os"

	"xdao.co/ans104/internal/cli"
)

func main() {
	log := cli.Logger("bundle_ids")
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: bundle_ids <bundle.bin>")
		os.Exit(2)
	}
	b, err := os.ReadFile(os.Args[1])
	if err != nil {
		cli.Fatal(log, 1, err, "read bundle")
	}
	sdk, err := cli.SDK(log)
	if err != nil {
		cli.Fatal(log, 2, err, "configure")
	}
	ids, err := sdk.BundleIDs(b)
	if err != nil {
		cli.Fatal(log, 1, err, "read bundle header")
	}
	for _, id := range ids {
		fmt.Println(id)
	}
}
