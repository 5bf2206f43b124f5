package main

import (
	"encoding/json"
	"fmt"
	"os"

	"xdao.co/ans104/internal/cli"
)

// Exit codes: 0 every entry verified, 1 at least one entry failed or the
// header is unreadable, 2 usage or configuration error.
func main() {
	log := cli.Logger("bundle_verify")
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: bundle_verify <bundle.bin>")
		os.Exit(2)
	}
	b, err := os.ReadFile(os.Args[1])
	if err != nil {
		cli.Fatal(log, 2, err, "read bundle")
	}
	sdk, err := cli.SDK(log)
	if err != nil {
		cli.Fatal(log, 2, err, "configure")
	}

	rep := sdk.VerifyBundle(b)
	out, err := json.MarshalIndent(rep, "", "  ")
	if err != nil {
		cli.Fatal(log, 2, err, "encode report")
	}
	fmt.Println(string(out))
	if !rep.Valid() {
		log.Warn().Int("failed", len(rep.Failed())).Int("entries", rep.Count).Msg("bundle did not verify")
		os.Exit(1)
	}
}
