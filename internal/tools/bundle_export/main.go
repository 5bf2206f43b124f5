package main

import (
	"bytes"
	"fmt"
	"os"

	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/internal/cli"
	"xdao.co/ans104/storage/bundleio"
	"xdao.co/ans104/storage/casconfig"
)

// bundle_export packs stored items, named by base64url item id, into one
// bundle file.
func main() {
	log := cli.Logger("bundle_export")
	if len(os.Args) < 3 {
		fmt.Fprintln(os.Stderr, "usage: ANS104_STORE_CONFIG=<stores.json> bundle_export <out.bin> <item-id>...")
		os.Exit(2)
	}
	ids := make([][]byte, 0, len(os.Args)-2)
	for _, s := range os.Args[2:] {
		id, err := dataitem.DecodeID(s)
		if err != nil {
			cli.Fatal(log, 2, err, "decode item id")
		}
		ids = append(ids, id)
	}

	sdk, err := cli.SDK(log)
	if err != nil {
		cli.Fatal(log, 2, err, "configure")
	}
	cfg, err := casconfig.LoadFile(os.Getenv("ANS104_STORE_CONFIG"))
	if err != nil {
		cli.Fatal(log, 2, err, "store config")
	}
	cas, closeFn, err := cfg.Open()
	if err != nil {
		cli.Fatal(log, 2, err, "open store")
	}
	defer closeFn()

	var buf bytes.Buffer
	if err := bundleio.ExportItems(&buf, cas, sdk.Codec(), ids); err != nil {
		log.Error().Err(err).Msg("export")
		closeFn()
		os.Exit(1)
	}
	if err := os.WriteFile(os.Args[1], buf.Bytes(), 0o644); err != nil {
		cli.Fatal(log, 1, err, "write bundle")
	}
	log.Info().Int("items", len(ids)).Int("bytes", buf.Len()).Msg("bundle written")
}
