package main

import (
	"encoding/json"
	"fmt"
	"os"

	"xdao.co/ans104/internal/cli"
	"xdao.co/ans104/storage"
	"xdao.co/ans104/storage/bundleio"
	"xdao.co/ans104/storage/casconfig"
)

// bundle_import verifies a bundle and stores its valid items in the stores
// described by ANS104_STORE_CONFIG. Failed entries are logged and, when
// ANS104_QUARANTINE_CONFIG is set, stored there.
func main() {
	log := cli.Logger("bundle_import")
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: ANS104_STORE_CONFIG=<stores.json> bundle_import <bundle.bin>")
		os.Exit(2)
	}
	sdk, err := cli.SDK(log)
	if err != nil {
		cli.Fatal(log, 2, err, "configure")
	}
	cas, closeStore, err := openStore("ANS104_STORE_CONFIG")
	if err != nil {
		cli.Fatal(log, 2, err, "open store")
	}
	defer closeStore()

	opts := bundleio.ImportOptions{KeepBundle: os.Getenv("ANS104_KEEP_BUNDLE") == "1", Logger: log}
	if os.Getenv("ANS104_QUARANTINE_CONFIG") != "" {
		q, closeQ, err := openStore("ANS104_QUARANTINE_CONFIG")
		if err != nil {
			cli.Fatal(log, 2, err, "open quarantine")
		}
		defer closeQ()
		opts.Quarantine = q
	}

	f, err := os.Open(os.Args[1])
	if err != nil {
		cli.Fatal(log, 2, err, "open bundle")
	}
	defer f.Close()

	res, err := bundleio.Import(f, cas, sdk.Verifier(), opts)
	if err != nil {
		log.Error().Err(err).Msg("import")
		closeStore()
		os.Exit(1)
	}
	out, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		cli.Fatal(log, 2, err, "encode result")
	}
	fmt.Println(string(out))
}

func openStore(envVar string) (storage.CAS, func() error, error) {
	cfg, err := casconfig.LoadFile(os.Getenv(envVar))
	if err != nil {
		return nil, nil, fmt.Errorf("%s: %w", envVar, err)
	}
	return cfg.Open()
}
