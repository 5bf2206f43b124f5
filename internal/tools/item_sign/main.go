package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"xdao.co/ans104/ans104"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/internal/cli"
	"xdao.co/ans104/keys"
	"xdao.co/ans104/tags"
)

// signEnv is read from the environment so that key material never appears in
// the process argument list.
type signEnv struct {
	SignatureType string   `env:"ANS104_SIGNATURE_TYPE" envDefault:"ed25519"`
	Key           string   `env:"ANS104_KEY,required,unset"`
	Target        string   `env:"ANS104_TARGET"`
	Anchor        string   `env:"ANS104_ANCHOR"`
	Tags          []string `env:"ANS104_TAGS" envSeparator:";"`
}

func main() {
	log := cli.Logger("item_sign")
	if len(os.Args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: ANS104_KEY=<hex|base58> item_sign <data-file> <out.bin>")
		os.Exit(2)
	}
	var cfg signEnv
	if err := env.Parse(&cfg); err != nil {
		cli.Fatal(log, 2, fmt.Errorf("parse env: %w", err), "configure")
	}
	fields, err := buildFields(cfg)
	if err != nil {
		cli.Fatal(log, 2, err, "item fields")
	}
	if fields.Data, err = os.ReadFile(os.Args[1]); err != nil {
		cli.Fatal(log, 1, err, "read data")
	}

	sdk, err := cli.SDK(log)
	if err != nil {
		cli.Fatal(log, 2, err, "configure")
	}
	raw, err := sign(sdk, fields, cfg)
	if err != nil {
		cli.Fatal(log, 1, err, "sign")
	}
	if err := os.WriteFile(os.Args[2], raw, 0o644); err != nil {
		cli.Fatal(log, 1, err, "write item")
	}
	it, err := sdk.Codec().Parse(raw)
	if err != nil {
		cli.Fatal(log, 1, err, "reparse")
	}
	log.Info().Str("id", it.IDString()).Int("bytes", len(raw)).Str("scheme", cfg.SignatureType).Msg("item signed")
	fmt.Println(it.IDString())
}

// sign holds the decoded key only for the duration of the call.
func sign(sdk *ans104.SDK, fields dataitem.Fields, cfg signEnv) ([]byte, error) {
	key, err := keys.Parse(cfg.Key)
	if err != nil {
		return nil, err
	}
	defer keys.Wipe(key)
	return sdk.SignItem(fields, cfg.SignatureType, key)
}

func buildFields(cfg signEnv) (dataitem.Fields, error) {
	var f dataitem.Fields
	if cfg.Target != "" {
		t, err := dataitem.DecodeID(cfg.Target)
		if err != nil {
			return f, fmt.Errorf("target: %w", err)
		}
		f.Target = t
	}
	if cfg.Anchor != "" {
		f.Anchor = []byte(cfg.Anchor)
	}
	for _, kv := range cfg.Tags {
		name, value, ok := strings.Cut(kv, "=")
		if !ok {
			return f, fmt.Errorf("tag %q is not name=value", kv)
		}
		f.Tags = append(f.Tags, tags.Tag{Name: name, Value: value})
	}
	return f, nil
}
