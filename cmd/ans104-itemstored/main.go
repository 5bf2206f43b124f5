// Command ans104-itemstored serves an item store over gRPC. Items sent with
// PutItem are verified before they are stored and indexed by id.
//
// Configuration is read from the environment:
//
//	ANS104_LISTEN          listen address (default 127.0.0.1:7777)
//	ANS104_STORE_CONFIG    storage backends, see storage/casconfig (required)
//	ANS104_CONFIG          optional SDK config file; ANS104_MAX_TAGS etc. override it
//	ANS104_MAX_MSG_BYTES   max gRPC message size (default 64 MiB)
//	ANS104_LOG_LEVEL       zerolog level (default info)
package main

import (
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"google.golang.org/grpc"

	"xdao.co/ans104/internal/cli"
	"xdao.co/ans104/storage/casconfig"
	"xdao.co/ans104/storage/grpccas"
)

type daemonConfig struct {
	Listen      string `env:"ANS104_LISTEN" envDefault:"127.0.0.1:7777"`
	StoreConfig string `env:"ANS104_STORE_CONFIG,required"`
	MaxMsgBytes int    `env:"ANS104_MAX_MSG_BYTES" envDefault:"67108864"`
}

func main() {
	log := cli.Logger("ans104-itemstored")

	var cfg daemonConfig
	if err := env.Parse(&cfg); err != nil {
		cli.Fatal(log, 2, fmt.Errorf("parse env: %w", err), "configure")
	}
	sdk, err := cli.SDK(log)
	if err != nil {
		cli.Fatal(log, 2, err, "configure")
	}
	storeCfg, err := casconfig.LoadFile(cfg.StoreConfig)
	if err != nil {
		cli.Fatal(log, 2, err, "store config")
	}
	cas, closeFn, err := storeCfg.Open()
	if err != nil {
		cli.Fatal(log, 2, err, "open store")
	}
	defer closeFn()

	lis, err := net.Listen("tcp", cfg.Listen)
	if err != nil {
		log.Error().Err(err).Msg("listen")
		closeFn()
		os.Exit(1)
	}

	s := grpc.NewServer(grpc.MaxRecvMsgSize(cfg.MaxMsgBytes), grpc.MaxSendMsgSize(cfg.MaxMsgBytes))
	grpccas.RegisterItemStoreServer(s, &grpccas.Server{CAS: cas, Verifier: sdk.Verifier(), Logger: log})

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sig
		log.Info().Msg("shutting down")
		s.GracefulStop()
	}()

	log.Info().Str("addr", lis.Addr().String()).Int("backends", len(storeCfg.Backends)).Msg("listening")
	if err := s.Serve(lis); err != nil {
		log.Error().Err(err).Msg("serve")
		closeFn()
		os.Exit(1)
	}
}
