// Package casconfig opens item stores from a JSON description.
package casconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"xdao.co/ans104/storage"
	"xdao.co/ans104/storage/boltcas"
	"xdao.co/ans104/storage/grpccas"
	"xdao.co/ans104/storage/localfs"
)

// Config describes one or more storage backends.
//
// WritePolicy values:
// - "first" (default): write only to the first backend; reads fall back in order
// - "all": write to all backends and require CID equality (see storage.ReplicatingCAS)
//
// Example:
//
//	{
//	  "write_policy": "all",
//	  "backends": [
//	    {"name":"localfs", "config":{"dir":"/var/lib/ans104/items"}},
//	    {"name":"bolt", "id":"index", "config":{"path":"/var/lib/ans104/items.db"}},
//	    {"name":"grpc", "config":{"target":"store.internal:7443", "timeout":"5s"}}
//	  ]
//	}
type Config struct {
	WritePolicy string          `json:"write_policy,omitempty"`
	Backends    []BackendConfig `json:"backends"`
}

type BackendConfig struct {
	// Name selects the backend kind: see Backends.
	Name string `json:"name"`
	// ID is an optional stable alias used in per-backend CID maps. If empty,
	// Name is used.
	ID     string            `json:"id,omitempty"`
	Config map[string]string `json:"config,omitempty"`
}

func (b BackendConfig) id() string {
	if b.ID != "" {
		return b.ID
	}
	return b.Name
}

// Opener constructs one backend from its config map and returns an optional
// close function.
type Opener func(cfg map[string]string) (storage.CAS, func() error, error)

var openers = map[string]Opener{
	"localfs": openLocalFS,
	"bolt":    openBolt,
	"grpc":    openGRPC,
}

// Backends returns the known backend names in sorted order.
func Backends() []string {
	out := make([]string, 0, len(openers))
	for name := range openers {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

func LoadFile(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, errors.New("casconfig: empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := json.Unmarshal(b, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	if len(c.Backends) == 0 {
		return errors.New("casconfig: at least one backend is required")
	}
	seen := make(map[string]struct{}, len(c.Backends))
	for _, b := range c.Backends {
		if b.Name == "" {
			return errors.New("casconfig: backend name is required")
		}
		if _, ok := openers[b.Name]; !ok {
			return fmt.Errorf("casconfig: unknown backend %q (known: %s)", b.Name, strings.Join(Backends(), ", "))
		}
		if _, ok := seen[b.id()]; ok {
			return fmt.Errorf("casconfig: duplicate backend id %q", b.id())
		}
		seen[b.id()] = struct{}{}
	}
	switch c.WritePolicy {
	case "", "first", "all":
		return nil
	default:
		return fmt.Errorf("casconfig: invalid write_policy %q", c.WritePolicy)
	}
}

// Open opens every backend in order and combines them per WritePolicy. The
// returned close function closes backends in reverse order.
func (c Config) Open() (storage.CAS, func() error, error) {
	if err := c.Validate(); err != nil {
		return nil, nil, err
	}

	named := make([]storage.NamedCAS, 0, len(c.Backends))
	closers := make([]func() error, 0, len(c.Backends))
	closeAll := func() error {
		var firstErr error
		for i := len(closers) - 1; i >= 0; i-- {
			if err := closers[i](); err != nil && firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	for _, b := range c.Backends {
		cas, closeFn, err := openers[b.Name](b.Config)
		if err != nil {
			_ = closeAll()
			return nil, nil, fmt.Errorf("casconfig: open %q: %w", b.id(), err)
		}
		named = append(named, storage.NamedCAS{Name: b.id(), CAS: cas})
		if closeFn != nil {
			closers = append(closers, closeFn)
		}
	}

	if len(named) == 1 {
		return named[0].CAS, closeAll, nil
	}
	if c.WritePolicy == "all" {
		return storage.ReplicatingCAS{Backends: named}, closeAll, nil
	}
	adapters := make([]storage.CAS, 0, len(named))
	for _, n := range named {
		adapters = append(adapters, n.CAS)
	}
	return storage.MultiCAS{Adapters: adapters}, closeAll, nil
}

func openLocalFS(cfg map[string]string) (storage.CAS, func() error, error) {
	cas, err := localfs.New(cfg["dir"])
	if err != nil {
		return nil, nil, err
	}
	return cas, nil, nil
}

func openBolt(cfg map[string]string) (storage.CAS, func() error, error) {
	cas, err := boltcas.Open(cfg["path"])
	if err != nil {
		return nil, nil, err
	}
	return cas, cas.Close, nil
}

func openGRPC(cfg map[string]string) (storage.CAS, func() error, error) {
	target := strings.TrimSpace(cfg["target"])
	if target == "" {
		return nil, nil, errors.New("missing target")
	}
	var opts grpccas.DialOptions
	if v := cfg["max-msg-bytes"]; v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, nil, fmt.Errorf("invalid max-msg-bytes %q", v)
		}
		opts.MaxMsgBytes = n
	}
	var timeout time.Duration
	if v := cfg["timeout"]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid timeout %q: %w", v, err)
		}
		timeout = d
	}
	client, err := grpccas.Dial(target, opts)
	if err != nil {
		return nil, nil, err
	}
	client.Timeout = timeout
	return client, client.Close, nil
}
