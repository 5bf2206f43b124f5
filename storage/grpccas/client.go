// Package grpccas serves and consumes a storage.CAS over gRPC. The service
// stores raw blobs by CID and accepts verified items through PutItem, which
// indexes them by item id on the server.
package grpccas

import (
	"context"
	"time"

	"github.com/ipfs/go-cid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ans104/cidutil"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/storage"
)

// Client implements storage.CAS, storage.ItemLocator and storage.ItemPutter
// over the ItemStore service.
type Client struct {
	cc     *grpc.ClientConn
	client ItemStoreClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration
}

var (
	_ storage.CAS         = (*Client)(nil)
	_ storage.ItemLocator = (*Client)(nil)
	_ storage.ItemPutter  = (*Client)(nil)
)

type DialOptions struct {
	// MaxMsgBytes sets both send/recv max sizes when non-zero. Bundles and
	// large items usually exceed the 4 MiB gRPC default.
	MaxMsgBytes int

	// Extra is appended to the dial options, e.g. a context dialer in tests.
	Extra []grpc.DialOption
}

// Dial creates a client for target. Connections are established lazily.
func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}
	dialOpts = append(dialOpts, opts.Extra...)

	cc, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewItemStoreClient(cc)}, nil
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) Put(data []byte) (cid.Cid, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Put(ctx, wrapperspb.Bytes(data))
	if err != nil {
		return cid.Undef, mapRPC(err)
	}
	return c.expect(reply.GetValue(), data)
}

func (c *Client) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Get(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return nil, mapRPC(err)
	}
	b := reply.GetValue()
	if !cidutil.Matches(id, b) {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

func (c *Client) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Has(ctx, wrapperspb.String(id.String()))
	if err != nil {
		return false
	}
	return reply.GetValue()
}

// PutItem sends one serialized item. The server verifies it before storing;
// a rejected item yields storage.ErrItemRejected.
func (c *Client) PutItem(raw []byte) (cid.Cid, error) {
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.PutItem(ctx, wrapperspb.Bytes(raw))
	if err != nil {
		return cid.Undef, mapRPC(err)
	}
	return c.expect(reply.GetValue(), raw)
}

func (c *Client) Locate(itemID []byte) (cid.Cid, error) {
	if err := storage.CheckItemID(itemID); err != nil {
		return cid.Undef, err
	}
	ctx, cancel := c.ctx()
	defer cancel()

	reply, err := c.client.Locate(ctx, wrapperspb.String(dataitem.EncodeID(itemID)))
	if err != nil {
		return cid.Undef, mapRPC(err)
	}
	id, err := cidutil.Parse(reply.GetValue())
	if err != nil {
		return cid.Undef, storage.ErrInvalidCID
	}
	return id, nil
}

// expect checks a CID returned by the server against the bytes we sent.
func (c *Client) expect(s string, data []byte) (cid.Cid, error) {
	id, err := cid.Decode(s)
	if err != nil || !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}
	if !cidutil.Matches(id, data) {
		return cid.Undef, storage.ErrCIDMismatch
	}
	return id, nil
}

func (c *Client) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}
