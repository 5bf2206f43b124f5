package grpccas

import (
	"context"
	"errors"

	"github.com/ipfs/go-cid"
	"github.com/rs/zerolog"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"xdao.co/ans104/cidutil"
	"xdao.co/ans104/dataitem"
	"xdao.co/ans104/model"
	"xdao.co/ans104/storage"
	"xdao.co/ans104/verify"
)

// Server exposes a storage.CAS over the ItemStore service. PutItem accepts
// only items that Verifier accepts; a nil Verifier disables PutItem.
type Server struct {
	UnimplementedItemStoreServer
	CAS      storage.CAS
	Verifier *verify.Verifier
	Logger   zerolog.Logger
}

func (s *Server) Put(_ context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.CAS == nil {
		return nil, status.Error(codes.Unavailable, "missing CAS")
	}
	id, err := s.CAS.Put(in.GetValue())
	if err != nil {
		return nil, mapErr(err)
	}
	if !cidutil.Matches(id, in.GetValue()) {
		return nil, status.Error(codes.DataLoss, storage.ErrCIDMismatch.Error())
	}
	return wrapperspb.String(id.String()), nil
}

func (s *Server) Get(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.CAS == nil {
		return nil, status.Error(codes.Unavailable, "missing CAS")
	}
	id, err := cid.Decode(in.GetValue())
	if err != nil || !id.Defined() {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
	}
	b, err := s.CAS.Get(id)
	if err != nil {
		return nil, mapErr(err)
	}
	if !cidutil.Matches(id, b) {
		return nil, status.Error(codes.DataLoss, storage.ErrCIDMismatch.Error())
	}
	return wrapperspb.Bytes(b), nil
}

func (s *Server) Has(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.BoolValue, error) {
	if s == nil || s.CAS == nil {
		return nil, status.Error(codes.Unavailable, "missing CAS")
	}
	id, err := cid.Decode(in.GetValue())
	if err != nil || !id.Defined() {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidCID.Error())
	}
	return wrapperspb.Bool(s.CAS.Has(id)), nil
}

// PutItem verifies one serialized item, stores it and indexes it by id.
func (s *Server) PutItem(_ context.Context, in *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.CAS == nil || s.Verifier == nil {
		return nil, status.Error(codes.Unavailable, "item verification is not configured")
	}
	it, ok, err := s.Verifier.VerifyItemBytes(in.GetValue())
	if err == nil && !ok {
		err = model.ErrInvalidSignature
	}
	if err != nil {
		s.Logger.Debug().Str("code", string(model.CodeOf(err))).Err(err).Msg("item rejected")
		return nil, status.Error(codes.FailedPrecondition, err.Error())
	}
	id, err := storage.PutItem(s.CAS, it)
	if err != nil {
		return nil, mapErr(err)
	}
	s.Logger.Debug().Str("item", it.IDString()).Str("cid", id.String()).Msg("item stored")
	return wrapperspb.String(id.String()), nil
}

func (s *Server) Locate(_ context.Context, in *wrapperspb.StringValue) (*wrapperspb.StringValue, error) {
	if s == nil || s.CAS == nil {
		return nil, status.Error(codes.Unavailable, "missing CAS")
	}
	itemID, err := dataitem.DecodeID(in.GetValue())
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, storage.ErrInvalidItemID.Error())
	}
	loc, ok := s.CAS.(storage.ItemLocator)
	if !ok {
		return nil, status.Error(codes.Unimplemented, storage.ErrNoIndex.Error())
	}
	id, err := loc.Locate(itemID)
	if err != nil {
		return nil, mapErr(err)
	}
	return wrapperspb.String(id.String()), nil
}

func mapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, storage.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, storage.ErrInvalidCID), errors.Is(err, storage.ErrInvalidItemID):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, storage.ErrCIDMismatch):
		return status.Error(codes.DataLoss, err.Error())
	case errors.Is(err, storage.ErrImmutable):
		return status.Error(codes.AlreadyExists, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
