package grpccas

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"xdao.co/ans104/storage"
)

func mapRPC(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	switch st.Code() {
	case codes.NotFound:
		return storage.ErrNotFound
	case codes.InvalidArgument:
		if st.Message() == storage.ErrInvalidItemID.Error() {
			return storage.ErrInvalidItemID
		}
		return storage.ErrInvalidCID
	case codes.DataLoss:
		return storage.ErrCIDMismatch
	case codes.AlreadyExists:
		return storage.ErrImmutable
	case codes.Unimplemented:
		return storage.ErrNoIndex
	case codes.FailedPrecondition:
		return fmt.Errorf("%w: %s", storage.ErrItemRejected, st.Message())
	default:
		return err
	}
}
