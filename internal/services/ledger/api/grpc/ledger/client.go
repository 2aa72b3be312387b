package ledger

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Client calls the ledger service over a connection.
type Client struct {
	conn grpc.ClientConnInterface
}

// NewClient creates a Client on conn.
func NewClient(conn grpc.ClientConnInterface) *Client {
	return &Client{conn: conn}
}

// GetAccount fetches an account by base58 address.
func (c *Client) GetAccount(ctx context.Context, address string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, GetAccountMethod, wrapperspb.String(address), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTransaction fetches a journal entry by base58 signature.
func (c *Client) GetTransaction(ctx context.Context, signature string, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, GetTransactionMethod, wrapperspb.String(signature), out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
