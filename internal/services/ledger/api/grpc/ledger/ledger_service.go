// Package ledger serves read-only ledger lookups over gRPC.
//
// The service is described by hand with protobuf well-known types: requests
// are google.protobuf.StringValue and responses google.protobuf.Struct.
// Lamports and slots travel as decimal strings so no precision is lost.
package ledger

import (
	"context"
	"encoding/base64"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	apperrors "github.com/louisbranch/crowdfund/internal/platform/errors"
	"github.com/louisbranch/crowdfund/internal/services/ledger/storage"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "crowdfund.v1.Ledger"

const (
	GetAccountMethod     = "/" + ServiceName + "/GetAccount"
	GetTransactionMethod = "/" + ServiceName + "/GetTransaction"
)

// Reader is the part of the bank the service reads from.
type Reader interface {
	Account(ctx context.Context, key solana.PublicKey) (storage.Account, error)
	Transaction(ctx context.Context, signature solana.Signature) (storage.TransactionRecord, error)
}

// Server is the handler set registered under ServiceName.
type Server interface {
	GetAccount(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
	GetTransaction(context.Context, *wrapperspb.StringValue) (*structpb.Struct, error)
}

// LedgerService implements Server on top of a Reader.
type LedgerService struct {
	reader Reader
}

// NewLedgerService creates a LedgerService reading from reader.
func NewLedgerService(reader Reader) *LedgerService {
	return &LedgerService{reader: reader}
}

// Register adds the service to s.
func Register(s grpc.ServiceRegistrar, srv Server) {
	s.RegisterService(&ServiceDesc, srv)
}

// GetAccount returns the committed state of the account at the given address.
func (s *LedgerService) GetAccount(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	value := strings.TrimSpace(in.GetValue())
	if value == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParameters, "account address is required")
	}
	key, err := solana.PublicKeyFromBase58(value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidParameters, "account address is not valid base58", err)
	}
	acc, err := s.reader.Account(ctx, key)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(accountFields(acc))
}

// GetTransaction returns the journal entry for the given signature.
func (s *LedgerService) GetTransaction(ctx context.Context, in *wrapperspb.StringValue) (*structpb.Struct, error) {
	value := strings.TrimSpace(in.GetValue())
	if value == "" {
		return nil, apperrors.New(apperrors.CodeInvalidParameters, "transaction signature is required")
	}
	sig, err := solana.SignatureFromBase58(value)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeInvalidParameters, "transaction signature is not valid base58", err)
	}
	rec, err := s.reader.Transaction(ctx, sig)
	if err != nil {
		return nil, err
	}
	return structpb.NewStruct(transactionFields(rec))
}

func accountFields(acc storage.Account) map[string]any {
	return map[string]any{
		"address":    acc.Key.String(),
		"owner":      acc.Owner.String(),
		"lamports":   strconv.FormatUint(acc.Lamports, 10),
		"data":       base64.StdEncoding.EncodeToString(acc.Data),
		"executable": acc.Executable,
	}
}

func transactionFields(rec storage.TransactionRecord) map[string]any {
	logs := make([]any, 0, len(rec.Logs))
	for _, line := range rec.Logs {
		logs = append(logs, line)
	}
	fields := map[string]any{
		"signature":      rec.Signature.String(),
		"slot":           strconv.FormatUint(rec.Slot, 10),
		"unix_timestamp": strconv.FormatInt(rec.UnixTimestamp, 10),
		"status":         string(rec.Status),
		"logs":           logs,
		"created_at":     rec.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if rec.ErrorCode != "" {
		fields["error_code"] = rec.ErrorCode
		fields["error_message"] = rec.ErrorMessage
	}
	return fields
}

// ServiceDesc describes the crowdfund.v1.Ledger service.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*Server)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetAccount", Handler: getAccountHandler},
		{MethodName: "GetTransaction", Handler: getTransactionHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "crowdfund/v1/ledger.proto",
}

func getAccountHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).GetAccount(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetAccountMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).GetAccount(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}

func getTransactionHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.StringValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(Server).GetTransaction(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetTransactionMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(Server).GetTransaction(ctx, req.(*wrapperspb.StringValue))
	}
	return interceptor(ctx, in, info, handler)
}
