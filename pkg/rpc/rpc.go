// Package rpc carries the gRPC plumbing shared by every service: a JSON codec
// so service contracts can be plain Go structs, helpers to describe unary
// methods, and the error/metadata conventions between gateway and backends.
package rpc

import (
	"context"
	"encoding/json"
	"errors"

	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/encoding"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

const CodecName = "json"

type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error)      { return json.Marshal(v) }
func (jsonCodec) Unmarshal(data []byte, v any) error { return json.Unmarshal(data, v) }
func (jsonCodec) Name() string                       { return CodecName }

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// Unary describes one unary method of service. call adapts the registered
// server implementation S to the typed request.
func Unary[S any, Req any, Resp any](service, name string, call func(S, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	fullMethod := "/" + service + "/" + name
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(S), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(S), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Invoke calls service/name on cc with the JSON codec.
func Invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, service, name string, in any, opts ...grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	opts = append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
	if err := cc.Invoke(ctx, "/"+service+"/"+name, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func Dial(addr string) (*grpc.ClientConn, error) {
	return grpc.NewClient(addr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otelgrpc.NewClientHandler()),
	)
}

func NewServer(opts ...grpc.ServerOption) *grpc.Server {
	opts = append([]grpc.ServerOption{grpc.StatsHandler(otelgrpc.NewServerHandler())}, opts...)
	return grpc.NewServer(opts...)
}

// CodeMap translates domain sentinel errors into gRPC status errors.
type CodeMap map[error]codes.Code

func (m CodeMap) Status(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := status.FromError(err); ok {
		return err
	}
	for target, code := range m {
		if errors.Is(err, target) {
			return status.Error(code, err.Error())
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return status.Error(codes.DeadlineExceeded, err.Error())
	}
	return status.Error(codes.Internal, err.Error())
}

// User identifies the signed-in caller across a gRPC hop.
type User struct {
	ID    string
	Email string
	Role  string
}

const (
	mdUserID    = "x-user-id"
	mdUserEmail = "x-user-email"
	mdUserRole  = "x-user-role"
)

func WithUser(ctx context.Context, u User) context.Context {
	md := metadata.New(nil)
	if u.ID != "" {
		md.Append(mdUserID, u.ID)
	}
	if u.Email != "" {
		md.Append(mdUserEmail, u.Email)
	}
	if u.Role != "" {
		md.Append(mdUserRole, u.Role)
	}
	return metadata.NewOutgoingContext(ctx, md)
}

func UserFrom(ctx context.Context) (User, bool) {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return User{}, false
	}
	u := User{ID: first(md, mdUserID), Email: first(md, mdUserEmail), Role: first(md, mdUserRole)}
	return u, u.ID != ""
}

func first(md metadata.MD, key string) string {
	if v := md.Get(key); len(v) > 0 {
		return v[0]
	}
	return ""
}
