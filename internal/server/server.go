// Package server exposes scope resolution as a gRPC service. The service
// and its messages are described by the embedded decaf.proto; handlers are
// registered from that description, no generated stubs are involved.
package server

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/funvibe/decaf/internal/diagnostics"
	"github.com/funvibe/decaf/internal/export"
	"github.com/funvibe/decaf/internal/frontend"
	"github.com/funvibe/decaf/internal/schema"
	"github.com/google/uuid"
	"github.com/jhump/protoreflect/desc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/dynamicpb"
)

// ResolveMethod is the full gRPC method path of Resolve.
const ResolveMethod = "/" + schema.ServiceName + "/Resolve"

type Request struct {
	File   string `json:"file,omitempty"`
	Source string `json:"source,omitempty"`
}

type Diagnostic struct {
	Code    string `json:"code"`
	File    string `json:"file,omitempty"`
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

// Response carries either the resolved scope tree (OK) or the diagnostics
// that stopped resolution.
type Response struct {
	RequestID   string        `json:"requestId"`
	OK          bool          `json:"ok,omitempty"`
	Global      *export.Scope `json:"global,omitempty"`
	Diagnostics []Diagnostic  `json:"diagnostics,omitempty"`
}

type Server struct {
	logger *log.Logger
	newID  func() string
}

func NewServer(logger *log.Logger) *Server {
	return &Server{logger: logger, newID: uuid.NewString}
}

// Resolve runs the front end over one source text. Bad input comes back as
// diagnostics in the response; only internal faults are errors.
func (s *Server) Resolve(ctx context.Context, req Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, status.FromContextError(err).Err()
	}
	resp := &Response{RequestID: s.newID()}
	start := time.Now()
	s.logf("request %s: resolve %s (%d bytes)", resp.RequestID, displayName(req.File), len(req.Source))

	result := frontend.Analyze(req.File, req.Source)
	if result.Fatal {
		s.logf("request %s: internal error: %v", resp.RequestID, result.Errors[0])
		return nil, status.Errorf(codes.Internal, "request %s: %v", resp.RequestID, result.Errors[0])
	}
	for _, e := range result.Errors {
		resp.Diagnostics = append(resp.Diagnostics, toDiagnostic(e))
	}
	if result.Resolved {
		global, err := export.Build(result.AstRoot)
		if err != nil {
			return nil, status.Errorf(codes.Internal, "request %s: %v", resp.RequestID, err)
		}
		resp.OK = true
		resp.Global = global
	}

	s.logf("request %s: ok=%v diagnostics=%d in %s", resp.RequestID, resp.OK, len(resp.Diagnostics), time.Since(start))
	return resp, nil
}

func toDiagnostic(e *diagnostics.DiagnosticError) Diagnostic {
	return Diagnostic{
		Code:    string(e.Code),
		File:    e.File,
		Line:    e.Token.Line,
		Column:  e.Token.Column,
		Message: e.Message,
	}
}

func displayName(file string) string {
	if file == "" {
		return "<input>"
	}
	return file
}

func (s *Server) logf(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// ServiceDesc builds the gRPC service description from the schema.
func (s *Server) ServiceDesc() (*grpc.ServiceDesc, error) {
	sd, err := schema.Service()
	if err != nil {
		return nil, err
	}
	sdesc := &grpc.ServiceDesc{
		ServiceName: sd.GetFullyQualifiedName(),
		HandlerType: (*interface{})(nil),
		Methods:     []grpc.MethodDesc{},
		Streams:     []grpc.StreamDesc{},
		Metadata:    sd.GetFile().GetName(),
	}
	for _, method := range sd.GetMethods() {
		if method.IsClientStreaming() || method.IsServerStreaming() {
			continue
		}
		handler, ok := s.handlers()[method.GetName()]
		if !ok {
			return nil, fmt.Errorf("no handler for %s", method.GetFullyQualifiedName())
		}
		md := method
		sdesc.Methods = append(sdesc.Methods, grpc.MethodDesc{
			MethodName: md.GetName(),
			Handler: func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
				return srv.(*Server).handleUnary(ctx, md, handler, dec, interceptor)
			},
		})
	}
	return sdesc, nil
}

type unaryHandler func(ctx context.Context, in *dynamicpb.Message) (interface{}, error)

func (s *Server) handlers() map[string]unaryHandler {
	return map[string]unaryHandler{
		"Resolve": func(ctx context.Context, in *dynamicpb.Message) (interface{}, error) {
			var req Request
			if err := schema.Decode(in, &req); err != nil {
				return nil, status.Errorf(codes.InvalidArgument, "decoding request: %v", err)
			}
			resp, err := s.Resolve(ctx, req)
			if err != nil {
				return nil, err
			}
			out, err := schema.Encode(schema.ResolveResponseMessage, resp)
			if err != nil {
				return nil, status.Errorf(codes.Internal, "encoding response: %v", err)
			}
			return out, nil
		},
	}
}

func (s *Server) handleUnary(ctx context.Context, md *desc.MethodDescriptor, h unaryHandler, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in, err := schema.NewMessage(md.GetInputType().GetFullyQualifiedName())
	if err != nil {
		return nil, status.Error(codes.Internal, err.Error())
	}
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return h(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     s,
		FullMethod: "/" + md.GetService().GetFullyQualifiedName() + "/" + md.GetName(),
	}
	return interceptor(ctx, in, info, func(ctx context.Context, req interface{}) (interface{}, error) {
		return h(ctx, req.(*dynamicpb.Message))
	})
}

// Register adds the resolve service to reg.
func (s *Server) Register(reg grpc.ServiceRegistrar) error {
	sdesc, err := s.ServiceDesc()
	if err != nil {
		return err
	}
	reg.RegisterService(sdesc, s)
	return nil
}

// Resolve calls the resolve service over conn.
func Resolve(ctx context.Context, conn grpc.ClientConnInterface, file, source string) (*Response, error) {
	in, err := schema.Encode(schema.ResolveRequestMessage, Request{File: file, Source: source})
	if err != nil {
		return nil, err
	}
	out, err := schema.NewMessage(schema.ResolveResponseMessage)
	if err != nil {
		return nil, err
	}
	if err := conn.Invoke(ctx, ResolveMethod, in, out); err != nil {
		return nil, err
	}
	var resp Response
	if err := schema.Decode(out, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &resp, nil
}

// IsInternal reports whether err is a server-side fault rather than a
// transport or input problem.
func IsInternal(err error) bool {
	return err != nil && status.Code(err) == codes.Internal
}
