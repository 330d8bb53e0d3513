// Package schema holds the protobuf description of everything decaf puts
// on the wire: exported scope trees and the resolve service. The .proto
// source is embedded and parsed once at first use; messages are built
// dynamically from it, so no generated code is needed.
package schema

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/jhump/protoreflect/desc"
	"github.com/jhump/protoreflect/desc/protoparse"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/reflect/protodesc"
	"google.golang.org/protobuf/reflect/protoreflect"
	"google.golang.org/protobuf/types/dynamicpb"
)

const (
	FileName    = "decaf/decaf.proto"
	Package     = "decaf"
	ServiceName = "decaf.Resolver"
)

// Message names, unqualified.
const (
	ScopeMessage           = "Scope"
	ResolveRequestMessage  = "ResolveRequest"
	ResolveResponseMessage = "ResolveResponse"
)

//go:embed decaf.proto
var source string

var (
	loadOnce sync.Once
	parsed   *desc.FileDescriptor
	compiled protoreflect.FileDescriptor
	loadErr  error
)

func load() error {
	loadOnce.Do(func() {
		parser := protoparse.Parser{
			Accessor: protoparse.FileContentsFromMap(map[string]string{FileName: source}),
		}
		fds, err := parser.ParseFiles(FileName)
		if err != nil {
			loadErr = fmt.Errorf("failed to parse proto: %w", err)
			return
		}
		parsed = fds[0]
		compiled, err = protodesc.NewFile(parsed.AsFileDescriptorProto(), nil)
		if err != nil {
			loadErr = fmt.Errorf("failed to build descriptor: %w", err)
		}
	})
	return loadErr
}

// File returns the parsed schema.
func File() (*desc.FileDescriptor, error) {
	if err := load(); err != nil {
		return nil, err
	}
	return parsed, nil
}

// Service returns the descriptor of the resolve service.
func Service() (*desc.ServiceDescriptor, error) {
	fd, err := File()
	if err != nil {
		return nil, err
	}
	sd := fd.FindService(ServiceName)
	if sd == nil {
		return nil, fmt.Errorf("service %s not found in %s", ServiceName, FileName)
	}
	return sd, nil
}

// NewMessage returns an empty message of the named type. Both "Scope" and
// "decaf.Scope" are accepted.
func NewMessage(name string) (*dynamicpb.Message, error) {
	if err := load(); err != nil {
		return nil, err
	}
	full := protoreflect.FullName(name)
	if !full.IsValid() || full.Parent() == "" {
		full = protoreflect.FullName(Package + "." + name)
	}
	md := compiled.Messages().ByName(full.Name())
	if md == nil || md.FullName() != full {
		return nil, fmt.Errorf("message %s not found in %s", name, FileName)
	}
	return dynamicpb.NewMessage(md), nil
}

// Encode converts v into a message of the named type. v must marshal to
// the message's JSON mapping; unknown fields are an error.
func Encode(name string, v interface{}) (*dynamicpb.Message, error) {
	msg, err := NewMessage(name)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if err := protojson.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", name, err)
	}
	return msg, nil
}

// Decode fills v from m through the message's JSON mapping.
func Decode(m proto.Message, v interface{}) error {
	data, err := protojson.Marshal(m)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}
