// Copyright (c) 2025 Quarry
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package grpcengine reaches a remote query engine over gRPC. The wire
// protocol is deliberately schema-less: requests and responses are
// structpb.Struct payloads so the shell does not need generated bindings
// for any particular engine build. One server stream carries the batches of
// one statement; cancelling the statement context tears the stream down and
// the server aborts the execution.
//
// Methods used:
//
//	/quarry.Engine/OpenSession   unary,  {batch_size, mem_limit, workers} -> {session_id}
//	/quarry.Engine/CloseSession  unary,  {session_id} -> {}
//	/quarry.Engine/Execute       server stream, {session_id, sql} ->
//	                             {event: batch|done|error, ...}
package grpcengine

import (
	"context"
	"crypto/tls"
	"errors"
	"io"
	"net"
	"time"

	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"quarry/cli/internal/engine"
)

const (
	methodOpenSession  = "/quarry.Engine/OpenSession"
	methodCloseSession = "/quarry.Engine/CloseSession"
	methodExecute      = "/quarry.Engine/Execute"

	dialTimeout = 10 * time.Second
)

var executeDesc = &grpc.StreamDesc{
	StreamName:    "Execute",
	ServerStreams: true,
}

// Options tunes the connection.
type Options struct {
	// Insecure disables TLS, for engines on localhost or private networks.
	Insecure bool
}

// Session is a remote engine.Session bound to one server-side session id.
type Session struct {
	conn      *grpc.ClientConn
	sessionID string
}

// Open dials the engine and creates a server-side session with the given
// config. The default port 443 is assumed when addr carries none.
func Open(ctx context.Context, addr string, cfg engine.Config, opts Options) (*Session, error) {
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}
	target := addr
	if _, _, err := net.SplitHostPort(addr); err != nil {
		target = net.JoinHostPort(addr, "443")
	}

	creds := grpc.WithTransportCredentials(insecure.NewCredentials())
	if !opts.Insecure {
		tlsCfg := &tls.Config{ServerName: host, MinVersion: tls.VersionTLS12}
		creds = grpc.WithTransportCredentials(credentials.NewTLS(tlsCfg))
	}
	dctx, cancel := context.WithTimeout(ctx, dialTimeout)
	defer cancel()
	conn, err := grpc.DialContext(dctx, target, creds, grpc.WithBlock())
	if err != nil {
		return nil, engine.Wrap(engine.KindInternal, "connect to engine", err)
	}

	req, err := structpb.NewStruct(map[string]any{
		"batch_size": cfg.BatchSize,
		"mem_limit":  cfg.MemLimit,
		"workers":    cfg.Workers,
	})
	if err != nil {
		_ = conn.Close()
		return nil, engine.Wrap(engine.KindInternal, "encode session config", err)
	}
	resp := &structpb.Struct{}
	if err := conn.Invoke(ctx, methodOpenSession, req, resp); err != nil {
		_ = conn.Close()
		return nil, engine.Wrap(engine.KindInternal, "open engine session", err)
	}
	id, _ := resp.AsMap()["session_id"].(string)
	if id == "" {
		_ = conn.Close()
		return nil, engine.New(engine.KindInternal, "engine returned no session id")
	}
	log.Debug().Str("session_id", id).Str("addr", target).Msg("remote engine session opened")
	return &Session{conn: conn, sessionID: id}, nil
}

// Execute implements engine.Session. The stream stays open until the cursor
// is drained, fails, or the context is cancelled.
func (s *Session) Execute(ctx context.Context, sql string) (engine.Cursor, error) {
	cs, err := s.conn.NewStream(ctx, executeDesc, methodExecute)
	if err != nil {
		return nil, mapTransportError(ctx, err)
	}
	stream := &grpc.GenericClientStream[structpb.Struct, structpb.Struct]{ClientStream: cs}
	req, err := structpb.NewStruct(map[string]any{
		"session_id": s.sessionID,
		"sql":        sql,
	})
	if err != nil {
		return nil, engine.Wrap(engine.KindInternal, "encode statement", err)
	}
	if err := stream.Send(req); err != nil {
		return nil, mapTransportError(ctx, err)
	}
	if err := stream.CloseSend(); err != nil {
		return nil, mapTransportError(ctx, err)
	}
	return &cursor{ctx: ctx, stream: stream}, nil
}

// Close implements engine.Session: releases the server-side session, then
// the connection.
func (s *Session) Close(ctx context.Context) error {
	req, err := structpb.NewStruct(map[string]any{"session_id": s.sessionID})
	if err == nil {
		if cerr := s.conn.Invoke(ctx, methodCloseSession, req, &structpb.Struct{}); cerr != nil {
			log.Debug().Err(cerr).Msg("close engine session failed")
		}
	}
	return s.conn.Close()
}

type cursor struct {
	ctx    context.Context
	stream *grpc.GenericClientStream[structpb.Struct, structpb.Struct]
	cur    *engine.Batch
	err    error
	done   bool
}

func (c *cursor) Next(context.Context) bool {
	if c.done {
		return false
	}
	for {
		msg, err := c.stream.Recv()
		if err != nil {
			c.done = true
			switch {
			case errors.Is(err, io.EOF):
				// Stream closed without a done event; treat as end of data.
				if c.ctx.Err() != nil {
					c.err = engine.Wrap(engine.KindCanceled, "execution cancelled", c.ctx.Err())
				}
			default:
				c.err = mapTransportError(c.ctx, err)
			}
			return false
		}
		fields := msg.AsMap()
		switch event, _ := fields["event"].(string); event {
		case "batch":
			batch, err := decodeBatch(fields)
			if err != nil {
				c.done = true
				c.err = err
				return false
			}
			c.cur = batch
			return true
		case "done":
			c.done = true
			return false
		case "error":
			c.done = true
			c.err = decodeError(fields)
			return false
		default:
			// Unknown events are skipped for forward compatibility.
			log.Debug().Str("event", event).Msg("ignoring unknown stream event")
		}
	}
}

func (c *cursor) Batch() *engine.Batch { return c.cur }
func (c *cursor) Err() error           { return c.err }
func (c *cursor) Close()               { _ = c.stream.CloseSend() }

// decodeBatch converts a batch event into an engine.Batch. Row cells arrive
// as structpb scalars; JSON-style numbers come through as float64 and SQL
// NULL as nil, matching the engine value contract.
func decodeBatch(fields map[string]any) (*engine.Batch, error) {
	cols, _ := fields["columns"].([]any)
	schema := make(engine.Schema, 0, len(cols))
	for _, c := range cols {
		m, ok := c.(map[string]any)
		if !ok {
			return nil, engine.New(engine.KindInternal, "malformed column descriptor in batch")
		}
		name, _ := m["name"].(string)
		typ, _ := m["type"].(string)
		schema = append(schema, engine.Column{Name: name, Type: typ})
	}
	rawRows, _ := fields["rows"].([]any)
	rows := make([][]engine.Value, 0, len(rawRows))
	for _, r := range rawRows {
		cells, ok := r.([]any)
		if !ok {
			return nil, engine.New(engine.KindInternal, "malformed row in batch")
		}
		rows = append(rows, cells)
	}
	return &engine.Batch{Schema: schema, Rows: rows}, nil
}

// decodeError converts an error event into an engine.Error, preserving the
// engine-side classification when it is one we know.
func decodeError(fields map[string]any) error {
	msg, _ := fields["message"].(string)
	if msg == "" {
		msg = "engine reported an unspecified error"
	}
	kind, _ := fields["kind"].(string)
	switch k := engine.Kind(kind); k {
	case engine.KindParse, engine.KindPlan, engine.KindExecution, engine.KindCanceled:
		return engine.New(k, msg)
	}
	return engine.New(engine.KindExecution, msg)
}

func mapTransportError(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return engine.Wrap(engine.KindCanceled, "execution cancelled", err)
	}
	return engine.Wrap(engine.KindInternal, "engine transport failure", err)
}
