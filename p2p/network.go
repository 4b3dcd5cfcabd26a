//
// Copyright (c) 2020-2026 Markku Rossi
//
// All rights reserved.
//

package p2p

import (
	"context"
	"net"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

// ProtocolVersion identifies the offline phase wire protocol. Peers
// exchange it in the handshake.
const ProtocolVersion = "malyao-offline/1"

// RetryDelay specifies the delay between connection attempts.
var RetryDelay = 5 * time.Second

// Dial connects to the peer at addr, retrying until the connection
// succeeds or ctx is done. The function runs the handshake as party
// id and returns the peer's party ID.
func Dial(ctx context.Context, addr string, id int, log *zap.Logger) (
	*Conn, int, error) {

	var dialer net.Dialer
	for {
		log.Debug("connecting to peer", zap.String("addr", addr))
		nc, err := dialer.DialContext(ctx, "tcp", addr)
		if err != nil {
			log.Info("connect failed, retrying",
				zap.String("addr", addr), zap.Duration("delay", RetryDelay),
				zap.Error(err))
			select {
			case <-ctx.Done():
				return nil, 0, ctx.Err()
			case <-time.After(RetryDelay):
			}
			continue
		}
		log.Info("connected", zap.String("addr", addr))

		conn := NewConn(nc)
		peer, err := handshake(conn, id)
		if err != nil {
			conn.Close()
			return nil, 0, err
		}
		return conn, peer, nil
	}
}

// Accept accepts a peer connection from the listener and runs the
// handshake as party id. It returns the peer's party ID.
func Accept(ctx context.Context, listener net.Listener, id int,
	log *zap.Logger) (*Conn, int, error) {

	type result struct {
		nc  net.Conn
		err error
	}
	ch := make(chan result, 1)
	go func() {
		nc, err := listener.Accept()
		ch <- result{
			nc:  nc,
			err: err,
		}
	}()

	var r result
	select {
	case <-ctx.Done():
		listener.Close()
		return nil, 0, ctx.Err()
	case r = <-ch:
	}
	if r.err != nil {
		return nil, 0, r.err
	}
	log.Info("accepted connection",
		zap.Stringer("remote", r.nc.RemoteAddr()))

	conn := NewConn(r.nc)
	peer, err := handshake(conn, id)
	if err != nil {
		conn.Close()
		return nil, 0, err
	}
	return conn, peer, nil
}

func handshake(conn *Conn, id int) (int, error) {
	if err := conn.SendString(ProtocolVersion); err != nil {
		return 0, err
	}
	if err := conn.SendUint32(id); err != nil {
		return 0, err
	}
	if err := conn.Flush(); err != nil {
		return 0, err
	}
	version, err := conn.ReceiveString()
	if err != nil {
		return 0, err
	}
	if version != ProtocolVersion {
		return 0, errors.Newf("p2p: protocol version mismatch: %s != %s",
			version, ProtocolVersion)
	}
	peer, err := conn.ReceiveUint32()
	if err != nil {
		return 0, err
	}
	if peer == id {
		return 0, errors.Newf("p2p: peer has our party ID %d", id)
	}
	return peer, nil
}
