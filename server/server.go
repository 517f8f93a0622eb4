/*
 * ------------------------------------------------------------------
 * May, 2022, Reda Haddad
 *
 * Copyright (c) 2022 by cisco Systems, Inc.
 * All rights reserved.
 * ------------------------------------------------------------------
 */

// Package server wires the P4Runtime and gNMI service facades onto a
// gRPC server: listener setup, the interceptor chain, two-tier
// shutdown, and the SIGUSR1/SIGUSR2-driven synthetic packet-in
// generator used for test harnessing.
package server

import (
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/golang/glog"
	grpc_middleware "github.com/grpc-ecosystem/go-grpc-middleware"
	"github.com/openconfig/gnmi/proto/gnmi"
	p4v1 "github.com/p4lang/p4runtime/go/p4/v1"
	"google.golang.org/grpc"

	"github.com/go-p4rt/p4rtd/device"
	"github.com/go-p4rt/p4rtd/devicesim"
	"github.com/go-p4rt/p4rtd/gnmicfg"
	"github.com/go-p4rt/p4rtd/gnmisvc"
	"github.com/go-p4rt/p4rtd/p4rtsvc"
	"github.com/go-p4rt/p4rtd/stream"
)

// DefaultAddr is the listen address Run binds when the caller does
// not name one.
const DefaultAddr = "0.0.0.0:50051"

// maxRecvMessageSize is large enough to carry a full P4Info plus a
// device's compiled pipeline binary in one SetForwardingPipelineConfig.
const maxRecvMessageSize = 256 * 1024 * 1024

// Server owns every long-lived piece of the control plane: the
// device registry, the stream multiplexer and its roster, the gNMI
// config manager, and the gRPC server listening on top of them.
type Server struct {
	grpcServer *grpc.Server
	listener   net.Listener

	registry  *device.Registry
	roster    *stream.Roster
	fanout    *stream.Fanout
	manager   *gnmicfg.Manager
	generator *packetGenerator

	sigCh   chan os.Signal
	stopped chan struct{}
}

// New constructs a Server with its full dependency graph wired
// together but does not yet bind a listener.
func New() *Server {
	roster := stream.NewRoster()
	fanout := stream.NewFanout(roster)
	registry := device.NewRegistry(devicesim.NewCapability)
	mux := stream.NewMux(roster, registry)
	manager := gnmicfg.NewManager()

	unaryChain := grpc_middleware.ChainUnaryServer(recoveryUnaryInterceptor, loggingUnaryInterceptor)
	streamChain := grpc_middleware.ChainStreamServer(recoveryStreamInterceptor, loggingStreamInterceptor)

	grpcServer := grpc.NewServer(
		grpc.MaxRecvMsgSize(maxRecvMessageSize),
		grpc.UnaryInterceptor(unaryChain),
		grpc.StreamInterceptor(streamChain),
	)

	p4v1.RegisterP4RuntimeServer(grpcServer, p4rtsvc.New(registry, mux, fanout))
	gnmi.RegisterGNMIServer(grpcServer, gnmisvc.New(manager))

	s := &Server{
		grpcServer: grpcServer,
		registry:   registry,
		roster:     roster,
		fanout:     fanout,
		manager:    manager,
		generator:  newPacketGenerator(fanout),
		stopped:    make(chan struct{}),
	}
	s.watchGeneratorSignals()
	return s
}

func (s *Server) watchGeneratorSignals() {
	s.sigCh = make(chan os.Signal, 2)
	signal.Notify(s.sigCh, syscall.SIGUSR1, syscall.SIGUSR2)
	go func() {
		for sig := range s.sigCh {
			if sig == syscall.SIGUSR1 {
				glog.Info("server: starting synthetic packet-in generator")
				s.generator.start()
			} else {
				glog.Info("server: stopping synthetic packet-in generator")
				s.generator.halt()
			}
		}
	}()
}

// RunAddr binds listenAddr and starts serving in the background.
func (s *Server) RunAddr(listenAddr string) error {
	lis, err := net.Listen("tcp", listenAddr)
	if err != nil {
		return err
	}
	s.listener = lis
	glog.Infof("server: listening on %s", listenAddr)
	go func() {
		if err := s.grpcServer.Serve(lis); err != nil {
			glog.Warningf("server: Serve returned: %s", err)
		}
	}()
	return nil
}

// Run binds DefaultAddr.
func (s *Server) Run() error {
	return s.RunAddr(DefaultAddr)
}

// Wait blocks until Shutdown or ForceShutdown has completed.
func (s *Server) Wait() {
	<-s.stopped
}

// Shutdown stops accepting new RPCs and blocks until every in-flight
// RPC -- including every open StreamChannel -- drains.
func (s *Server) Shutdown() {
	s.grpcServer.GracefulStop()
	s.generator.halt()
	close(s.stopped)
}

// ForceShutdown gives in-flight RPCs deadline to drain gracefully;
// past that it stops the server unconditionally.
func (s *Server) ForceShutdown(deadline time.Duration) {
	done := make(chan struct{})
	go func() {
		s.grpcServer.GracefulStop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(deadline):
		s.grpcServer.Stop()
	}
	s.generator.halt()
	close(s.stopped)
}

// Cleanup releases the signal watcher; call after Shutdown.
func (s *Server) Cleanup() {
	signal.Stop(s.sigCh)
	close(s.sigCh)
}
