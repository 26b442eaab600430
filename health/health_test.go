package health

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"coin-arena/logging"
)

func TestServingTransitions(t *testing.T) {
	s := New(logging.Discard())
	ctx := context.Background()

	for _, svc := range []string{"", MatchService} {
		got, err := s.Check(ctx, svc)
		if err != nil {
			t.Fatalf("check %q: %v", svc, err)
		}
		if got != healthpb.HealthCheckResponse_NOT_SERVING {
			t.Fatalf("initial %q = %s", svc, got)
		}
	}

	s.SetServing(true)
	for _, svc := range []string{"", MatchService} {
		if got, _ := s.Check(ctx, svc); got != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("after SetServing(true) %q = %s", svc, got)
		}
	}

	s.SetServing(false)
	if got, _ := s.Check(ctx, MatchService); got != healthpb.HealthCheckResponse_NOT_SERVING {
		t.Fatalf("after SetServing(false) = %s", got)
	}
}

func TestUnknownServiceIsNotFound(t *testing.T) {
	s := New(logging.Discard())
	if _, err := s.Check(context.Background(), "nope"); err == nil {
		t.Fatalf("expected error for unregistered service")
	}
}

func TestServeOverNetwork(t *testing.T) {
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	s := New(logging.Discard())
	s.SetServing(true)
	errc := make(chan error, 1)
	go func() { errc <- s.Serve(lis) }()

	conn, err := grpc.NewClient(lis.Addr().String(), grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	resp, err := healthpb.NewHealthClient(conn).Check(ctx, &healthpb.HealthCheckRequest{Service: MatchService})
	if err != nil {
		t.Fatalf("remote check: %v", err)
	}
	if resp.GetStatus() != healthpb.HealthCheckResponse_SERVING {
		t.Fatalf("remote status = %s", resp.GetStatus())
	}

	s.Stop()
	select {
	case err := <-errc:
		if err != nil {
			t.Fatalf("Serve returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after Stop")
	}
}
