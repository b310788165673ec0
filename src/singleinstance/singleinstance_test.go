package singleinstance

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestServerClientRoundTrip(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}
	defer srv.Close()

	// client delegates an interactive capture request
	client := NewClient()
	delegatedCh := make(chan struct{})
	go func() {
		defer close(delegatedCh)
		delegated, detail, err := client.TryCapture(ctx, true)
		if err != nil {
			t.Errorf("client: %v", err)
		}
		if !delegated {
			t.Errorf("expected delegation")
		}
		if detail != "C:\\shots\\out.png" {
			t.Errorf("detail = %q, want saved path", detail)
		}
	}()

	// server accept and respond
	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if !conn.Request().Interactive {
		t.Errorf("expected interactive request")
	}
	if err := conn.RespondSuccess("C:\\shots\\out.png"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	<-delegatedCh
}

func TestCloseWithPendingRequestsDoesNotPanic(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}

	// More requests than the incoming buffer holds, none of them consumed,
	// so the accept loop is parked on a send when Close lands.
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cctx, ccancel := context.WithTimeout(context.Background(), time.Second)
			defer ccancel()
			_, _, _ = NewClient().TryCapture(cctx, false)
		}()
	}
	time.Sleep(100 * time.Millisecond)

	if err := srv.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	cancel()
	wg.Wait()
}

func TestServerErrorResponse(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	srv := NewServer()
	if err := srv.Start(ctx); err != nil {
		t.Skipf("loopback port unavailable in this environment: %v", err)
	}
	defer srv.Close()

	client := NewClient()
	errCh := make(chan error, 1)
	go func() {
		_, _, err := client.TryCapture(ctx, false)
		errCh <- err
	}()

	conn, err := srv.Next(ctx)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if conn.Request().Interactive {
		t.Errorf("expected full-desktop request")
	}
	if err := conn.RespondError("busy"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	got := <-errCh
	if got == nil || got.Error() != "busy" {
		t.Errorf("client error = %v, want busy", got)
	}
}
