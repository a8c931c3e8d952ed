package ws

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

func TestHub_AltasYBajasNoBloqueanTrasDetenerse(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	stopped := make(chan struct{})
	go func() {
		hub.Run(ctx)
		close(stopped)
	}()
	cancel()
	<-stopped

	done := make(chan bool)
	go func() {
		ok := hub.add(nil)
		hub.remove(nil)
		done <- ok
	}()

	select {
	case ok := <-done:
		assert.False(t, ok, "un hub detenido no acepta conexiones")
	case <-time.After(2 * time.Second):
		t.Fatal("add/remove bloquearon con el hub detenido")
	}
	assert.Zero(t, hub.Clients())
}

func TestHub_RunRepetidoNoEntraEnPanico(t *testing.T) {
	hub := NewHub(logger.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	hub.Run(ctx)
	assert.NotPanics(t, func() { hub.Run(ctx) })
}
