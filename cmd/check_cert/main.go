// check_cert diagnostica la configuración TLS del servidor: que el .p12 abra con su
// contraseña, su vigencia y, si hay CA de clientes, que el PEM sea legible.
//
// Uso: go run ./cmd/check_cert
// Lee TLS_P12_PATH, TLS_P12_PASSWORD y TLS_CLIENT_CA_PATH como la API.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jhoicas/inventario-ledger/pkg/certs"
	"github.com/jhoicas/inventario-ledger/pkg/config"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fail("configuración", err)
	}
	if !cfg.TLS.Enabled() {
		fmt.Println("TLS_P12_PATH vacío: la API escucha en HTTP plano")
		return
	}

	fmt.Printf("Identidad: %s\n", cfg.TLS.P12Path)
	cert, err := certs.LoadP12(cfg.TLS.P12Path, cfg.TLS.P12Password)
	if err != nil {
		fail("identidad", err)
	}
	leaf := cert.Leaf
	fmt.Printf("  sujeto:  %s\n", leaf.Subject.CommonName)
	fmt.Printf("  emisor:  %s\n", leaf.Issuer.CommonName)
	fmt.Printf("  vigente: %s a %s\n", leaf.NotBefore.Format(time.DateOnly), leaf.NotAfter.Format(time.DateOnly))
	if now := time.Now(); now.After(leaf.NotAfter) || now.Before(leaf.NotBefore) {
		fail("identidad", fmt.Errorf("certificado fuera de vigencia"))
	}

	if cfg.TLS.ClientCAPath == "" {
		fmt.Println("Sin TLS_CLIENT_CA_PATH: solo autenticación por JWT")
		return
	}
	if _, err := certs.LoadCAPool(cfg.TLS.ClientCAPath); err != nil {
		fail("CA de clientes", err)
	}
	fmt.Printf("CA de clientes: %s (rol por defecto %q)\n", cfg.TLS.ClientCAPath, cfg.TLS.CertDefaultRole)
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "ERROR %s: %v\n", step, err)
	os.Exit(1)
}
