// Package certs carga la identidad TLS del servidor desde un .p12 y la CA de clientes.
package certs

import (
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"os"

	"golang.org/x/crypto/pkcs12"
)

// LoadP12 decodifica un archivo PKCS#12 (certificado + llave privada) en un tls.Certificate.
func LoadP12(path, password string) (tls.Certificate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("leer p12: %w", err)
	}
	key, cert, err := pkcs12.Decode(data, password)
	if err != nil {
		return tls.Certificate{}, fmt.Errorf("decodificar p12 (contraseña o formato): %w", err)
	}
	return tls.Certificate{
		Certificate: [][]byte{cert.Raw},
		PrivateKey:  key,
		Leaf:        cert,
	}, nil
}

// LoadCAPool lee uno o varios certificados PEM de CA.
func LoadCAPool(path string) (*x509.CertPool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("leer CA: %w", err)
	}
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(data) {
		return nil, fmt.Errorf("CA %s: no contiene certificados PEM", path)
	}
	return pool, nil
}

// ServerConfig arma el tls.Config del servidor. Con caPath no vacío se piden certificados
// de cliente y se verifican contra esa CA si el cliente los presenta.
func ServerConfig(p12Path, password, caPath string) (*tls.Config, error) {
	cert, err := LoadP12(p12Path, password)
	if err != nil {
		return nil, err
	}
	cfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{cert},
	}
	if caPath != "" {
		pool, err := LoadCAPool(caPath)
		if err != nil {
			return nil, err
		}
		cfg.ClientCAs = pool
		cfg.ClientAuth = tls.VerifyClientCertIfGiven
	}
	return cfg, nil
}
