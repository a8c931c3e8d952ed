package certs_test

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/pkg/certs"
)

func writeSelfSignedCA(t *testing.T) string {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "inventario-ledger-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "ca.pem")
	require.NoError(t, os.WriteFile(path, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	return path
}

func TestLoadCAPool(t *testing.T) {
	pool, err := certs.LoadCAPool(writeSelfSignedCA(t))
	require.NoError(t, err)
	assert.NotNil(t, pool)
}

func TestLoadCAPool_SinPEM(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vacio.pem")
	require.NoError(t, os.WriteFile(path, []byte("nada"), 0o600))

	_, err := certs.LoadCAPool(path)
	assert.Error(t, err)
}

func TestLoadP12_ArchivoInexistente(t *testing.T) {
	_, err := certs.LoadP12(filepath.Join(t.TempDir(), "no.p12"), "123456")
	assert.ErrorContains(t, err, "leer p12")
}

func TestLoadP12_ContenidoInvalido(t *testing.T) {
	path := filepath.Join(t.TempDir(), "roto.p12")
	require.NoError(t, os.WriteFile(path, []byte("no es pkcs12"), 0o600))

	_, err := certs.LoadP12(path, "123456")
	assert.ErrorContains(t, err, "decodificar p12")
}
