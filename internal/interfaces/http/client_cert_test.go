package http_test

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/json"
	"encoding/pem"
	"io"
	"math/big"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/pkg/certs"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers: CA de prueba y servidor TLS
// ──────────────────────────────────────────────────────────────────────────────

type testCA struct {
	cert *x509.Certificate
	key  *ecdsa.PrivateKey
	pem  []byte
}

var serial int64

func newTestCA(t *testing.T) *testCA {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	serial++
	tpl := &x509.Certificate{
		SerialNumber:          big.NewInt(serial),
		Subject:               pkix.Name{CommonName: "CA pruebas ledger"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, tpl, &key.PublicKey, key)
	require.NoError(t, err)
	cert, err := x509.ParseCertificate(der)
	require.NoError(t, err)
	return &testCA{cert: cert, key: key, pem: pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})}
}

// issue firma un certificado hoja para servidor (con IP 127.0.0.1) o para cliente.
func (ca *testCA) issue(t *testing.T, cn string, server bool) tls.Certificate {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	serial++
	tpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: cn, Organization: []string{"Bodega Central"}},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth},
	}
	if server {
		tpl.ExtKeyUsage = []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth}
		tpl.IPAddresses = []net.IP{net.ParseIP("127.0.0.1")}
	}
	der, err := x509.CreateCertificate(rand.Reader, tpl, ca.cert, &key.PublicKey, ca.key)
	require.NoError(t, err)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}
}

// serveTLS expone la app en 127.0.0.1 con TLS, pidiendo certificado de cliente firmado por ca.
func serveTLS(t *testing.T, f *apiFixture, ca *testCA) string {
	t.Helper()
	caPath := filepath.Join(t.TempDir(), "clientes-ca.pem")
	require.NoError(t, os.WriteFile(caPath, ca.pem, 0o600))
	pool, err := certs.LoadCAPool(caPath)
	require.NoError(t, err)

	cfg := &tls.Config{
		MinVersion:   tls.VersionTLS12,
		Certificates: []tls.Certificate{ca.issue(t, "localhost", true)},
		ClientCAs:    pool,
		ClientAuth:   tls.VerifyClientCertIfGiven,
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	go func() { _ = f.app.Listener(tls.NewListener(ln, cfg)) }()
	t.Cleanup(func() { _ = f.app.Shutdown() })
	return "https://" + ln.Addr().String()
}

func tlsClient(ca *testCA, cert *tls.Certificate) *http.Client {
	roots := x509.NewCertPool()
	roots.AddCert(ca.cert)
	cfg := &tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12}
	if cert != nil {
		cfg.Certificates = []tls.Certificate{*cert}
	}
	return &http.Client{Timeout: 5 * time.Second, Transport: &http.Transport{TLSClientConfig: cfg}}
}

func call(t *testing.T, client *http.Client, method, url string, body any) (*http.Response, []byte) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, raw
}

// ──────────────────────────────────────────────────────────────────────────────
// Autenticación por certificado de cliente
// ──────────────────────────────────────────────────────────────────────────────

func TestAPI_CertificadoDeClienteAutenticaSinToken(t *testing.T) {
	f := newAPIWithCertRole(t, "operator")
	ca := newTestCA(t)
	base := serveTLS(t, f, ca)

	resp, raw := f.do(t, http.MethodPost, "/api/products", f.admin, map[string]any{
		"sku": "SKU-1", "name": "Café molido", "price": "12500.50", "quantity": 10,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))

	cert := ca.issue(t, "bascula-01", false)
	client := tlsClient(ca, &cert)

	resp, raw = call(t, client, http.MethodPost, base+"/api/inventory/transactions", dto.RecordTransactionRequest{
		SKU: "SKU-1", Type: "OUT", Quantity: 3, Reason: "despacho automático",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(raw))
	rec := decode[dto.TransactionRecordedResponse](t, raw)
	assert.Equal(t, "cert:bascula-01", rec.Transaction.PerformedBy)
	assert.Equal(t, int64(7), rec.ResultingStock)

	// el rol del certificado es operator: rutas de admin quedan cerradas
	resp, raw = call(t, client, http.MethodGet, base+"/api/users", nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, string(raw))
}

func TestAPI_CertificadoSinCommonNameRetorna401(t *testing.T) {
	f := newAPIWithCertRole(t, "operator")
	ca := newTestCA(t)
	base := serveTLS(t, f, ca)

	cert := ca.issue(t, "", false)
	resp, raw := call(t, tlsClient(ca, &cert), http.MethodGet, base+"/api/products", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "INVALID_CERT", errorCode(t, raw))
}

func TestAPI_TLSSinCertificadoExigeToken(t *testing.T) {
	f := newAPIWithCertRole(t, "operator")
	ca := newTestCA(t)
	base := serveTLS(t, f, ca)
	client := tlsClient(ca, nil)

	resp, raw := call(t, client, http.MethodGet, base+"/api/products", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "MISSING_TOKEN", errorCode(t, raw))
}

func TestAPI_CertificadoDeOtraCAEsRechazado(t *testing.T) {
	f := newAPIWithCertRole(t, "operator")
	ca := newTestCA(t)
	base := serveTLS(t, f, ca)

	other := newTestCA(t)
	cert := other.issue(t, "intruso", false)
	req, err := http.NewRequest(http.MethodGet, base+"/api/products", nil)
	require.NoError(t, err)
	_, err = tlsClient(ca, &cert).Do(req)
	assert.Error(t, err, "el handshake debe fallar con un certificado no emitido por la CA configurada")
}
