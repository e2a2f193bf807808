package backend

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"math/big"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// generateCACert returns a self-signed CA certificate in PEM form.
func generateCACert(t *testing.T) []byte {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "Test CA"},
		NotBefore:             time.Now(),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("failed to create certificate: %v", err)
	}
	return pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
}

func TestNewHTTPClient_NoCA(t *testing.T) {
	c, err := NewHTTPClient("", 3*time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Timeout != 3*time.Second {
		t.Errorf("timeout = %v; want 3s", c.Timeout)
	}
	if c.Transport != nil {
		t.Errorf("expected default transport, got %T", c.Transport)
	}
}

func TestNewHTTPClient_ReadCAError(t *testing.T) {
	_, err := NewHTTPClient("nonexistent.pem", time.Second)
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected file not exist error, got %v", err)
	}
}

func TestNewHTTPClient_InvalidCA(t *testing.T) {
	caPath := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(caPath, []byte("invalid pem"), 0600); err != nil {
		t.Fatalf("failed to write CA file: %v", err)
	}
	_, err := NewHTTPClient(caPath, time.Second)
	if err == nil || err.Error() != "failed to parse CA cert" {
		t.Errorf("expected parse CA error, got %v", err)
	}
}

func TestNewHTTPClient_CustomCA(t *testing.T) {
	caPath := filepath.Join(t.TempDir(), "ca.pem")
	if err := os.WriteFile(caPath, generateCACert(t), 0600); err != nil {
		t.Fatalf("failed to write CA file: %v", err)
	}

	c, err := NewHTTPClient(caPath, time.Second)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	tcfg := c.Transport.(*http.Transport).TLSClientConfig
	found := false
	for _, subj := range tcfg.RootCAs.Subjects() {
		if bytes.Contains(subj, []byte("Test CA")) {
			found = true
			break
		}
	}
	if !found {
		t.Error("CA certificate not found in RootCAs")
	}
}
