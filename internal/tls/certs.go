// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SolHub Contributors

// Package tls provides serving certificates for the SolHub web listener:
// operator-supplied key pairs, or a self-signed development CA and server
// certificate kept in the certs directory.
package tls

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	cryptotls "crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"errors"
	"io/fs"
	"math/big"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/samber/oops"
)

const (
	caBaseName     = "root-ca"
	serverBaseName = "web"

	caLifetime     = 10 * 365 * 24 * time.Hour
	serverLifetime = 365 * 24 * time.Hour

	// RenewBefore is how close to expiry a generated server certificate
	// may get before it is replaced.
	RenewBefore = 30 * 24 * time.Hour
)

// CA holds a certificate authority certificate and private key.
type CA struct {
	Certificate *x509.Certificate
	PrivateKey  *ecdsa.PrivateKey
}

// ServerCert holds a server certificate and private key.
type ServerCert struct {
	Certificate *x509.Certificate
	PrivateKey  *ecdsa.PrivateKey
}

// GenerateCA creates a root CA for signing development certificates.
func GenerateCA(now time.Time) (*CA, error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, oops.Code("TLS_KEYGEN_FAILED").With("operation", "generate CA key").Wrap(err)
	}

	serial, err := newSerial()
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"SolHub"},
			CommonName:   "SolHub Development CA",
		},
		NotBefore:             now.Add(-time.Minute),
		NotAfter:              now.Add(caLifetime),
		IsCA:                  true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign,
		BasicConstraintsValid: true,
	}

	cert, err := sign(template, template, &key.PublicKey, key)
	if err != nil {
		return nil, err
	}
	return &CA{Certificate: cert, PrivateKey: key}, nil
}

// GenerateServerCert creates a web server certificate signed by ca. It is
// always valid for localhost, 127.0.0.1 and ::1; hosts adds DNS names or
// IP addresses.
func GenerateServerCert(ca *CA, hosts []string, now time.Time) (*ServerCert, error) {
	if ca == nil {
		return nil, oops.Code("TLS_INVALID_CA").Errorf("CA is required")
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, oops.Code("TLS_KEYGEN_FAILED").With("operation", "generate server key").Wrap(err)
	}

	serial, err := newSerial()
	if err != nil {
		return nil, err
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			Organization: []string{"SolHub"},
			CommonName:   "solhub-web",
		},
		NotBefore:   now.Add(-time.Minute),
		NotAfter:    now.Add(serverLifetime),
		KeyUsage:    x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		DNSNames:    []string{"localhost"},
		IPAddresses: []net.IP{net.IPv4(127, 0, 0, 1), net.IPv6loopback},
	}
	for _, h := range hosts {
		if h == "" || h == "localhost" {
			continue
		}
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
			continue
		}
		template.DNSNames = append(template.DNSNames, h)
	}

	cert, err := sign(template, ca.Certificate, &key.PublicKey, ca.PrivateKey)
	if err != nil {
		return nil, err
	}
	return &ServerCert{Certificate: cert, PrivateKey: key}, nil
}

// SaveCertificates writes the CA as root-ca.crt/.key and, when serverCert
// is non-nil, the server pair as web.crt/.key.
func SaveCertificates(certsDir string, ca *CA, serverCert *ServerCert) error {
	if err := os.MkdirAll(certsDir, 0o700); err != nil {
		return oops.Code("TLS_SAVE_FAILED").With("path", certsDir).Wrap(err)
	}

	if err := savePair(certsDir, caBaseName, ca.Certificate, ca.PrivateKey); err != nil {
		return err
	}
	if serverCert != nil {
		if err := savePair(certsDir, serverBaseName, serverCert.Certificate, serverCert.PrivateKey); err != nil {
			return err
		}
	}
	return nil
}

// LoadCA loads the CA saved by SaveCertificates.
func LoadCA(certsDir string) (*CA, error) {
	cert, key, err := loadPair(certsDir, caBaseName)
	if err != nil {
		return nil, err
	}
	if !cert.IsCA {
		return nil, oops.Code("TLS_INVALID_CA").With("dir", certsDir).Errorf("root-ca.crt is not a CA certificate")
	}
	return &CA{Certificate: cert, PrivateKey: key}, nil
}

// LoadServerCert loads the server pair saved by SaveCertificates.
func LoadServerCert(certsDir string) (*ServerCert, error) {
	cert, key, err := loadPair(certsDir, serverBaseName)
	if err != nil {
		return nil, err
	}
	return &ServerCert{Certificate: cert, PrivateKey: key}, nil
}

// KeyPairConfig returns a server config for an operator-supplied PEM
// certificate and key.
func KeyPairConfig(certFile, keyFile string) (*cryptotls.Config, error) {
	pair, err := cryptotls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, oops.Code("TLS_LOAD_FAILED").
			With("cert_file", certFile).
			With("key_file", keyFile).
			Wrap(err)
	}
	return serverConfig(pair), nil
}

// SelfSignedConfig returns a server config backed by the development CA in
// certsDir. The CA is created on first use. The server certificate is
// regenerated when it is missing, expires within RenewBefore, or does not
// cover every name in hosts.
func SelfSignedConfig(certsDir string, hosts []string, now time.Time) (*cryptotls.Config, error) {
	ca, err := LoadCA(certsDir)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		if ca, err = GenerateCA(now); err != nil {
			return nil, err
		}
		if err := SaveCertificates(certsDir, ca, nil); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, err
	}

	server, err := LoadServerCert(certsDir)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	if server == nil || needsRenewal(server.Certificate, ca.Certificate, hosts, now) {
		if server, err = GenerateServerCert(ca, hosts, now); err != nil {
			return nil, err
		}
		if err := SaveCertificates(certsDir, ca, server); err != nil {
			return nil, err
		}
	}

	return serverConfig(cryptotls.Certificate{
		Certificate: [][]byte{server.Certificate.Raw, ca.Certificate.Raw},
		PrivateKey:  server.PrivateKey,
		Leaf:        server.Certificate,
	}), nil
}

func needsRenewal(cert, ca *x509.Certificate, hosts []string, now time.Time) bool {
	if now.Add(RenewBefore).After(cert.NotAfter) {
		return true
	}
	if cert.CheckSignatureFrom(ca) != nil {
		return true
	}
	for _, h := range hosts {
		if h != "" && cert.VerifyHostname(h) != nil {
			return true
		}
	}
	return false
}

func serverConfig(pair cryptotls.Certificate) *cryptotls.Config {
	return &cryptotls.Config{
		MinVersion:   cryptotls.VersionTLS12,
		Certificates: []cryptotls.Certificate{pair},
	}
}

func newSerial() (*big.Int, error) {
	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, oops.Code("TLS_KEYGEN_FAILED").With("operation", "generate serial").Wrap(err)
	}
	return serial, nil
}

func sign(template, parent *x509.Certificate, pub *ecdsa.PublicKey, priv *ecdsa.PrivateKey) (*x509.Certificate, error) {
	der, err := x509.CreateCertificate(rand.Reader, template, parent, pub, priv)
	if err != nil {
		return nil, oops.Code("TLS_SIGN_FAILED").With("subject", template.Subject.CommonName).Wrap(err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, oops.Code("TLS_SIGN_FAILED").With("subject", template.Subject.CommonName).Wrap(err)
	}
	return cert, nil
}

func savePair(dir, base string, cert *x509.Certificate, key *ecdsa.PrivateKey) error {
	keyBytes, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return oops.Code("TLS_SAVE_FAILED").With("name", base).Wrap(err)
	}
	if err := writePEM(filepath.Join(dir, base+".crt"), "CERTIFICATE", cert.Raw); err != nil {
		return err
	}
	return writePEM(filepath.Join(dir, base+".key"), "EC PRIVATE KEY", keyBytes)
}

func writePEM(path, blockType string, der []byte) error {
	f, err := os.OpenFile(filepath.Clean(path), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return oops.Code("TLS_SAVE_FAILED").With("path", path).Wrap(err)
	}

	if err := pem.Encode(f, &pem.Block{Type: blockType, Bytes: der}); err != nil {
		_ = f.Close()
		return oops.Code("TLS_SAVE_FAILED").With("path", path).Wrap(err)
	}

	if err := f.Close(); err != nil {
		return oops.Code("TLS_SAVE_FAILED").With("path", path).Wrap(err)
	}
	return nil
}

func loadPair(dir, base string) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	certPath := filepath.Clean(filepath.Join(dir, base+".crt"))
	keyPath := filepath.Clean(filepath.Join(dir, base+".key"))

	certPEM, err := os.ReadFile(certPath)
	if err != nil {
		return nil, nil, oops.Code("TLS_LOAD_FAILED").With("path", certPath).Wrap(err)
	}
	keyPEM, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, nil, oops.Code("TLS_LOAD_FAILED").With("path", keyPath).Wrap(err)
	}

	block, _ := pem.Decode(certPEM)
	if block == nil {
		return nil, nil, oops.Code("TLS_LOAD_FAILED").With("path", certPath).Errorf("no PEM block found")
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return nil, nil, oops.Code("TLS_LOAD_FAILED").With("path", certPath).Wrap(err)
	}

	block, _ = pem.Decode(keyPEM)
	if block == nil {
		return nil, nil, oops.Code("TLS_LOAD_FAILED").With("path", keyPath).Errorf("no PEM block found")
	}
	key, err := x509.ParseECPrivateKey(block.Bytes)
	if err != nil {
		return nil, nil, oops.Code("TLS_LOAD_FAILED").With("path", keyPath).Wrap(err)
	}

	return cert, key, nil
}
