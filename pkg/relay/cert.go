package relay

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"math/big"
	"time"
)

// CertName is the DNS name embedded in relay certificates.
const CertName = "erarewards-relay"

// GenerateCertificate creates a self-signed Ed25519 TLS certificate valid for
// the given duration. It is usable for both server and client authentication.
func GenerateCertificate(validity time.Duration) (*tls.Certificate, error) {
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate key: %w", err)
	}

	serialNumber, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, fmt.Errorf("failed to generate serial number: %w", err)
	}

	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName: CertName,
		},
		DNSNames:  []string{CertName},
		NotBefore: time.Now().Add(-time.Minute),
		NotAfter:  time.Now().Add(validity),
		KeyUsage:  x509.KeyUsageDigitalSignature,
		ExtKeyUsage: []x509.ExtKeyUsage{
			x509.ExtKeyUsageServerAuth,
			x509.ExtKeyUsageClientAuth,
		},
		SignatureAlgorithm:    x509.PureEd25519,
		PublicKeyAlgorithm:    x509.Ed25519,
		BasicConstraintsValid: true,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, pub, priv)
	if err != nil {
		return nil, fmt.Errorf("failed to create certificate: %w", err)
	}

	cert, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("failed to parse certificate: %w", err)
	}

	return &tls.Certificate{
		Certificate: [][]byte{certDER},
		PrivateKey:  priv,
		Leaf:        cert,
	}, nil
}

// ValidateCertificate checks that a peer certificate is an Ed25519 relay
// certificate within its validity period.
func ValidateCertificate(cert *x509.Certificate) error {
	if cert.SignatureAlgorithm != x509.PureEd25519 {
		return fmt.Errorf("%w: expected Ed25519 signature", ErrInvalidCertificate)
	}
	if _, ok := cert.PublicKey.(ed25519.PublicKey); !ok {
		return fmt.Errorf("%w: public key is not Ed25519", ErrInvalidCertificate)
	}
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != CertName {
		return fmt.Errorf("%w: unexpected DNS names %v", ErrInvalidCertificate, cert.DNSNames)
	}

	now := time.Now()
	if now.Before(cert.NotBefore) {
		return fmt.Errorf("%w: certificate is not yet valid", ErrInvalidCertificate)
	}
	if now.After(cert.NotAfter) {
		return fmt.Errorf("%w: certificate has expired", ErrInvalidCertificate)
	}
	return nil
}

func verifyPeer(rawCerts [][]byte, _ [][]*x509.Certificate) error {
	if len(rawCerts) == 0 {
		return fmt.Errorf("%w: no peer certificate provided", ErrInvalidCertificate)
	}
	c, err := x509.ParseCertificate(rawCerts[0])
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCertificate, err)
	}
	return ValidateCertificate(c)
}
