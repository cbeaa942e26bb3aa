package tls

import (
	"crypto/tls"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// Options selects the API's TLS material: explicit cert/key files, or
// self-signed generation into dir when AutoGenerate is set.
type Options struct {
	CertFile     string
	KeyFile      string
	AutoGenerate bool
	Dir          string // destination for generated material
}

// ServerConfig resolves the *tls.Config for the HTTPS listener. It returns
// nil when no TLS is configured, which callers treat as plain HTTP.
func (o Options) ServerConfig() (*tls.Config, error) {
	certFile, keyFile := o.CertFile, o.KeyFile

	if certFile == "" && keyFile == "" {
		if !o.AutoGenerate {
			return nil, nil
		}
		dir := o.Dir
		if dir == "" {
			dir = "."
		}
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, err
		}
		certFile = filepath.Join(dir, "warden.crt")
		keyFile = filepath.Join(dir, "warden.key")
		if _, err := os.Stat(certFile); os.IsNotExist(err) {
			err := GenerateSelfSigned(CertConfig{
				CommonName:  "warden",
				DNSNames:    []string{"localhost"},
				IPAddresses: []string{"127.0.0.1", "::1"},
				NotAfter:    time.Now().AddDate(1, 0, 0),
				CertPath:    certFile,
				KeyPath:     keyFile,
			})
			if err != nil {
				return nil, err
			}
		}
	}
	if certFile == "" || keyFile == "" {
		return nil, errors.New("both cert_file and key_file must be set")
	}

	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return nil, err
	}
	return &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	}, nil
}
