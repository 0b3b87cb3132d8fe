package client

import (
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"net/http"
	"os"

	"github.com/antonio-alexander/go-employees/internal/data"

	"github.com/pkg/errors"
)

// statusError converts a non-success response into one of the error kinds
// so callers can use errors.Is the same way they would with the logic
func statusError(statusCode int, body []byte) error {
	var e data.Error

	message := string(body)
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		message = e.Error
	}
	switch statusCode {
	default:
		return errors.Errorf("status code: %d; %s", statusCode, message)
	case http.StatusNotFound:
		return errors.Wrap(data.ErrNotFound, message)
	case http.StatusBadRequest:
		return errors.Wrap(data.ErrInvalidRequest, message)
	case http.StatusForbidden:
		return errors.Wrap(data.ErrMutationDisabled, message)
	case http.StatusServiceUnavailable:
		return errors.Wrap(data.ErrStorageUnavailable, message)
	}
}

// getTransport returns a transport using mutual tls when all of the files
// are provided, otherwise a plain transport
func getTransport(sslCaFile, sslCrtFile, sslKeyFile string) (*http.Transport, error) {
	if sslCaFile == "" || sslCrtFile == "" || sslKeyFile == "" {
		return &http.Transport{}, nil
	}
	caBytes, err := os.ReadFile(sslCaFile)
	if err != nil {
		return nil, errors.Wrap(err, "ca file")
	}
	caCertPool := x509.NewCertPool()
	if !caCertPool.AppendCertsFromPEM(caBytes) {
		return nil, errors.Errorf("no certificates found in %s", sslCaFile)
	}
	certificate, err := tls.LoadX509KeyPair(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, errors.Wrap(err, "key pair")
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			MinVersion:   tls.VersionTLS12,
			RootCAs:      caCertPool,
			Certificates: []tls.Certificate{certificate},
		},
	}, nil
}
