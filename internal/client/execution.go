package client

import (
	"bytes"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"

	"github.com/antonio-alexander/go-employee-directory/internal/data"
)

type multipartPayload struct {
	bytes       []byte
	contentType string
}

// newMultipartPayload builds the form the upload endpoint expects: a
// single part named "file" carrying the csv with a text/csv content type.
func newMultipartPayload(filename string, csvBytes []byte) (*multipartPayload, error) {
	buffer := &bytes.Buffer{}
	writer := multipart.NewWriter(buffer)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			data.ParameterFile, filename))
	header.Set("Content-Type", data.ContentTypeCsv)
	part, err := writer.CreatePart(header)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(csvBytes); err != nil {
		return nil, err
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}
	return &multipartPayload{
		bytes:       buffer.Bytes(),
		contentType: writer.FormDataContentType(),
	}, nil
}

func getCertificates(sslCrtFile, sslKeyFile string) ([]tls.Certificate, error) {
	if sslCrtFile == "" || sslKeyFile == "" {
		return []tls.Certificate{}, nil
	}
	bytesCert, err := os.ReadFile(sslCrtFile)
	if err != nil {
		return nil, err
	}
	bytesKey, err := os.ReadFile(sslKeyFile)
	if err != nil {
		return nil, err
	}
	certificate, err := tls.X509KeyPair(bytesCert, bytesKey)
	if err != nil {
		return nil, err
	}
	return []tls.Certificate{certificate}, nil
}

func getCaCert(sslCaFile string) (*x509.CertPool, error) {
	caCertPool := x509.NewCertPool()
	if sslCaFile != "" {
		bytes, err := os.ReadFile(sslCaFile)
		if err != nil {
			return nil, err
		}
		caCertPool.AppendCertsFromPEM(bytes)
	}
	return caCertPool, nil
}

func getTlsConfig(sslCaFile, sslCrtFile, sslKeyFile string) (*http.Transport, error) {
	if sslCaFile == "" || sslCrtFile == "" || sslKeyFile == "" {
		return &http.Transport{}, nil
	}
	caCertPool, err := getCaCert(sslCaFile)
	if err != nil {
		return nil, err
	}
	certificates, err := getCertificates(sslCrtFile, sslKeyFile)
	if err != nil {
		return nil, err
	}
	return &http.Transport{
		TLSClientConfig: &tls.Config{
			// TLS versions below 1.2 are considered insecure
			// see https://www.rfc-editor.org/rfc/rfc7525.txt for details
			MinVersion:   tls.VersionTLS12,
			RootCAs:      caCertPool,
			Certificates: certificates,
		},
	}, nil
}
