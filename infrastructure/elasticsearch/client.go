// Package elasticsearch builds a verified go-elasticsearch client.
package elasticsearch

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	es "github.com/elastic/go-elasticsearch/v8"

	"github.com/Mod5ied/eagle-server/infrastructure/logger"
	"github.com/Mod5ied/eagle-server/infrastructure/retry"
)

// NewClient creates a client and pings the cluster with exponential backoff
// until it answers or the retry budget is spent.
func NewClient(ctx context.Context, cfg Config, log logger.Logger) (*es.Client, error) {
	cfg.SetDefaults()

	url := normalizeURL(cfg.URL)

	transport := cfg.Transport
	if transport == nil {
		t, err := createTransport(cfg.TLS)
		if err != nil {
			return nil, err
		}
		transport = t
	}

	clientConfig := es.Config{
		Addresses:  []string{url},
		Transport:  transport,
		MaxRetries: cfg.MaxRetries,
	}
	switch {
	case cfg.APIKey != "":
		clientConfig.APIKey = cfg.APIKey
	case cfg.Username != "" && cfg.Password != "":
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	log.Info("Verifying Elasticsearch connection", logger.String("url", url))

	if err = retry.Retry(ctx, *cfg.RetryConfig, func() error {
		return ping(ctx, client, cfg.PingTimeout, log)
	}); err != nil {
		return nil, fmt.Errorf("failed to connect to elasticsearch: %w", err)
	}

	log.Info("Elasticsearch connection established", logger.String("url", url))
	return client, nil
}

func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

func createTransport(cfg *TLSConfig) (*http.Transport, error) {
	transport := &http.Transport{}
	if cfg == nil || !cfg.Enabled {
		return transport, nil
	}

	tlsCfg := &tls.Config{
		InsecureSkipVerify: cfg.InsecureSkipVerify, //nolint:gosec // opt-in for development clusters
		MinVersion:         tls.VersionTLS12,
	}

	if cfg.CertFile != "" && cfg.KeyFile != "" {
		cert, err := tls.LoadX509KeyPair(cfg.CertFile, cfg.KeyFile)
		if err != nil {
			return nil, fmt.Errorf("load client certificate: %w", err)
		}
		tlsCfg.Certificates = []tls.Certificate{cert}
	}

	if cfg.CAFile != "" {
		pem, err := os.ReadFile(cfg.CAFile)
		if err != nil {
			return nil, fmt.Errorf("read CA file: %w", err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("no certificates found in %s", cfg.CAFile)
		}
		tlsCfg.RootCAs = pool
	}

	transport.TLSClientConfig = tlsCfg
	return transport, nil
}

func ping(ctx context.Context, client *es.Client, timeout time.Duration, log logger.Logger) error {
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	res, err := client.Ping(client.Ping.WithContext(pingCtx))
	if err != nil {
		log.Debug("Elasticsearch ping failed", logger.Error(err))
		return fmt.Errorf("ping failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		log.Debug("Elasticsearch ping returned error",
			logger.String("status", res.Status()),
			logger.String("body", string(body)),
		)
		return fmt.Errorf("ping returned error [%s]: %s", res.Status(), body)
	}

	return nil
}
