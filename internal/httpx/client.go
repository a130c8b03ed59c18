package httpx

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/ashik5757/Minio-Private-Bucket/internal/constants"
)

// NewTransferClient creates an HTTP client optimized for streaming object
// transfers. It is handed to the AWS SDK so every list/fetch call shares
// one connection pool.
//
// Key characteristics:
//   - Large connection pool for concurrent folder downloads
//   - No client-level timeout; per-operation deadlines come from contexts
//   - HTTP/2 support with a runtime toggle (DISABLE_HTTP2 env var)
//   - Disabled transparent compression (object bytes are streamed as-is
//     into an already-compressed archive)
func NewTransferClient() *nethttp.Client {
	tr := &nethttp.Transport{
		Proxy: nethttp.ProxyFromEnvironment,

		MaxIdleConns:        constants.HTTPMaxIdleConns,
		MaxIdleConnsPerHost: constants.HTTPMaxIdleConnsPerHost,
		MaxConnsPerHost:     constants.HTTPMaxConnsPerHost,
		IdleConnTimeout:     constants.HTTPIdleConnTimeout,

		TLSHandshakeTimeout:   constants.HTTPTLSHandshakeTimeout,
		ExpectContinueTimeout: constants.HTTPExpectContinueTimeout,
		ResponseHeaderTimeout: constants.HTTPResponseHeaderTimeout,

		DisableCompression: true,
	}

	if os.Getenv("DISABLE_HTTP2") == "true" {
		tr.ForceAttemptHTTP2 = false
		tr.TLSNextProto = map[string]func(string, *tls.Conn) nethttp.RoundTripper{}
	} else {
		// http2.ConfigureTransport registers the h2 upgrade on the
		// existing transport without replacing its pool settings.
		if err := http2.ConfigureTransport(tr); err == nil {
			tr.ForceAttemptHTTP2 = true
		}
	}

	return &nethttp.Client{Transport: tr}
}
