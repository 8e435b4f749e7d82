package snowflake

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
)

// downloadChunk retrieves one out-of-band result chunk and decodes its raw
// row array. When qrmk is set (the chunk is stored encrypted at rest), the
// customer-key headers are forwarded so the storage-side proxy can decrypt
// on the way out; this package never handles the encryption itself.
func downloadChunk(ctx context.Context, httpClient *http.Client, chunkURL string, extraHeaders map[string]string, qrmk string) ([][]*string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, chunkURL, nil)
	if err != nil {
		return nil, newErr(KindURL, "invalid chunk URL: "+chunkURL, err)
	}
	for k, v := range extraHeaders {
		req.Header.Set(k, v)
	}
	if qrmk != "" {
		req.Header.Set("x-amz-server-side-encryption-customer-key", qrmk)
		req.Header.Set("x-amz-server-side-encryption-customer-algorithm", "AES256")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, newErr(KindChunkDownload, "failed to download chunk", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, newErr(KindChunkDownload, "failed to read chunk body", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, newErr(KindChunkDownload, "chunk download returned status "+resp.Status, nil)
	}

	// Chunks are delivered as a bare JSON array of rows, unlike the
	// query-request/poll envelope.
	var rows [][]*string
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, newJSONErr(err, string(body))
	}
	return rows, nil
}
