package editor

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"startpage/internal/common"
)

// ImageProber checks that a URL points at a loadable image
type ImageProber interface {
	ProbeImage(ctx context.Context, src string) error
}

// HTTPProber probes remote images with a HEAD request
type HTTPProber struct {
	client *http.Client
}

// NewHTTPProber creates a prober whose requests time out after timeout
func NewHTTPProber(timeout time.Duration) *HTTPProber {
	if timeout <= 0 {
		timeout = common.DefaultProbeTimeout
	}
	return &HTTPProber{client: &http.Client{Timeout: timeout}}
}

func (p *HTTPProber) ProbeImage(ctx context.Context, src string) error {
	if strings.HasPrefix(src, "data:") {
		if strings.HasPrefix(src, "data:image/") {
			return nil
		}
		return fmt.Errorf("data URL is not an image")
	}

	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("not an http(s) URL")
	}

	resp, err := p.do(ctx, http.MethodHead, src)
	if err == nil && resp.StatusCode == http.StatusMethodNotAllowed {
		resp, err = p.do(ctx, http.MethodGet, src)
	}
	if err != nil {
		return fmt.Errorf("image failed to load: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("image failed to load: %s", resp.Status)
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" && !isImageType(ct) {
		return fmt.Errorf("unsupported content type %q", ct)
	}

	return nil
}

func (p *HTTPProber) do(ctx context.Context, method, src string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, src, nil)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	resp.Body.Close()
	return resp, nil
}

// EncodeUpload validates an uploaded background image and returns it as a
// data URL. The declared content type is checked against the sniffed one
// when it is missing or generic.
func EncodeUpload(name, contentType string, data []byte, maxBytes int64) (string, error) {
	if len(data) == 0 {
		return "", &common.AssetError{Source: name, Reason: "file is empty"}
	}

	if int64(len(data)) > maxBytes {
		return "", &common.AssetError{
			Source: name,
			Reason: fmt.Sprintf("file is larger than %dMB", maxBytes/(1024*1024)),
		}
	}

	if !isImageType(contentType) {
		contentType = http.DetectContentType(data)
	}
	if !isImageType(contentType) {
		return "", &common.AssetError{Source: name, Reason: "file is not an image"}
	}

	mediaType, _, _ := mime.ParseMediaType(contentType)
	return "data:" + mediaType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func isImageType(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}
