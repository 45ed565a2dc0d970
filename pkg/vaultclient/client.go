package vaultclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"

	"github.com/dmitrijs2005/cuivault/internal/common"
)

// Receipt is the vault's answer to an upload.
type Receipt struct {
	VaultID   string    `json:"vaultId"`
	SHA256    string    `json:"sha256"`
	Size      int64     `json:"size"`
	MimeType  string    `json:"mimeType"`
	CreatedAt time.Time `json:"createdAt"`
}

// Document is a viewed record.
type Document struct {
	MimeType string
	Content  []byte
}

// Client calls the vault HTTP API. Errors wrap the common sentinel matching
// the response status.
type Client struct {
	base string
	hc   *http.Client
}

// NewClient returns a Client for baseURL. A nil hc uses a client with a
// one-minute timeout.
func NewClient(baseURL string, hc *http.Client) (*Client, error) {
	base, err := normalizeBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if hc == nil {
		hc = &http.Client{Timeout: time.Minute}
	}
	return &Client{base: base, hc: hc}, nil
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Upload streams r as the single "file" part. An empty mimeType lets the
// vault store application/octet-stream.
func (c *Client) Upload(ctx context.Context, token, filename, mimeType string, r io.Reader) (*Receipt, error) {
	pr, pw := io.Pipe()
	defer pr.Close()
	mw := multipart.NewWriter(pw)

	go func() {
		h := textproto.MIMEHeader{}
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(filename)))
		if mimeType != "" {
			h.Set("Content-Type", mimeType)
		}
		part, err := mw.CreatePart(h)
		if err == nil {
			_, err = io.Copy(part, r)
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/v1/files/upload", pr)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return nil, statusError(resp)
	}

	var out Receipt
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode receipt: %w", err)
	}
	return &out, nil
}

// View fetches and returns a record using a view token.
func (c *Client) View(ctx context.Context, vaultID, token string) (*Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/v1/files/"+vaultID, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("view: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	content, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	return &Document{MimeType: resp.Header.Get("Content-Type"), Content: content}, nil
}

// Delete removes a record with the administrative secret. It reports false
// when the record did not exist.
func (c *Client) Delete(ctx context.Context, vaultID, adminSecret string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.base+"/v1/files/"+vaultID, nil)
	if err != nil {
		return false, err
	}
	req.Header.Set(common.AdminSecretHeaderName, adminSecret)

	resp, err := c.hc.Do(req)
	if err != nil {
		return false, fmt.Errorf("delete: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNoContent:
		return true, nil
	case http.StatusNotFound:
		return false, nil
	default:
		return false, statusError(resp)
	}
}

// Health returns nil when the vault answers its health route.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("health: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	return nil
}

func sentinelFor(status int) error {
	switch status {
	case http.StatusBadRequest:
		return common.ErrBadRequest
	case http.StatusUnauthorized:
		return common.ErrUnauthenticated
	case http.StatusForbidden:
		return common.ErrForbidden
	case http.StatusNotFound:
		return common.ErrorNotFound
	case http.StatusRequestEntityTooLarge:
		return common.ErrPayloadTooLarge
	case http.StatusTooManyRequests:
		return common.ErrRateLimited
	default:
		return common.ErrorInternal
	}
}

func statusError(resp *http.Response) error {
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)

	err := sentinelFor(resp.StatusCode)
	if body.Error == "" {
		return fmt.Errorf("%w: status %d", err, resp.StatusCode)
	}
	return fmt.Errorf("%w: status %d: %s", err, resp.StatusCode, body.Error)
}

// IsNotFound reports whether err means the record does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, common.ErrorNotFound)
}
