// Package httpapi is the HTTP boundary of the vault: chi routes, request
// parsing, authorization and the mapping of errors to status codes.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/cuivault/internal/common"
	"github.com/dmitrijs2005/cuivault/internal/logging"
	"github.com/dmitrijs2005/cuivault/internal/server/auth"
	"github.com/dmitrijs2005/cuivault/internal/server/models"
	"github.com/go-chi/chi/v5"
)

// FilePartName is the only multipart part accepted on upload.
const FilePartName = "file"

// multipartOverhead bounds the bytes of multipart framing accepted on top of
// the payload ceiling.
const multipartOverhead = 64 << 10

// Vault is the service the handlers delegate to.
type Vault interface {
	Upload(ctx context.Context, mimeType string, plaintext []byte) (*models.UploadReceipt, error)
	View(ctx context.Context, id string) (*models.Document, error)
	Delete(ctx context.Context, id string) (bool, error)
	MaxUploadBytes() int64
}

// VaultHandler serves the /v1/files routes.
type VaultHandler struct {
	vault  Vault
	tokens auth.Authorizer
	admin  auth.Authorizer
	log    logging.Logger
}

// NewVaultHandler uses tokens for upload and view and admin for delete.
func NewVaultHandler(v Vault, tokens, admin auth.Authorizer, log logging.Logger) *VaultHandler {
	return &VaultHandler{vault: v, tokens: tokens, admin: admin, log: log}
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// checkQuery rejects parameters outside allowed and repeated parameters.
func checkQuery(q url.Values, allowed ...string) error {
	for k, vs := range q {
		ok := false
		for _, a := range allowed {
			if k == a {
				ok = true
				break
			}
		}
		if !ok {
			return fmt.Errorf("%w: unexpected query parameter %q", common.ErrBadRequest, k)
		}
		if len(vs) > 1 {
			return fmt.Errorf("%w: repeated query parameter %q", common.ErrBadRequest, k)
		}
	}
	return nil
}

func (h *VaultHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status, _ := statusFor(err)
	switch {
	case status >= http.StatusInternalServerError:
		h.log.Error(r.Context(), op+" failed", "status", status, "error", err)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		h.log.Warn(r.Context(), op+" rejected", "status", status, "reason", err.Error())
	default:
		h.log.Debug(r.Context(), op+" rejected", "status", status, "reason", err.Error())
	}
	writeError(w, err)
}

// Upload handles POST /v1/files/upload.
func (h *VaultHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := h.tokens.Authorize(r.Context(), auth.Request{Operation: auth.OpUpload, Credential: bearerToken(r)}); err != nil {
		h.fail(w, r, "upload", err)
		return
	}
	if err := checkQuery(r.URL.Query()); err != nil {
		h.fail(w, r, "upload", err)
		return
	}

	ceiling := h.vault.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, addCapped(ceiling, multipartOverhead))

	mimeType, payload, err := readSinglePart(r, ceiling)
	if err != nil {
		h.fail(w, r, "upload", err)
		return
	}
	defer common.WipeByteArray(payload)

	rcpt, err := h.vault.Upload(r.Context(), mimeType, payload)
	if err != nil {
		h.fail(w, r, "upload", err)
		return
	}

	writeJSON(w, http.StatusCreated, uploadResponse{
		VaultID:   rcpt.VaultID,
		SHA256:    rcpt.SHA256,
		Size:      rcpt.Size,
		MimeType:  rcpt.MimeType,
		CreatedAt: rcpt.CreatedAt,
	})
}

// readSinglePart streams the multipart body and returns the content of the
// only part, named FilePartName. More than ceiling payload bytes yields
// common.ErrPayloadTooLarge.
func readSinglePart(r *http.Request, ceiling int64) (string, []byte, error) {
	mr, err := r.MultipartReader()
	if err != nil {
		return "", nil, fmt.Errorf("%w: %v", common.ErrBadRequest, err)
	}

	part, err := mr.NextPart()
	if err != nil {
		return "", nil, partError(err, "missing file part")
	}
	defer part.Close()

	if part.FormName() != FilePartName {
		return "", nil, fmt.Errorf("%w: unexpected part %q", common.ErrBadRequest, part.FormName())
	}

	mimeType, err := partMimeType(part)
	if err != nil {
		return "", nil, err
	}

	payload, err := io.ReadAll(io.LimitReader(part, addCapped(ceiling, 1)))
	if err != nil {
		return "", nil, partError(err, "read file part")
	}
	if int64(len(payload)) > ceiling {
		common.WipeByteArray(payload)
		return "", nil, common.ErrPayloadTooLarge
	}

	if _, err := mr.NextPart(); !errors.Is(err, io.EOF) {
		common.WipeByteArray(payload)
		if err == nil {
			return "", nil, fmt.Errorf("%w: more than one part", common.ErrBadRequest)
		}
		return "", nil, partError(err, "trailing data")
	}

	return mimeType, payload, nil
}

// addCapped adds two non-negative sizes, saturating at math.MaxInt64.
func addCapped(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

func partError(err error, what string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return common.ErrPayloadTooLarge
	}
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %s", common.ErrBadRequest, what)
	}
	return fmt.Errorf("%w: %s: %v", common.ErrBadRequest, what, err)
}

func partMimeType(part *multipart.Part) (string, error) {
	ct := strings.TrimSpace(part.Header.Get("Content-Type"))
	if ct == "" {
		return common.DefaultMimeType, nil
	}
	mediaType, params, err := mime.ParseMediaType(ct)
	if err != nil {
		return "", fmt.Errorf("%w: content type: %v", common.ErrBadRequest, err)
	}
	return mime.FormatMediaType(mediaType, params), nil
}

// View handles GET /v1/files/{vaultId}. The token comes from the query
// string, or from the Authorization header when the query has none.
func (h *VaultHandler) View(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vaultId")
	q := r.URL.Query()

	if err := checkQuery(q, common.TokenQueryParam); err != nil {
		h.fail(w, r, "view", err)
		return
	}

	token := q.Get(common.TokenQueryParam)
	if token == "" {
		token = bearerToken(r)
	}

	if err := h.tokens.Authorize(r.Context(), auth.Request{Operation: auth.OpView, VaultID: id, Credential: token}); err != nil {
		h.fail(w, r, "view", err)
		return
	}

	doc, err := h.vault.View(r.Context(), id)
	if err != nil {
		h.fail(w, r, "view", err)
		return
	}
	defer common.WipeByteArray(doc.Content)

	hdr := w.Header()
	hdr.Set("Content-Type", doc.MimeType)
	hdr.Set("Content-Disposition", "inline")
	hdr.Set("X-Content-Type-Options", "nosniff")
	hdr.Set("Cache-Control", "no-store")
	hdr.Set("Content-Length", strconv.Itoa(len(doc.Content)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(doc.Content); err != nil {
		h.log.Debug(r.Context(), "view write interrupted", "error", err)
	}
}

// Delete handles DELETE /v1/files/{vaultId}.
func (h *VaultHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "vaultId")

	if err := h.admin.Authorize(r.Context(), auth.Request{
		Operation:  auth.OpDelete,
		VaultID:    id,
		Credential: r.Header.Get(common.AdminSecretHeaderName),
	}); err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	if err := checkQuery(r.URL.Query()); err != nil {
		h.fail(w, r, "delete", err)
		return
	}

	removed, err := h.vault.Delete(r.Context(), id)
	if err != nil {
		h.fail(w, r, "delete", err)
		return
	}
	if !removed {
		writeError(w, common.ErrorNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Health handles GET /health.
func Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok"})
}
